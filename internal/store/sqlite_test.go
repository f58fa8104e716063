package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, Run{
		InputPath: "dam.xlsx",
		Method:    "bishop",
		FS:        1.42,
		Converged: true,
		Slices:    20,
		Metadata:  map[string]string{"trigger": "manual"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "dam.xlsx", got.InputPath)
	assert.InDelta(t, 1.42, got.FS, 1e-9)
	assert.True(t, got.Converged)
	assert.Equal(t, "manual", got.Metadata["trigger"])
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "no-such-run")
	require.Error(t, err)
}

func TestListOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		_, err := s.Save(ctx, Run{
			InputPath: "dam.xlsx",
			Method:    "oms",
			FS:        1.0 + float64(i)*0.1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i := 1; i < len(runs); i++ {
		assert.False(t, runs[i].CreatedAt.After(runs[i-1].CreatedAt))
	}
}

func TestByInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, Run{InputPath: "a.xlsx", Method: "bishop", FS: 1.5})
	require.NoError(t, err)
	_, err = s.Save(ctx, Run{InputPath: "b.xlsx", Method: "bishop", FS: 1.1})
	require.NoError(t, err)
	_, err = s.Save(ctx, Run{InputPath: "a.xlsx", Method: "spencer", FS: 1.3})
	require.NoError(t, err)

	runs, err := s.ByInput(ctx, "a.xlsx")
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, "a.xlsx", r.InputPath)
	}
}

func TestGoverning(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, fs := range []float64{1.6, 1.2, 1.4} {
		_, err := s.Save(ctx, Run{InputPath: "dam.xlsx", Method: "bishop", FS: fs})
		require.NoError(t, err)
	}

	gov, err := s.Governing(ctx, "dam.xlsx")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, gov.FS, 1e-9)

	_, err = s.Governing(ctx, "missing.xlsx")
	require.Error(t, err)
}
