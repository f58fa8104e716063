package monitor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostab/slopekit/internal/config"
	"github.com/geostab/slopekit/internal/metrics"
	"github.com/geostab/slopekit/internal/store"
)

const monitorInput = `
gamma_water: 9.81
profile_lines:
  - [[0, 20], [20, 20], [40, 0], [60, 0]]
materials:
  - {gamma: 18, option: mc, c: 10, phi: 30}
circles:
  - {xo: 30, yo: 25, option: Radius, r: 25}
  - {xo: 28, yo: 28, option: Radius, r: 26}
`

// capturingPublisher records published events.
type capturingPublisher struct {
	mu     sync.Mutex
	events []RunEvent
}

func (p *capturingPublisher) Publish(e RunEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "slope.yaml")
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o644))

	cfgPath := filepath.Join(dir, "slopekit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input:\n  path: "+inputPath+"\n"), 0o644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	return cfg
}

func TestRunOnce(t *testing.T) {
	cfg := testConfig(t, monitorInput)

	runs, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer runs.Close()

	pub := &capturingPublisher{}
	m := New(cfg, runs, metrics.NoopRecorder{}, pub)

	m.runOnce(context.Background(), "test")

	status := m.Status()
	assert.Equal(t, 1, status.Cycles)
	assert.Equal(t, "test", status.LastTrigger)
	assert.Empty(t, status.LastError)
	require.NotNil(t, status.LastRun)
	assert.Greater(t, status.LastRun.FS, 0.0)
	assert.Equal(t, "bishop", status.LastRun.Method)

	// Result persisted and published.
	stored, err := runs.ByInput(context.Background(), cfg.Input.Path)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, 1, pub.count())
}

func TestRunOnceFailure(t *testing.T) {
	cfg := testConfig(t, "gamma_water: 9.81\n")

	m := New(cfg, nil, nil, nil)
	m.runOnce(context.Background(), "test")

	status := m.Status()
	assert.Equal(t, 1, status.Cycles)
	assert.NotEmpty(t, status.LastError)
	assert.Nil(t, status.LastRun)
}

func TestTriggerCoalesces(t *testing.T) {
	cfg := testConfig(t, monitorInput)
	m := New(cfg, nil, nil, nil)

	for i := 0; i < 10; i++ {
		m.Trigger("spam")
	}
	// Queue capacity bounds pending triggers; no panic, no block.
	assert.LessOrEqual(t, len(m.trigger), 4)
}

func TestInputWatcherTriggers(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "slope.yaml")
	require.NoError(t, os.WriteFile(inputPath, []byte(monitorInput), 0o644))

	fired := make(chan string, 1)
	w, err := NewInputWatcher(inputPath, 50*time.Millisecond, func(reason string) {
		select {
		case fired <- reason:
		default:
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(inputPath, []byte(monitorInput+"\n"), 0o644))

	select {
	case reason := <-fired:
		assert.Equal(t, "input_changed", reason)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire")
	}
}

func TestInputWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "slope.yaml")
	require.NoError(t, os.WriteFile(inputPath, []byte(monitorInput), 0o644))

	fired := make(chan string, 1)
	w, err := NewInputWatcher(inputPath, 20*time.Millisecond, func(reason string) {
		select {
		case fired <- reason:
		default:
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-fired:
		t.Fatal("watcher fired for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(RunEvent{}))
	assert.NoError(t, p.Close())
}
