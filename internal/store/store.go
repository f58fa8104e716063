// Package store persists the run history of stability analyses so results can
// be compared across input revisions and monitor cycles.
package store

import (
	"context"
	"time"
)

// Run is one recorded analysis.
type Run struct {
	ID        string            `json:"id"`
	InputPath string            `json:"input_path"`
	Method    string            `json:"method"`
	FS        float64           `json:"fs"`
	Beta      float64           `json:"beta,omitempty"`
	Lambda    float64           `json:"lambda,omitempty"`
	Converged bool              `json:"converged"`
	Slices    int               `json:"slices"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Store records and queries analysis runs.
type Store interface {
	// Save persists a run. A zero ID gets a generated one; the stored run
	// is returned.
	Save(ctx context.Context, run Run) (Run, error)

	// Get returns the run with the given ID.
	Get(ctx context.Context, id string) (Run, error)

	// List returns the most recent runs, newest first, up to limit.
	List(ctx context.Context, limit int) ([]Run, error)

	// ByInput returns all runs recorded for an input file, newest first.
	ByInput(ctx context.Context, inputPath string) ([]Run, error)

	// Governing returns the run with the lowest factor of safety for an
	// input file.
	Governing(ctx context.Context, inputPath string) (Run, error)

	Close() error
}
