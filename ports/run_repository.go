package ports

import (
	"context"

	"simlab/domain/core"
	"simlab/domain/run"
	"simlab/domain/sample"
)

// RunRepository persists run manifests and their summary records
type RunRepository interface {
	// Runs
	SaveRun(ctx context.Context, m run.Manifest) error
	GetRun(ctx context.Context, id core.RunID) (*run.Manifest, error)
	ListRuns(ctx context.Context, limit, offset int) ([]run.Manifest, error)

	// Summaries are stored per (run, table) in their original order
	SaveSummaries(ctx context.Context, id core.RunID, table string, rows []sample.Summary) error
	ListSummaries(ctx context.Context, id core.RunID, table string) ([]sample.Summary, error)
}
