package ports

import (
	"context"
	"io"

	"simlab/domain/run"
	"simlab/domain/sample"
)

// Opener returns the destination for a named output. The caller decides
// whether that is a file, a buffer or an object store.
type Opener func(name string) (io.WriteCloser, error)

// TableExporter writes tables in one serialization format
type TableExporter interface {
	// Format is the short name of the format, also used as file extension
	Format() string
	Export(ctx context.Context, open Opener, tables ...sample.Table) error
}

// ReportRenderer renders a finished report for human readers
type ReportRenderer interface {
	Render(w io.Writer, r *run.Report) error
}
