// Package export writes sample and summary tables as CSV files or as a single
// XLSX workbook. Destinations come from a ports.Opener, so the exporters never
// touch paths themselves.
package export

import (
	"context"
	"encoding/csv"

	"simlab/domain/sample"
	"simlab/internal/errors"
	"simlab/ports"
)

// CSVExporter writes one CSV document per table, named <table>.csv
type CSVExporter struct {
	// Comma overrides the field delimiter when non-zero
	Comma rune
}

// NewCSVExporter creates a comma-separated exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Format() string { return "csv" }

// Export writes each table with a header row followed by its records
func (e *CSVExporter) Export(ctx context.Context, open ports.Opener, tables ...sample.Table) error {
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.writeTable(open, t); err != nil {
			return errors.ExportError(t.Name(), err)
		}
	}
	return nil
}

func (e *CSVExporter) writeTable(open ports.Opener, t sample.Table) (err error) {
	out, err := open(t.Name() + ".csv")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(out)
	if e.Comma != 0 {
		w.Comma = e.Comma
	}
	if err := w.Write(t.Columns()); err != nil {
		return err
	}
	if err := w.WriteAll(t.Records()); err != nil {
		return err
	}
	return w.Error()
}
