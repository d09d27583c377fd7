package export

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"simlab/domain/sample"
	"simlab/internal/errors"
	"simlab/ports"
)

const maxSheetName = 31

// XLSXExporter writes every table into one workbook, one sheet per table
type XLSXExporter struct {
	// Workbook is the name passed to the opener, without extension
	Workbook string
}

// NewXLSXExporter creates an exporter writing <workbook>.xlsx
func NewXLSXExporter(workbook string) *XLSXExporter {
	if workbook == "" {
		workbook = "tables"
	}
	return &XLSXExporter{Workbook: workbook}
}

func (e *XLSXExporter) Format() string { return "xlsx" }

// Export builds the workbook in memory and streams it to the opener.
// Numeric cells are stored as numbers.
func (e *XLSXExporter) Export(ctx context.Context, open ports.Opener, tables ...sample.Table) error {
	if len(tables) == 0 {
		return nil
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		sheet, err := sheetName(t.Name())
		if err != nil {
			return errors.ExportError(t.Name(), err)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return errors.ExportError(t.Name(), err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return errors.ExportError(t.Name(), err)
		}
		if err := writeSheet(f, sheet, t); err != nil {
			return errors.ExportError(t.Name(), err)
		}
	}
	f.SetActiveSheet(0)

	out, err := open(e.Workbook + ".xlsx")
	if err != nil {
		return errors.ExportError(e.Workbook, err)
	}
	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		return errors.ExportError(e.Workbook, err)
	}
	if err := out.Close(); err != nil {
		return errors.ExportError(e.Workbook, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t sample.Table) error {
	header := make([]interface{}, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, rec := range t.Records() {
		row := make([]interface{}, len(rec))
		for c, v := range rec {
			row[c] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v string) interface{} {
	if v == "" {
		return nil
	}
	if x, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(x) && !math.IsInf(x, 0) {
		return x
	}
	return v
}

func sheetName(table string) (string, error) {
	if table == "" {
		return "", fmt.Errorf("table has no name")
	}
	if len(table) > maxSheetName {
		return "", fmt.Errorf("sheet name %q exceeds %d characters", table, maxSheetName)
	}
	return table, nil
}
