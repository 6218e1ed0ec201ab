// Package export writes list views to spreadsheet files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/learnhub/admin/internal/listview"
)

// ContentType is the MIME type of an XLSX workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	maxSheetName = 31
	exportLimit  = 100
)

// ErrTooManyRows is returned when a collection exceeds the export cap.
var ErrTooManyRows = errors.New("export: too many rows")

// Collect pages through f with params and returns every matching row. It
// fails with ErrTooManyRows once more than maxRows rows are reported.
func Collect[T any](ctx context.Context, f listview.Fetcher[T], params listview.ListParams, maxRows int) ([]T, error) {
	params.Page = 1
	params.Limit = exportLimit

	var rows []T
	for {
		res, err := f.List(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", params.Page, err)
		}
		if res == nil {
			return nil, fmt.Errorf("fetch page %d: empty result", params.Page)
		}
		if maxRows > 0 && res.Pagination.Total > int64(maxRows) {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRows, res.Pagination.Total, maxRows)
		}
		rows = append(rows, res.Entities...)
		if len(res.Entities) == 0 || params.Page >= res.Pagination.TotalPages {
			return rows, nil
		}
		params.Page++
	}
}

// WriteXLSX writes the headers and rows of v as a single-sheet workbook.
// Loading and empty views produce a header-only sheet.
func WriteXLSX(w io.Writer, sheet string, v listview.View) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	name := sheetName(sheet)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E5E7EB"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if len(v.Headers) > 0 {
		if err := sw.SetColWidth(1, len(v.Headers), 20); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	header := make([]any, len(v.Headers))
	for i, h := range v.Headers {
		header[i] = excelize.Cell{Value: h.Label, StyleID: headerStyle}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if v.State == listview.StatePopulated {
		for i, row := range v.Rows {
			cells := make([]any, len(row.Cells))
			for j, c := range row.Cells {
				cells[j] = c.Text
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := sw.SetRow(cell, cells); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetName trims s to a valid worksheet name.
func sheetName(s string) string {
	if s == "" {
		return "Export"
	}
	r := []rune(s)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}
