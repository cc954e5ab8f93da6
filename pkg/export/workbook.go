// Package export writes multiview layouts to an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-multiview/components/multiview"
)

// Sheet names.
const (
	LayoutsSheet = "Layouts"
	PanelsSheet  = "Panels"
)

var (
	layoutHeader = []string{"ID", "Name", "Description", "Cols", "Rows", "Panels", "Active", "Audience", "Last Modified"}
	panelHeader  = []string{"Layout ID", "Panel ID", "Position", "Type", "Title", "Visible", "Col Span", "Row Span", "Refresh (s)", "Custom URL"}
)

// Workbook renders layouts into an xlsx file: one row per layout on the
// Layouts sheet and one row per panel on the Panels sheet.
func Workbook(layouts []multiview.Layout) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", LayoutsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(PanelsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	layoutRows := make([][]any, 0, len(layouts))
	var panelRows [][]any
	for _, layout := range layouts {
		layoutRows = append(layoutRows, []any{
			layout.ID,
			layout.Name,
			layout.Description,
			layout.Cols,
			layout.Rows,
			len(layout.Panels),
			strconv.FormatBool(layout.IsActive),
			string(layout.Audience),
			layout.LastModified.UTC().Format(time.RFC3339),
		})
		for _, p := range layout.Panels {
			panelRows = append(panelRows, []any{
				layout.ID,
				p.ID,
				p.Position,
				string(p.Type),
				p.Title,
				strconv.FormatBool(p.IsVisible),
				p.ColSpan,
				p.RowSpan,
				p.RefreshIntervalSeconds,
				p.CustomURL,
			})
		}
	}

	if err := writeSheet(f, LayoutsSheet, layoutHeader, layoutRows, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSheet(f, PanelsSheet, panelHeader, panelRows, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook for layouts to w.
func Write(w io.Writer, layouts []multiview.Layout) error {
	f, err := Workbook(layouts)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// Bytes returns the encoded workbook.
func Bytes(layouts []multiview.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, layouts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("export: %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("export: %s header range: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("export: %s header style: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}
