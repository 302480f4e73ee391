package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sheetNameLimit is the Excel limit on sheet name length.
const sheetNameLimit = 31

// Workbook writes rows sheet by sheet into an xlsx file.
type Workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
	headerStyle  int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet adds a sheet and makes it current.
func (w *Workbook) AddSheet(name string) error {
	if len(name) > sheetNameLimit {
		name = name[:sheetNameLimit]
	}

	// The first sheet reuses the default Sheet1.
	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers and freezes them.
func (w *Workbook) WriteHeader(columns []string) error {
	if err := w.writeRow(toRow(columns)); err != nil {
		return err
	}

	if w.headerStyle == 0 {
		style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		w.headerStyle = style
	}
	start, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
	end, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
	if err := w.file.SetCellStyle(w.currentSheet, start, end, w.headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	return w.file.SetPanes(w.currentSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteRow writes one data row to the current sheet.
func (w *Workbook) WriteRow(row []interface{}) error {
	return w.writeRow(row)
}

func (w *Workbook) writeRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

// Save writes the workbook to wr.
func (w *Workbook) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// SaveToFile writes the workbook to path.
func (w *Workbook) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

// Close releases resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
