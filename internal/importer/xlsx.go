package importer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/caresynapse/healthsummary/internal/record"
)

// ReadWorkbook parses xlsx bytes. The first row of each sheet is the header
// row; empty cells are treated as missing and blank rows are skipped.
func ReadWorkbook(r io.Reader) (Sheets, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := make(Sheets)
	for _, name := range f.GetSheetList() {
		grid, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		sheets[name] = gridRows(grid)
	}
	return sheets, nil
}

func gridRows(grid [][]string) []Row {
	rows := []Row{}
	if len(grid) == 0 {
		return rows
	}
	header := grid[0]
	for _, cells := range grid[1:] {
		row := make(Row)
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" || cell == "" {
				continue
			}
			row[header[i]] = cell
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// Import parses xlsx bytes and maps them to a new record. Any failure is
// returned as a *ParseError.
func (m *Mapper) Import(data []byte) (record.HealthRecord, error) {
	if len(data) == 0 {
		return record.HealthRecord{}, &ParseError{Cause: ErrEmptyFile}
	}
	wb, err := ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		return record.HealthRecord{}, &ParseError{Cause: err}
	}
	rec, err := m.Map(wb)
	if err != nil {
		return record.HealthRecord{}, &ParseError{Cause: err}
	}
	return rec, nil
}

// Export writes rec as an xlsx workbook using the mapper's sheet layout.
// Every sheet is written with its header row even when empty, so the output
// doubles as an import template.
func (m *Mapper) Export(w io.Writer, rec record.HealthRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PatientSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	p := rec.PatientInfo
	patient := [][]string{columnHeaders(PatientColumns), {p.Name, p.DOB, p.Gender}}
	if err := writeGrid(f, PatientSheet, patient); err != nil {
		return err
	}

	for _, layout := range m.sheets {
		if _, err := f.NewSheet(layout.Sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", layout.Sheet, err)
		}
		grid := [][]string{columnHeaders(layout.Columns)}
		for _, item := range rec.Items(layout.Section) {
			line := make([]string, len(layout.Columns))
			for i, col := range layout.Columns {
				if v, ok := item.Field(col.Field); ok {
					line[i] = *v
				}
			}
			grid = append(grid, line)
		}
		if err := writeGrid(f, layout.Sheet, grid); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func columnHeaders(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

func writeGrid(f *excelize.File, sheet string, grid [][]string) error {
	for i, line := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(line))
		for j, v := range line {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}
	return nil
}
