// Package xlsx reads peak tables from Excel workbooks
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/reader/formularity"
)

// ReadFile reads a peak table from the named sheet of a workbook, or from
// the first sheet when sheet is empty
func ReadFile(path, sheet string) (core.PeakTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return core.PeakTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	tbl, err := readSheet(f, sheet)
	if err != nil {
		return core.PeakTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}

// Read reads a peak table from a workbook stream
func Read(r io.Reader, sheet string) (core.PeakTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return core.PeakTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (core.PeakTable, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return core.PeakTable{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return core.PeakTable{}, fmt.Errorf("sheet '%s': %w", sheet, err)
	}
	defer rows.Close()

	var tbl core.PeakTable
	rowNum := 0
	for rows.Next() {
		rowNum++
		cells, err := rows.Columns()
		if err != nil {
			return core.PeakTable{}, fmt.Errorf("sheet '%s' row %d: %w", sheet, rowNum, err)
		}

		if tbl.Columns == nil {
			// Skip leading empty rows
			if len(cells) == 0 {
				continue
			}
			tbl.Columns = make([]string, len(cells))
			for i, c := range cells {
				tbl.Columns[i] = formularity.NormalizeColumn(c)
			}
			continue
		}
		if len(cells) == 0 {
			continue
		}
		tbl.Rows = append(tbl.Rows, core.ParseRecord(cells, len(tbl.Columns)))
	}
	if err := rows.Error(); err != nil {
		return core.PeakTable{}, fmt.Errorf("sheet '%s': %w", sheet, err)
	}
	if tbl.Columns == nil {
		return core.PeakTable{}, fmt.Errorf("sheet '%s' has no header row", sheet)
	}

	return tbl, nil
}
