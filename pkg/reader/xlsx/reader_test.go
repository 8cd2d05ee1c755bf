package xlsx

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheet string, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func TestReadFile(t *testing.T) {
	f := workbook(t, "Sheet1",
		[]interface{}{"Mass", "C", "H", "N", "O", "P", "S", "13C"},
		[]interface{}{180.0634, 6, 12, 0, 6, 0, 0, 0},
		[]interface{}{612.2, 35, 32, 0, 6, 0, 2, 1},
	)
	path := filepath.Join(t.TempDir(), "peaks.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tbl, err := ReadFile(path, "")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if diff := cmp.Diff([]string{"Mass", "C", "H", "N", "O", "P", "S", "C13"}, tbl.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := [][]float64{
		{180.0634, 6, 12, 0, 6, 0, 0, 0},
		{612.2, 35, 32, 0, 6, 0, 2, 1},
	}
	if diff := cmp.Diff(want, tbl.Rows, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadNamedSheet(t *testing.T) {
	f := workbook(t, "Peaks",
		[]interface{}{"C", "H", "N", "O", "P", "S", "Class"},
		[]interface{}{1, 4, 0, 0, 0, 0, "Other"},
	)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	tbl, err := Read(buf, "Peaks")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := [][]float64{{1, 4, 0, 0, 0, 0, math.NaN()}}
	if diff := cmp.Diff(want, tbl.Rows, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	f := workbook(t, "Sheet1")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := Read(buf, ""); err == nil {
		t.Error("sheet without header should fail")
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"), ""); err == nil {
		t.Error("missing workbook should fail")
	}
}
