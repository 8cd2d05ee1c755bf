package formularity

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const sampleCSV = `Mass, C, H, O, N, C13, S, P, Na, El_comp, Class
180.0634,6,12,6,0,0,0,0,0,CHO,Carbohydrate
181.0667,5,12,6,0,1,0,0,0,CHO,Carbohydrate
200.5,0,0,0,0,0,0,0,0,,

612.2,35,32,6,0,0,2,0,0,CHOS,Lignin
`

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader(sampleCSV))

	header, err := r.Header()
	if err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	wantHeader := []string{"Mass", "C", "H", "O", "N", "C13", "S", "P", "Na", "El_comp", "Class"}
	if diff := cmp.Diff(wantHeader, header); diff != "" {
		t.Errorf("Header() mismatch (-want +got):\n%s", diff)
	}

	var rows [][]float64
	for r.Next() {
		rows = append(rows, r.Row())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("read %d rows, want 4", len(rows))
	}
	want := []float64{612.2, 35, 32, 6, 0, 0, 2, 0, 0, math.NaN(), math.NaN()}
	if diff := cmp.Diff(want, rows[3], cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("last row mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAllTabSeparated(t *testing.T) {
	input := "\ufeffC\tH\tN\tO\tP\tS\t13C\n1\t4\t0\t0\t0\t0\t0\n6\t12\t0\t6\t0\t0\n"

	tbl, err := NewReaderComma(strings.NewReader(input), '\t').ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if diff := cmp.Diff([]string{"C", "H", "N", "O", "P", "S", "C13"}, tbl.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := [][]float64{
		{1, 4, 0, 0, 0, 0, 0},
		{6, 12, 0, 6, 0, 0, math.NaN()},
	}
	if diff := cmp.Diff(want, tbl.Rows, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderErrors(t *testing.T) {
	if _, err := NewReader(strings.NewReader("")).ReadAll(); err == nil {
		t.Error("empty input should fail")
	}

	r := NewReader(strings.NewReader("C,H\n1,\"4\n"))
	for r.Next() {
	}
	if r.Err() == nil {
		t.Error("unterminated quote should fail")
	}
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" C ", "C"},
		{"13C", "C13"},
		{"C13", "C13"},
		{"NA", "Na"},
		{"12C", "C"},
		{"Mass", "Mass"},
	}
	for _, tt := range tests {
		if got := NormalizeColumn(tt.in); got != tt.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peaks.tsv")
	if err := os.WriteFile(path, []byte("C\tH\tN\tO\tP\tS\n1\t4\t0\t0\t0\t0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if tbl.Len() != 1 || !tbl.HasColumn("S") {
		t.Errorf("ReadFile() = %+v", tbl)
	}

	if DelimiterFor("a.CSV") != ',' || DelimiterFor("a.txt") != '\t' {
		t.Error("DelimiterFor() picked the wrong delimiter")
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("ReadFile() of a missing file should fail")
	}
}
