// Package formularity provides streaming readers for Formularity peak
// tables (CSV or tab-separated, one row per peak, one column per element)
package formularity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
)

// headerAliases maps alternative column spellings to the canonical names
var headerAliases = map[string]string{
	"13C":  core.ColumnC13,
	"NA":   core.ColumnNa,
	"Na23": core.ColumnNa,
	"23Na": core.ColumnNa,
	"C12":  core.ElementC,
	"12C":  core.ElementC,
}

// Reader provides streaming access to peak rows
type Reader struct {
	csv     *csv.Reader
	header  []string
	lineNum int
	row     []float64
	err     error
}

// NewReader creates a reader over comma-separated input
func NewReader(r io.Reader) *Reader {
	return NewReaderComma(r, ',')
}

// NewReaderComma creates a reader with the given field delimiter
func NewReaderComma(r io.Reader, comma rune) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

// Header returns the normalized column names, reading them if needed
func (r *Reader) Header() ([]string, error) {
	if r.header != nil {
		return r.header, nil
	}
	rec, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty peak table: no header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	r.lineNum++

	header := make([]string, len(rec))
	for i, h := range rec {
		header[i] = NormalizeColumn(h)
	}
	r.header = header
	return r.header, nil
}

// Next advances to the next row. Returns false when no more rows or error.
func (r *Reader) Next() bool {
	r.row = nil
	if r.err != nil {
		return false
	}
	if _, err := r.Header(); err != nil {
		r.err = err
		return false
	}

	for {
		rec, err := r.csv.Read()
		if err == io.EOF {
			return false
		}
		r.lineNum++
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", r.lineNum, err)
			return false
		}
		// Skip blank lines
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		r.row = core.ParseRecord(rec, len(r.header))
		return true
	}
}

// Row returns the current row, aligned with Header
func (r *Reader) Row() []float64 {
	return r.row
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads the remaining rows into a peak table
func (r *Reader) ReadAll() (core.PeakTable, error) {
	header, err := r.Header()
	if err != nil {
		return core.PeakTable{}, err
	}

	tbl := core.PeakTable{Columns: append([]string(nil), header...)}
	for r.Next() {
		tbl.Rows = append(tbl.Rows, r.Row())
	}
	if err := r.Err(); err != nil {
		return core.PeakTable{}, err
	}
	return tbl, nil
}

// NormalizeColumn trims a column name and maps known aliases to the
// canonical element and flag names
func NormalizeColumn(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	if canonical, ok := headerAliases[name]; ok {
		return canonical
	}
	return name
}

// DelimiterFor picks the field delimiter from a file extension
func DelimiterFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab", ".txt":
		return '\t'
	}
	return ','
}

// ReadFile reads a whole peak table from disk
func ReadFile(path string) (core.PeakTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.PeakTable{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	tbl, err := NewReaderComma(f, DelimiterFor(path)).ReadAll()
	if err != nil {
		return core.PeakTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}
