package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Optional columns used as exclusion filters.
const (
	ColumnNa  = "Na"
	ColumnC13 = "C13"
)

// Peak is one row of a peak table: an assigned (or unassigned) composition
// plus the adduct and isotope flags reported by the formula assignment.
type Peak struct {
	Composition Composition
	Na          float64 // sodium adduct count
	C13         float64 // 13C isotope count

	// Internal tracking
	Row int // 0-based row in the source table
}

// IsAssigned reports whether any element count is non-zero.
func (p Peak) IsAssigned() bool {
	return p.Composition.Total() > 0
}

// Signature identifies a peak for de-duplication.
func (p Peak) Signature() [8]float64 {
	c := p.Composition
	return [8]float64{c.C, c.H, c.N, c.O, c.S, c.P, p.Na, p.C13}
}

// ValidationError represents an error found during validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// PeakTable is a raw, column-named numeric table as read from a peak list.
// Cells that are empty or not numeric hold NaN.
type PeakTable struct {
	Columns []string
	Rows    [][]float64
}

// NewPeakTable builds a table from a header and string records. Records
// shorter than the header are padded with NaN.
func NewPeakTable(header []string, records [][]string) PeakTable {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	rows := make([][]float64, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ParseRecord(rec, len(cols)))
	}

	return PeakTable{Columns: cols, Rows: rows}
}

// ParseRecord converts a string record to width numeric cells.
func ParseRecord(rec []string, width int) []float64 {
	row := make([]float64, width)
	for i := range row {
		row[i] = math.NaN()
		if i >= len(rec) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err == nil {
			row[i] = v
		}
	}
	return row
}

// Index returns the position of the named column, or -1.
func (t PeakTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column is present.
func (t PeakTable) HasColumn(name string) bool {
	return t.Index(name) >= 0
}

// Len returns the number of rows.
func (t PeakTable) Len() int {
	return len(t.Rows)
}
