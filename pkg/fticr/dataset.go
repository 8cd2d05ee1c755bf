// Package fticr applies the stoichiometry calculator to tables of FT-ICR
// peaks with assigned elemental compositions, and bins the results by lambda.
package fticr

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/filter"
)

// RequiredColumns are the element columns every input table must carry, as
// written by Formularity.
var RequiredColumns = []string{
	core.ElementC, core.ElementH, core.ElementN, core.ElementO, core.ElementP, core.ElementS,
}

// IDPrefix prefixes the synthetic compound identifiers.
const IDPrefix = "xcpd__"

// SchemaError is returned when required columns are missing.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input table requires columns %s, missing: %s",
		strings.Join(RequiredColumns, ","), strings.Join(e.Missing, ","))
}

// DuplicateFormulaError is returned when two retained compounds render the
// same molecular formula.
type DuplicateFormulaError struct {
	Formula string
	IDs     [2]string
}

func (e *DuplicateFormulaError) Error() string {
	return fmt.Sprintf("compounds %s and %s share formula %s", e.IDs[0], e.IDs[1], e.Formula)
}

// Compound is one retained row of a dataset.
type Compound struct {
	ID          string
	Formula     string
	Composition core.Composition
	Row         int // row in the source table
}

// Dataset is a validated, de-duplicated and filtered compound table.
type Dataset struct {
	compounds []Compound
	byID      map[string]int
	byFormula map[string]int

	numPeaks   int
	duplicates int
	report     filter.Report

	logger *zap.SugaredLogger
}

// NewDataset validates tbl and builds the compound table: duplicate rows are
// dropped, the survivors get identifiers, and unassigned, invalid, 13C and
// Na rows are filtered out. The isotope and adduct filters only apply when
// their columns are present.
func NewDataset(tbl core.PeakTable, logger *zap.SugaredLogger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if err := ValidateSchema(tbl); err != nil {
		return nil, err
	}

	peaks := toPeaks(tbl)
	unique, duplicates := filter.Deduplicate(peaks)

	// Identifiers follow the de-duplicated order, so filtered rows leave gaps.
	position := make(map[int]int, len(unique))
	for i, p := range unique {
		position[p.Row] = i
	}

	cfg := filter.DefaultConfig()
	cfg.DropIsotopes = tbl.HasColumn(core.ColumnC13)
	cfg.DropAdducts = tbl.HasColumn(core.ColumnNa)
	kept, report := cfg.Apply(unique)

	d := &Dataset{
		compounds:  make([]Compound, 0, len(kept)),
		byID:       make(map[string]int, len(kept)),
		byFormula:  make(map[string]int, len(kept)),
		numPeaks:   tbl.Len(),
		duplicates: duplicates,
		report:     report,
		logger:     logger,
	}

	for _, p := range kept {
		c := Compound{
			ID:          fmt.Sprintf("%s%d", IDPrefix, position[p.Row]),
			Formula:     p.Composition.Formula(),
			Composition: p.Composition,
			Row:         p.Row,
		}
		if j, ok := d.byFormula[c.Formula]; ok {
			return nil, &DuplicateFormulaError{
				Formula: c.Formula,
				IDs:     [2]string{d.compounds[j].ID, c.ID},
			}
		}
		d.byID[c.ID] = len(d.compounds)
		d.byFormula[c.Formula] = len(d.compounds)
		d.compounds = append(d.compounds, c)
	}

	logger.Debugw("Built compound table",
		"peaks", d.numPeaks,
		"duplicates", duplicates,
		"filtered", report.String(),
		"compounds", len(d.compounds))

	return d, nil
}

// ValidateSchema checks that tbl has every required column.
func ValidateSchema(tbl core.PeakTable) error {
	var missing []string
	for _, col := range RequiredColumns {
		if !tbl.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// toPeaks converts table rows to peaks. Missing or empty flag cells count as zero.
func toPeaks(tbl core.PeakTable) []core.Peak {
	idx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		idx[col] = tbl.Index(col)
	}
	naIdx := tbl.Index(core.ColumnNa)
	c13Idx := tbl.Index(core.ColumnC13)

	flag := func(row []float64, i int) float64 {
		if i < 0 || i >= len(row) || math.IsNaN(row[i]) {
			return 0
		}
		return row[i]
	}

	peaks := make([]core.Peak, 0, tbl.Len())
	for r, row := range tbl.Rows {
		var p core.Peak
		for _, col := range RequiredColumns {
			v := math.NaN()
			if i := idx[col]; i < len(row) {
				v = row[i]
			}
			// Required columns are known elements.
			_ = p.Composition.Set(col, v)
		}
		p.Na = flag(row, naIdx)
		p.C13 = flag(row, c13Idx)
		p.Row = r
		peaks = append(peaks, p)
	}
	return peaks
}

// NumPeaks returns the number of rows in the source table.
func (d *Dataset) NumPeaks() int {
	return d.numPeaks
}

// NumCompounds returns the number of retained compounds.
func (d *Dataset) NumCompounds() int {
	return len(d.compounds)
}

// NumDuplicates returns the number of duplicate rows dropped.
func (d *Dataset) NumDuplicates() int {
	return d.duplicates
}

// FilterReport returns the rows removed by each filter.
func (d *Dataset) FilterReport() filter.Report {
	return d.report
}

// Compounds returns the retained compounds in table order.
func (d *Dataset) Compounds() []Compound {
	out := make([]Compound, len(d.compounds))
	copy(out, d.compounds)
	return out
}

// Compound looks up a compound by identifier.
func (d *Dataset) Compound(id string) (Compound, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Compound{}, false
	}
	return d.compounds[i], true
}

// IDForFormula maps a molecular formula back to its compound identifier.
func (d *Dataset) IDForFormula(formula string) (string, bool) {
	i, ok := d.byFormula[formula]
	if !ok {
		return "", false
	}
	return d.compounds[i].ID, true
}
