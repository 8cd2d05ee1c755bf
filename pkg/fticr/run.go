package fticr

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
)

// CompoundError records a compound whose stoichiometry could not be derived.
type CompoundError struct {
	ID      string
	Formula string
	Err     error
}

func (e *CompoundError) Error() string {
	return fmt.Sprintf("compound %s (%s): %v", e.ID, e.Formula, e.Err)
}

func (e *CompoundError) Unwrap() error {
	return e.Err
}

// Result holds the stoichiometries of every compound of a dataset that could
// be processed. Compounds that failed are listed in Failed and are absent
// from every table.
type Result struct {
	Compounds       []Compound
	Stoichiometries []*core.Stoichiometry
	Failed          []*CompoundError

	constants core.Constants
	logger    *zap.SugaredLogger
}

// Run derives the stoichiometry of every compound with calc, or with the
// default calculator when calc is nil. A failing compound does not stop the
// batch.
func (d *Dataset) Run(calc *core.Calculator) *Result {
	if calc == nil {
		calc = core.DefaultCalculator()
	}

	r := &Result{
		Compounds:       make([]Compound, 0, len(d.compounds)),
		Stoichiometries: make([]*core.Stoichiometry, 0, len(d.compounds)),
		constants:       calc.Constants(),
		logger:          d.logger,
	}

	for _, c := range d.compounds {
		s, err := calc.Compute(c.Composition)
		if err != nil {
			ce := &CompoundError{ID: c.ID, Formula: c.Formula, Err: err}
			r.Failed = append(r.Failed, ce)
			d.logger.Warnw("Skipping compound", "id", c.ID, "formula", c.Formula, "error", err)
			continue
		}
		r.Compounds = append(r.Compounds, c)
		r.Stoichiometries = append(r.Stoichiometries, s)
	}

	d.logger.Infow("Computed stoichiometries",
		"compounds", len(r.Compounds),
		"failed", len(r.Failed))

	return r
}

func (r *Result) log() *zap.SugaredLogger {
	if r.logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.logger
}

// Len returns the number of processed compounds.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Compounds)
}

// Constants returns the constants the result was computed with.
func (r *Result) Constants() core.Constants {
	return r.constants
}

// StoichTable is the stoichiometric vectors of one reaction type, one row
// per compound keyed by molecular formula.
type StoichTable struct {
	Reaction core.ReactionType
	IDs      []string
	Formulas []string
	Rows     []core.Vector
}

// Name returns the table name, e.g. "stoichMet_O2".
func (t *StoichTable) Name() string {
	return "stoich" + t.Reaction.String()
}

// Columns returns the component column names.
func (t *StoichTable) Columns() []string {
	return core.ComponentNames()
}

// Len returns the number of rows.
func (t *StoichTable) Len() int {
	return len(t.Rows)
}

// Table returns the stoichiometric table of a reaction type.
func (r *Result) Table(rt core.ReactionType) *StoichTable {
	t := &StoichTable{
		Reaction: rt,
		IDs:      make([]string, r.Len()),
		Formulas: make([]string, r.Len()),
		Rows:     make([]core.Vector, r.Len()),
	}
	for i, s := range r.Stoichiometries {
		t.IDs[i] = r.Compounds[i].ID
		t.Formulas[i] = r.Compounds[i].Formula
		t.Rows[i] = s.Vector(rt)
	}
	return t
}

// Tables returns the stoichiometric tables of every reaction type.
func (r *Result) Tables() []*StoichTable {
	tables := make([]*StoichTable, 0, len(core.ReactionTypes))
	for _, rt := range core.ReactionTypes {
		tables = append(tables, r.Table(rt))
	}
	return tables
}

// ThermoTable is the thermodynamic properties of every compound, keyed by
// molecular formula.
type ThermoTable struct {
	IDs      []string
	Formulas []string
	Rows     []core.Thermodynamics
}

// Columns returns the property column names.
func (t *ThermoTable) Columns() []string {
	cols := make([]string, len(core.ThermoColumns))
	copy(cols, core.ThermoColumns)
	return cols
}

// Len returns the number of rows.
func (t *ThermoTable) Len() int {
	return len(t.Rows)
}

// Column returns one property for every compound.
func (t *ThermoTable) Column(name string) ([]float64, error) {
	idx := -1
	for i, c := range core.ThermoColumns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unknown thermodynamic column '%s'", name)
	}

	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Values()[idx]
	}
	return values, nil
}

// Thermo returns the thermodynamic properties table.
func (r *Result) Thermo() *ThermoTable {
	t := &ThermoTable{
		IDs:      make([]string, r.Len()),
		Formulas: make([]string, r.Len()),
		Rows:     make([]core.Thermodynamics, r.Len()),
	}
	for i, s := range r.Stoichiometries {
		t.IDs[i] = r.Compounds[i].ID
		t.Formulas[i] = r.Compounds[i].Formula
		t.Rows[i] = s.Thermo
	}
	return t
}

// Lambdas returns lambda_O2 for every processed compound.
func (r *Result) Lambdas() []float64 {
	lambdas := make([]float64, r.Len())
	for i, s := range r.Stoichiometries {
		lambdas[i] = s.Thermo.LambdaO2
	}
	return lambdas
}
