package fticr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
)

var approx = cmpopts.EquateApprox(1e-9, 1e-9)

func newDataset(t *testing.T, rows ...[]float64) *Dataset {
	t.Helper()
	ds, err := NewDataset(table(false, rows...), nil)
	if err != nil {
		t.Fatalf("NewDataset() error = %v", err)
	}
	return ds
}

func TestRunSkipsFailingCompounds(t *testing.T) {
	ds := newDataset(t,
		[]float64{35, 32, 0, 6, 0, 2},
		[]float64{0, 2, 0, 1, 0, 0}, // water, no carbon
		[]float64{1, 4, 0, 0, 0, 0},
	)

	res := ds.Run(nil)

	if res.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", res.Len())
	}
	if len(res.Failed) != 1 {
		t.Fatalf("Failed = %v, want one entry", res.Failed)
	}
	fail := res.Failed[0]
	if fail.ID != "xcpd__1" || fail.Formula != "H2O" {
		t.Errorf("Failed[0] = %s (%s), want xcpd__1 (H2O)", fail.ID, fail.Formula)
	}
	if !errors.Is(fail, core.ErrNoCarbon) {
		t.Errorf("Failed[0] error = %v, want ErrNoCarbon", fail.Err)
	}

	want := []float64{0.02052976929405732, 0.12727246941173737}
	if diff := cmp.Diff(want, res.Lambdas(), approx); diff != "" {
		t.Errorf("Lambdas() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunMatchesCalculator(t *testing.T) {
	ds := newDataset(t,
		[]float64{6, 12, 0, 6, 0, 0},
		[]float64{10, 10, 2, 3, 1, 0},
	)

	c := core.DefaultConstants()
	c.Temperature = 310
	calc, err := core.NewCalculator(c)
	if err != nil {
		t.Fatalf("NewCalculator() error = %v", err)
	}

	res := ds.Run(calc)
	if res.Constants().Temperature != 310 {
		t.Errorf("Constants().Temperature = %v, want 310", res.Constants().Temperature)
	}
	for i, cpd := range res.Compounds {
		want, err := calc.Compute(cpd.Composition)
		if err != nil {
			t.Fatalf("Compute(%s) error = %v", cpd.Formula, err)
		}
		if diff := cmp.Diff(want, res.Stoichiometries[i], approx); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", cpd.Formula, diff)
		}
	}
}

func TestResultTables(t *testing.T) {
	ds := newDataset(t,
		[]float64{35, 32, 0, 6, 0, 2},
		[]float64{1, 4, 0, 0, 0, 0},
	)
	res := ds.Run(nil)

	tables := res.Tables()
	if len(tables) != len(core.ReactionTypes) {
		t.Fatalf("Tables() returned %d tables, want %d", len(tables), len(core.ReactionTypes))
	}

	var names []string
	for _, tbl := range tables {
		names = append(names, tbl.Name())
		if tbl.Len() != 2 {
			t.Errorf("%s has %d rows, want 2", tbl.Name(), tbl.Len())
		}
		if diff := cmp.Diff([]string{"C35H32O6S2", "CH4"}, tbl.Formulas); diff != "" {
			t.Errorf("%s formulas mismatch (-want +got):\n%s", tbl.Name(), diff)
		}
	}
	wantNames := []string{
		"stoichD", "stoichA", "stoichCat", "stoichAn_O2",
		"stoichAn_HCO3", "stoichMet_O2", "stoichMet_HCO3",
	}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("table names mismatch (-want +got):\n%s", diff)
	}

	donor := res.Table(core.ReactionDonor)
	wantDonor := core.Vector{-1, -107, 35, 0, 2, 0, 209, 170, 0, 0}
	if diff := cmp.Diff(wantDonor, donor.Rows[0], approx); diff != "" {
		t.Errorf("donor row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(core.ComponentNames(), donor.Columns()); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}
}

func TestThermoTableColumn(t *testing.T) {
	ds := newDataset(t,
		[]float64{35, 32, 0, 6, 0, 2},
		[]float64{1, 4, 0, 0, 0, 0},
	)
	thermo := ds.Run(nil).Thermo()

	if diff := cmp.Diff(core.ThermoColumns, thermo.Columns()); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}

	got, err := thermo.Column("lambda_HCO3")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	want := []float64{0.026524574664407306, 0.8371933170215538}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("lambda_HCO3 mismatch (-want +got):\n%s", diff)
	}

	if _, err := thermo.Column("lambda"); err == nil {
		t.Error("Column(lambda) should fail")
	}
}

func TestNilResult(t *testing.T) {
	var res *Result
	if res.Len() != 0 {
		t.Errorf("Len() = %d, want 0", res.Len())
	}
}
