package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

func TestComputeRates(t *testing.T) {
	v := core.Vector{-1, 1, 1, 0, 0, 0, 1, 0, -2, 0}

	got := ComputeRates(v, 1, 2)
	e2 := math.Exp(-2)
	want := Rates{Biomass: e2, Oxygen: 2 * e2, Bicarbonate: e2}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("ComputeRates() mismatch (-want +got):\n%s", diff)
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name  string
		x, y  []float64
		wantR float64
		wantP float64
	}{
		{"positive", []float64{1, 2, 3, 4, 5}, []float64{2, 4, 5, 4, 5}, 0.7745966692414834, 0.12402706265755459},
		{"perfect", []float64{1, 2, 3}, []float64{2, 4, 6}, 1, 0},
		{"perfect negative", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pearson(tt.x, tt.y)
			if err != nil {
				t.Fatalf("Pearson() error = %v", err)
			}
			if math.Abs(got.R-tt.wantR) > 1e-9 {
				t.Errorf("R = %v, want %v", got.R, tt.wantR)
			}
			if math.Abs(got.P-tt.wantP) > 1e-6 {
				t.Errorf("P = %v, want %v", got.P, tt.wantP)
			}
			if got.N != len(tt.x) {
				t.Errorf("N = %d, want %d", got.N, len(tt.x))
			}
		})
	}
}

func TestPearsonErrors(t *testing.T) {
	if _, err := Pearson([]float64{1, 2}, []float64{1, 2}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("two samples: error = %v, want ErrTooFewSamples", err)
	}
	if _, err := Pearson([]float64{1, 2, 3}, []float64{1, 2}); err == nil {
		t.Error("length mismatch should fail")
	}

	c, err := Pearson([]float64{1, 2, 3}, []float64{5, 5, 5})
	if err != nil {
		t.Fatalf("constant input: error = %v", err)
	}
	if !math.IsNaN(c.R) || !math.IsNaN(c.P) {
		t.Errorf("constant input = %v, want NaN", c)
	}
}

func TestRateCorrelations(t *testing.T) {
	tbl := &fticr.StoichTable{
		Reaction: core.ReactionMetabolicO2,
		IDs:      []string{"xcpd__0", "xcpd__1", "xcpd__2", "xcpd__3"},
		Rows: []core.Vector{
			{-1.127, 1.527, 0.127, -0.2, 0, 0, 0.327, 0, -1.205, 1},
			{-0.338, 0.4, 1.03, -0.2, 0, 0, 1.23, 0, -0.98, 1},
			{-0.223, -1.605, 1.227, 0.245, 0, 0.223, 1.205, 0, -0.955, 1},
			{-0.049, -0.68, 0.719, -0.2, 0.098, 0, 1.115, 0, -1.037, 1},
		},
	}
	lambdas := []float64{0.127, 0.163, 0.106, 0.021}

	got, err := RateCorrelations(tbl, lambdas, []float64{1, 10}, []float64{0.5, 2, 5})
	if err != nil {
		t.Fatalf("RateCorrelations() error = %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("got %d correlations, want 6", len(got))
	}

	var pairs [][2]float64
	for _, rc := range got {
		pairs = append(pairs, [2]float64{rc.VhCS, rc.VhO2})
	}
	wantPairs := [][2]float64{{1, 0.5}, {1, 2}, {1, 5}, {10, 0.5}, {10, 2}, {10, 5}}
	if diff := cmp.Diff(wantPairs, pairs); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}

	// Each entry must match a direct computation.
	rc := got[4]
	biom := make([]float64, len(tbl.Rows))
	for i, v := range tbl.Rows {
		biom[i] = ComputeRates(v, rc.VhCS, rc.VhO2).Biomass
	}
	want, err := Pearson(lambdas, biom)
	if err != nil {
		t.Fatalf("Pearson() error = %v", err)
	}
	if diff := cmp.Diff(want, rc.Biomass); diff != "" {
		t.Errorf("biomass correlation mismatch (-want +got):\n%s", diff)
	}
}

func TestRateCorrelationsErrors(t *testing.T) {
	tbl := &fticr.StoichTable{
		Reaction: core.ReactionMetabolicO2,
		Rows:     make([]core.Vector, 3),
	}

	if _, err := RateCorrelations(tbl, []float64{1, 2}, []float64{1}, []float64{1}); err == nil {
		t.Error("misaligned lambdas should fail")
	}
	if _, err := RateCorrelations(tbl, []float64{1, 2, 3}, []float64{0}, []float64{1}); err == nil {
		t.Error("zero scale should fail")
	}
	if _, err := RateCorrelations(tbl, []float64{1, 2, 3}, []float64{1}, []float64{-2}); err == nil {
		t.Error("negative scale should fail")
	}
}
