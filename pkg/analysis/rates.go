// Package analysis relates lambda to reaction rates derived from
// stoichiometric coefficients.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

// MuMax is the maximum specific growth rate the rates are scaled by.
const MuMax = 1.0

// ErrTooFewSamples is returned when fewer than three pairs are correlated.
var ErrTooFewSamples = errors.New("correlation needs at least 3 samples")

// Rates holds the rate proxies of one metabolic reaction.
type Rates struct {
	Biomass     float64 // r_biom
	Oxygen      float64 // r_o2
	Bicarbonate float64 // r_hco3
}

// ComputeRates derives the rates of v given the half-saturation-like scales
// of the carbon source (vhCS) and of oxygen (vhO2).
func ComputeRates(v core.Vector, vhCS, vhO2 float64) Rates {
	biom := MuMax * math.Exp(-math.Abs(v[core.Donor])/vhCS) * math.Exp(-math.Abs(v[core.Acceptor])/vhO2)
	return Rates{
		Biomass:     biom,
		Oxygen:      math.Abs(v[core.Acceptor]) * biom,
		Bicarbonate: math.Abs(v[core.HCO3]) * biom,
	}
}

// Correlation is a Pearson coefficient with its two-sided p-value.
type Correlation struct {
	R float64
	P float64
	N int
}

func (c Correlation) String() string {
	return fmt.Sprintf("r=%.4f p=%.4g n=%d", c.R, c.P, c.N)
}

// Pearson correlates x and y. A constant input gives NaN for both r and p.
func Pearson(x, y []float64) (Correlation, error) {
	if len(x) != len(y) {
		return Correlation{}, fmt.Errorf("length mismatch: %d != %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return Correlation{}, ErrTooFewSamples
	}

	r := stat.Correlation(x, y, nil)
	c := Correlation{R: r, N: n}
	switch {
	case math.IsNaN(r):
		c.P = math.NaN()
	case math.Abs(r) >= 1:
		c.R = math.Copysign(1, r)
		c.P = 0
	default:
		df := float64(n - 2)
		t := r * math.Sqrt(df/(1-r*r))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		c.P = 2 * dist.CDF(-math.Abs(t))
	}
	return c, nil
}

// RateCorrelation is the correlation of each rate with lambda_O2 for one
// pair of scales.
type RateCorrelation struct {
	VhCS        float64
	VhO2        float64
	Biomass     Correlation
	Oxygen      Correlation
	Bicarbonate Correlation
}

// RateCorrelations computes the rates of every row of tbl for each (vhCS,
// vhO2) pair and correlates them with lambdas, which must be aligned with
// the rows. Pairs are ordered with vhO2 varying fastest.
func RateCorrelations(tbl *fticr.StoichTable, lambdas, vhCS, vhO2 []float64) ([]RateCorrelation, error) {
	if tbl.Len() != len(lambdas) {
		return nil, fmt.Errorf("%s has %d rows but %d lambda values were given", tbl.Name(), tbl.Len(), len(lambdas))
	}
	for _, v := range append(append([]float64{}, vhCS...), vhO2...) {
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, fmt.Errorf("rate scale must be positive and finite, got %v", v)
		}
	}

	n := tbl.Len()
	biom := make([]float64, n)
	o2 := make([]float64, n)
	hco3 := make([]float64, n)

	out := make([]RateCorrelation, 0, len(vhCS)*len(vhO2))
	for _, cs := range vhCS {
		for _, ox := range vhO2 {
			for i, v := range tbl.Rows {
				r := ComputeRates(v, cs, ox)
				biom[i], o2[i], hco3[i] = r.Biomass, r.Oxygen, r.Bicarbonate
			}

			rc := RateCorrelation{VhCS: cs, VhO2: ox}
			var err error
			if rc.Biomass, err = Pearson(lambdas, biom); err != nil {
				return nil, err
			}
			if rc.Oxygen, err = Pearson(lambdas, o2); err != nil {
				return nil, err
			}
			if rc.Bicarbonate, err = Pearson(lambdas, hco3); err != nil {
				return nil, err
			}
			out = append(out, rc)
		}
	}
	return out, nil
}
