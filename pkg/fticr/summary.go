package fticr

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the mean, sample standard deviation and median of a column.
type Summary struct {
	Mean   float64
	Std    float64
	Median float64
}

// NotComputed is returned by Result.Summary before any stoichiometry exists.
var NotComputed = Summary{Mean: math.NaN(), Std: math.NaN(), Median: math.NaN()}

// Computed reports whether s carries values.
func (s Summary) Computed() bool {
	return !math.IsNaN(s.Mean)
}

// Summary returns the mean, sample standard deviation (n-1) and median of a
// thermodynamic column. A nil or empty result yields NotComputed.
func (r *Result) Summary(column string) (Summary, error) {
	if r.Len() == 0 {
		return NotComputed, nil
	}

	values, err := r.Thermo().Column(column)
	if err != nil {
		return NotComputed, err
	}

	mean, std := stat.MeanStdDev(values, nil)
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Summary{
		Mean:   mean,
		Std:    std,
		Median: percentile(sorted, 50),
	}, nil
}

// percentile returns the p-th percentile (0-100) of sorted values,
// interpolating linearly between the closest ranks.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
