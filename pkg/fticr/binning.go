package fticr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
)

var (
	// ErrInvalidBins is returned for a non-positive bin count.
	ErrInvalidBins = errors.New("n_bins must be > 0")
	// ErrInvalidCutoff is returned for a cutoff outside [0, 100).
	ErrInvalidCutoff = errors.New("cutoff must be 0 <= cutoff < 100")
	// ErrUnknownBinMethod is returned for an unrecognized binning method.
	ErrUnknownBinMethod = errors.New("unknown binning method")
	// ErrNotComputed is returned when binning a result without lambda values.
	ErrNotComputed = errors.New("lambda values have not been computed")
)

// ArgumentError reports an invalid binning parameter.
type ArgumentError struct {
	Param string
	Value interface{}
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Param, e.Value, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// ValidateBinning checks the bin count and two-sided cutoff percentage.
func ValidateBinning(nBins int, cutoff float64) error {
	if nBins <= 0 {
		return &ArgumentError{Param: "n_bins", Value: nBins, Err: ErrInvalidBins}
	}
	if !(cutoff >= 0 && cutoff < 100) {
		return &ArgumentError{Param: "cutoff", Value: cutoff, Err: ErrInvalidCutoff}
	}
	return nil
}

// BinStrategy partitions lambda values into bins.
type BinStrategy interface {
	// Name is the name callers select the strategy by.
	Name() string
	// Edges returns the nBins+1 bin edges for the given lambda values.
	Edges(lambdas []float64, nBins int, cutoff float64) []float64
	// Assign returns the bin of a value given its edges, or -1 when the
	// value falls outside every bin.
	Assign(edges []float64, value float64) int
}

// Binning method names.
const (
	BinCumulative = "cumulative"
	BinUniform    = "uniform"
)

var strategies = map[string]BinStrategy{
	BinCumulative: cumulativeBins{},
	BinUniform:    uniformBins{},
}

// Strategy looks up a binning strategy by name.
func Strategy(name string) (BinStrategy, error) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &ArgumentError{Param: "method", Value: name, Err: ErrUnknownBinMethod}
	}
	return s, nil
}

// StrategyNames lists the available binning methods.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cumulativeBins trims both tails of the lambda distribution at the cutoff
// percentiles and splits the remaining range into equal-width (lo, hi]
// intervals. Without a cutoff the range is [0, max].
type cumulativeBins struct{}

func (cumulativeBins) Name() string { return BinCumulative }

func (cumulativeBins) Edges(lambdas []float64, nBins int, cutoff float64) []float64 {
	sorted := sortedCopy(lambdas)
	var lo, hi float64
	if cutoff > 0 {
		lo = percentile(sorted, cutoff)
		hi = percentile(sorted, 100-cutoff)
	} else {
		lo = 0
		hi = sorted[len(sorted)-1]
	}
	return linspace(lo, hi, nBins+1)
}

func (cumulativeBins) Assign(edges []float64, value float64) int {
	if !(edges[0] < edges[len(edges)-1]) {
		return -1
	}
	// First edge >= value; value == edges[0] lies outside (edges[0], edges[1]].
	i := sort.SearchFloat64s(edges, value)
	if i == 0 || i == len(edges) {
		return -1
	}
	return i - 1
}

// uniformBins places edges at evenly spaced percentiles between the cutoff
// and 100-cutoff, giving bins of (nearly) equal population. The first bin is
// closed on the left.
type uniformBins struct{}

func (uniformBins) Name() string { return BinUniform }

func (uniformBins) Edges(lambdas []float64, nBins int, cutoff float64) []float64 {
	sorted := sortedCopy(lambdas)
	edges := make([]float64, nBins+1)
	step := (100 - 2*cutoff) / float64(nBins)
	for i := range edges {
		edges[i] = percentile(sorted, cutoff+float64(i)*step)
	}
	edges[nBins] = percentile(sorted, 100-cutoff)
	return edges
}

func (uniformBins) Assign(edges []float64, value float64) int {
	if value == edges[0] {
		return 0
	}
	i := sort.SearchFloat64s(edges, value)
	if i == 0 || i == len(edges) {
		return -1
	}
	return i - 1
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Bin is the averaged composition of the compounds in one lambda bin.
type Bin struct {
	Label       string
	Lower       float64
	Upper       float64
	Composition core.Composition // element means
	Lambda      float64          // mean lambda_O2
	Members     []string         // compound identifiers
}

// BinTable holds the non-empty bins of a binning run.
type BinTable struct {
	Method string
	Cutoff float64
	Edges  []float64
	Bins   []Bin
}

// Len returns the number of non-empty bins.
func (t *BinTable) Len() int {
	return len(t.Bins)
}

// AverageByLambdaBins bins the processed compounds by lambda_O2 with the
// named strategy and averages the elemental composition of each bin.
// Compounds outside every bin are dropped, and empty bins are absent from
// the table.
func (r *Result) AverageByLambdaBins(method string, nBins int, cutoff float64) (*BinTable, error) {
	if err := ValidateBinning(nBins, cutoff); err != nil {
		return nil, err
	}
	strategy, err := Strategy(method)
	if err != nil {
		return nil, err
	}
	if r.Len() == 0 {
		return nil, ErrNotComputed
	}

	lambdas := r.Lambdas()
	edges := strategy.Edges(lambdas, nBins, cutoff)

	members := make([][]int, nBins)
	for i, l := range lambdas {
		if b := strategy.Assign(edges, l); b >= 0 {
			members[b] = append(members[b], i)
		}
	}

	t := &BinTable{
		Method: strategy.Name(),
		Cutoff: cutoff,
		Edges:  edges,
	}
	for b, idx := range members {
		if len(idx) == 0 {
			continue
		}
		t.Bins = append(t.Bins, r.averageBin(b, idx, edges, lambdas))
	}

	r.log().Debugw("Binned compounds by lambda",
		"method", t.Method,
		"bins", nBins,
		"cutoff", cutoff,
		"lambda_min", edges[0],
		"lambda_max", edges[len(edges)-1],
		"non_empty", len(t.Bins))

	return t, nil
}

func (r *Result) averageBin(b int, idx []int, edges, lambdas []float64) Bin {
	bin := Bin{
		Label:   fmt.Sprintf("Bin%d", b+1),
		Lower:   edges[b],
		Upper:   edges[b+1],
		Members: make([]string, len(idx)),
	}

	column := make([]float64, len(idx))
	for _, el := range core.Elements {
		for k, i := range idx {
			column[k], _ = r.Compounds[i].Composition.Get(el)
		}
		_ = bin.Composition.Set(el, stat.Mean(column, nil))
	}
	for k, i := range idx {
		column[k] = lambdas[i]
		bin.Members[k] = r.Compounds[i].ID
	}
	bin.Lambda = stat.Mean(column, nil)

	return bin
}

// PeakTable converts the bin averages to a peak table that NewDataset
// accepts, with the isotope and adduct flags zeroed.
func (t *BinTable) PeakTable() core.PeakTable {
	cols := append(append([]string{}, RequiredColumns...), core.ColumnNa, core.ColumnC13)
	tbl := core.PeakTable{Columns: cols}
	for _, bin := range t.Bins {
		row := make([]float64, 0, len(cols))
		for _, el := range RequiredColumns {
			v, _ := bin.Composition.Get(el)
			row = append(row, v)
		}
		row = append(row, 0, 0)
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

// Labels returns the bin labels, aligned with the rows of PeakTable.
func (t *BinTable) Labels() []string {
	labels := make([]string, len(t.Bins))
	for i, bin := range t.Bins {
		labels[i] = bin.Label
	}
	return labels
}
