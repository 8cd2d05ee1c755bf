// Package filter provides peak-row filtering for assigned compound tables
package filter

import (
	"fmt"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	DropInvalid    bool // Drop rows with negative or non-finite element counts
	DropUnassigned bool // Drop rows whose element counts are all zero
	DropIsotopes   bool // Drop rows carrying a 13C label
	DropAdducts    bool // Drop sodium adducts
}

// DefaultConfig enables every filter
func DefaultConfig() *Config {
	return &Config{
		DropInvalid:    true,
		DropUnassigned: true,
		DropIsotopes:   true,
		DropAdducts:    true,
	}
}

// Report counts the rows removed by each filter
type Report struct {
	Invalid    int
	Unassigned int
	Isotopes   int
	Adducts    int
}

// Removed returns the total number of removed rows
func (r Report) Removed() int {
	return r.Invalid + r.Unassigned + r.Isotopes + r.Adducts
}

func (r Report) String() string {
	return fmt.Sprintf("invalid=%d unassigned=%d isotopes=%d adducts=%d",
		r.Invalid, r.Unassigned, r.Isotopes, r.Adducts)
}

// Apply applies all configured filters, returning the kept rows in their
// original order. A row is counted against the first filter that removes it.
func (c *Config) Apply(peaks []core.Peak) ([]core.Peak, Report) {
	var report Report
	kept := make([]core.Peak, 0, len(peaks))

	for _, peak := range peaks {
		switch {
		case c.DropInvalid && !isValid(peak):
			report.Invalid++
		case c.DropUnassigned && !peak.IsAssigned():
			report.Unassigned++
		case c.DropIsotopes && isLabelled(peak):
			report.Isotopes++
		case c.DropAdducts && isAdduct(peak):
			report.Adducts++
		default:
			kept = append(kept, peak)
		}
	}

	return kept, report
}

// isValid checks that every element count is finite and non-negative
func isValid(peak core.Peak) bool {
	return peak.Composition.Validate() == nil
}

// isLabelled reports a 13C isotope peak
func isLabelled(peak core.Peak) bool {
	return peak.C13 != 0
}

// isAdduct reports a sodium adduct
func isAdduct(peak core.Peak) bool {
	return peak.Na != 0
}

// Deduplicate removes rows whose composition and flags repeat an earlier row,
// returning the unique rows and the number removed
func Deduplicate(peaks []core.Peak) ([]core.Peak, int) {
	seen := make(map[[8]float64]bool, len(peaks))
	unique := make([]core.Peak, 0, len(peaks))

	for _, peak := range peaks {
		sig := peak.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		unique = append(unique, peak)
	}

	return unique, len(peaks) - len(unique)
}
