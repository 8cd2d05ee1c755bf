// Package core provides the elemental compositions, stoichiometric vectors and
// thermodynamic calculations behind ThermoStoich.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Atomic masses (monoisotopic)
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassS = 31.9720706900
	MassP = 30.9737615100
)

// Element symbols of the tracked CHNOPS elements.
const (
	ElementC = "C"
	ElementH = "H"
	ElementN = "N"
	ElementO = "O"
	ElementP = "P"
	ElementS = "S"
)

// Elements lists the tracked elements in formula order (C, H, N, O, P, S).
var Elements = []string{ElementC, ElementH, ElementN, ElementO, ElementP, ElementS}

// Composition stores the elemental composition of one molecule.
// Counts are integral for measured compounds and may be fractional for
// bin-averaged compositions.
type Composition struct {
	C, H, N, O, S, P float64
}

// Get returns the count of the named element.
func (c Composition) Get(element string) (float64, bool) {
	switch element {
	case ElementC:
		return c.C, true
	case ElementH:
		return c.H, true
	case ElementN:
		return c.N, true
	case ElementO:
		return c.O, true
	case ElementP:
		return c.P, true
	case ElementS:
		return c.S, true
	}
	return 0, false
}

// Set assigns the count of the named element.
func (c *Composition) Set(element string, count float64) error {
	switch element {
	case ElementC:
		c.C = count
	case ElementH:
		c.H = count
	case ElementN:
		c.N = count
	case ElementO:
		c.O = count
	case ElementP:
		c.P = count
	case ElementS:
		c.S = count
	default:
		return fmt.Errorf("unknown element '%s'", element)
	}
	return nil
}

// Total returns the sum of all element counts.
func (c Composition) Total() float64 {
	return c.C + c.H + c.N + c.O + c.S + c.P
}

// Validate checks that every count is finite and non-negative.
func (c Composition) Validate() error {
	var errs []string
	for _, el := range Elements {
		n, _ := c.Get(el)
		if math.IsNaN(n) || math.IsInf(n, 0) {
			errs = append(errs, fmt.Sprintf("%s count is not finite", el))
		} else if n < 0 {
			errs = append(errs, fmt.Sprintf("%s count must be non-negative", el))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Composition",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Formula renders the molecular formula in C, H, N, O, P, S order. Elements
// with a zero count are omitted, as is a count suffix of 1.
func (c Composition) Formula() string {
	var sb strings.Builder
	for _, el := range Elements {
		n, _ := c.Get(el)
		if n <= 0 {
			continue
		}
		sb.WriteString(el)
		if n != 1 {
			sb.WriteString(strconv.FormatFloat(n, 'f', -1, 64))
		}
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (c Composition) String() string {
	return c.Formula()
}

var formulaToken = regexp.MustCompile(`([A-Z][a-z]?)(\d+(?:\.\d+)?)?`)

// ParseFormula parses a molecular formula such as "C35H32O6S2" into a
// composition. Only CHNOPS elements are accepted and each may appear once.
func ParseFormula(formula string) (Composition, error) {
	var comp Composition
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return comp, fmt.Errorf("empty formula")
	}

	seen := make(map[string]bool)
	consumed := 0
	for _, m := range formulaToken.FindAllStringSubmatchIndex(formula, -1) {
		if m[0] != consumed {
			return comp, fmt.Errorf("invalid formula '%s' at offset %d", formula, consumed)
		}
		consumed = m[1]

		el := formula[m[2]:m[3]]
		if seen[el] {
			return comp, fmt.Errorf("element %s repeated in formula '%s'", el, formula)
		}
		seen[el] = true

		count := 1.0
		if m[4] >= 0 {
			n, err := strconv.ParseFloat(formula[m[4]:m[5]], 64)
			if err != nil {
				return comp, fmt.Errorf("invalid count for %s in '%s': %w", el, formula, err)
			}
			count = n
		}
		if err := comp.Set(el, count); err != nil {
			return comp, fmt.Errorf("formula '%s': %w", formula, err)
		}
	}
	if consumed != len(formula) {
		return comp, fmt.Errorf("invalid formula '%s' at offset %d", formula, consumed)
	}

	return comp, nil
}

// MonoisotopicMass computes the neutral monoisotopic mass.
func (c Composition) MonoisotopicMass() float64 {
	return c.C*MassC +
		c.H*MassH +
		c.N*MassN +
		c.O*MassO +
		c.S*MassS +
		c.P*MassP
}

// HC returns the H:C ratio used on Van Krevelen diagrams, or NaN without carbon.
func (c Composition) HC() float64 {
	if c.C == 0 {
		return math.NaN()
	}
	return c.H / c.C
}

// OC returns the O:C ratio used on Van Krevelen diagrams, or NaN without carbon.
func (c Composition) OC() float64 {
	if c.C == 0 {
		return math.NaN()
	}
	return c.O / c.C
}
