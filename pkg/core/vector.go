package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Component indexes a slot of a stoichiometric vector.
type Component int

// Stoichiometric vector components, in their fixed order.
const (
	Donor Component = iota
	H2O
	HCO3
	NH4
	HPO4
	HS
	Proton
	Electron
	Acceptor
	Biomass

	NumComponents
)

var componentNames = [NumComponents]string{
	"donor", "h2o", "hco3", "nh4", "hpo4", "hs", "h", "e", "acceptor", "biom",
}

func (c Component) String() string {
	if c < 0 || c >= NumComponents {
		return "unknown"
	}
	return componentNames[c]
}

// ComponentNames returns the column names of a stoichiometric vector.
func ComponentNames() []string {
	names := make([]string, NumComponents)
	copy(names, componentNames[:])
	return names
}

// Vector is a stoichiometric vector. Negative coefficients are consumed,
// positive ones produced.
type Vector [NumComponents]float64

// Dot returns the dot product of v and w.
func (v Vector) Dot(w Vector) float64 {
	return floats.Dot(v[:], w[:])
}

// AddScaled returns v + alpha*w.
func (v Vector) AddScaled(alpha float64, w Vector) Vector {
	floats.AddScaled(v[:], alpha, w[:])
	return v
}

// Scale returns alpha*v.
func (v Vector) Scale(alpha float64) Vector {
	floats.Scale(alpha, v[:])
	return v
}

// Div returns v with every coefficient divided by d.
func (v Vector) Div(d float64) Vector {
	for i := range v {
		v[i] /= d
	}
	return v
}

// IsFinite reports whether every coefficient is finite.
func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Slice returns the coefficients as a new slice.
func (v Vector) Slice() []float64 {
	s := make([]float64, NumComponents)
	copy(s, v[:])
	return s
}

// ReactionType names one of the reactions derived for a compound.
type ReactionType int

// Reaction types, in export order.
const (
	ReactionDonor ReactionType = iota
	ReactionAcceptor
	ReactionCatabolic
	ReactionAnabolicO2
	ReactionAnabolicHCO3
	ReactionMetabolicO2
	ReactionMetabolicHCO3
)

// ReactionTypes lists every reaction type.
var ReactionTypes = []ReactionType{
	ReactionDonor,
	ReactionAcceptor,
	ReactionCatabolic,
	ReactionAnabolicO2,
	ReactionAnabolicHCO3,
	ReactionMetabolicO2,
	ReactionMetabolicHCO3,
}

var reactionNames = map[ReactionType]string{
	ReactionDonor:         "D",
	ReactionAcceptor:      "A",
	ReactionCatabolic:     "Cat",
	ReactionAnabolicO2:    "An_O2",
	ReactionAnabolicHCO3:  "An_HCO3",
	ReactionMetabolicO2:   "Met_O2",
	ReactionMetabolicHCO3: "Met_HCO3",
}

// String returns the short name used in table names, e.g. "Met_O2".
func (r ReactionType) String() string {
	if name, ok := reactionNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseReactionType accepts the short name of a reaction type ("Met_O2") or
// its table name ("stoichMet_O2").
func ParseReactionType(name string) (ReactionType, bool) {
	for _, rt := range ReactionTypes {
		if name == rt.String() || name == "stoich"+rt.String() {
			return rt, true
		}
	}
	return 0, false
}
