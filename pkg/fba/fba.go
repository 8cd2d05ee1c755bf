// Package fba renders stoichiometry results as the compound, reaction and
// media tables read by flux-balance model builders. Every species carries the
// [c0] compartment.
package fba

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

// Compartment is the suffix of every species and reaction identifier.
const Compartment = "c0"

// Media flux bounds and concentration.
const (
	MediaMinFlux       = -1000
	MediaMaxFlux       = 1000
	MediaConcentration = 1
)

// Column sets, in file order.
var (
	CompoundColumns = []string{"id", "name", "formula", "charge", "inchikey", "smiles", "deltag", "kegg id", "ms id"}
	ReactionColumns = []string{
		"id", "direction", "compartment", "gpr", "name", "enzyme", "deltag", "reference", "equation",
		"definition", "ms id", "bigg id", "kegg id", "kegg pathways", "metacyc pathways",
	}
	MediaColumns = []string{"compounds", "name", "formula", "minFlux", "maxFlux", "concentration"}
)

// cofactorFormulas are the formulas of the fixed species. Biomass is taken
// from the calculator constants.
var cofactorFormulas = map[core.Component]string{
	core.H2O:      "H2O",
	core.HCO3:     "HCO3",
	core.NH4:      "NH4",
	core.HPO4:     "HPO4",
	core.HS:       "HS",
	core.Proton:   "H",
	core.Electron: "e-",
	core.Acceptor: "O2",
}

// Compound is one row of the compound file. Only ID and Formula are filled.
type Compound struct {
	ID       string
	Name     string
	Formula  string
	Charge   string
	InChIKey string
	SMILES   string
	DeltaG   string
	KEGG     string
	MS       string
}

// Record returns the row in CompoundColumns order.
func (c Compound) Record() []string {
	return []string{c.ID, c.Name, c.Formula, c.Charge, c.InChIKey, c.SMILES, c.DeltaG, c.KEGG, c.MS}
}

// Reaction is one row of the reaction file. Only ID and Equation are filled.
type Reaction struct {
	ID              string
	Direction       string
	Compartment     string
	GPR             string
	Name            string
	Enzyme          string
	DeltaG          string
	Reference       string
	Equation        string
	Definition      string
	MS              string
	BiGG            string
	KEGG            string
	KEGGPathways    string
	MetaCycPathways string
}

// Record returns the row in ReactionColumns order.
func (r Reaction) Record() []string {
	return []string{
		r.ID, r.Direction, r.Compartment, r.GPR, r.Name, r.Enzyme, r.DeltaG, r.Reference, r.Equation,
		r.Definition, r.MS, r.BiGG, r.KEGG, r.KEGGPathways, r.MetaCycPathways,
	}
}

// MediaEntry is one row of the media file.
type MediaEntry struct {
	Compound      string
	Name          string
	Formula       string
	MinFlux       int
	MaxFlux       int
	Concentration int
}

// Record returns the row in MediaColumns order.
func (m MediaEntry) Record() []string {
	return []string{
		m.Compound, m.Name, m.Formula,
		fmt.Sprint(m.MinFlux), fmt.Sprint(m.MaxFlux), fmt.Sprint(m.Concentration),
	}
}

// SpeciesID returns the compartment-qualified identifier of a species.
func SpeciesID(name string) string {
	return name + "_" + Compartment
}

// Compounds lists every compound followed by the fixed cofactors, in vector
// component order, with biomass last.
func Compounds(cpds []fticr.Compound, biomass core.Composition) []Compound {
	out := make([]Compound, 0, len(cpds)+int(core.NumComponents)-1)
	for _, c := range cpds {
		out = append(out, Compound{ID: SpeciesID(c.ID), Formula: c.Formula})
	}
	for comp := core.H2O; comp < core.NumComponents; comp++ {
		formula := cofactorFormulas[comp]
		if comp == core.Biomass {
			formula = biomass.Formula()
		}
		out = append(out, Compound{ID: SpeciesID(comp.String()), Formula: formula})
	}
	return out
}

// Reactions writes one equation per row of t, numbered from xrxn1.
func Reactions(t *fticr.StoichTable) []Reaction {
	out := make([]Reaction, t.Len())
	for i, v := range t.Rows {
		out[i] = Reaction{
			ID:       fmt.Sprintf("xrxn%d_%s", i+1, Compartment),
			Equation: Equation(v, t.IDs[i]),
		}
	}
	return out
}

// Equation renders v as "reactants <=> products". Each term is the absolute
// coefficient in parentheses, two spaces and the species with its
// compartment. The donor is named by donorID and zero coefficients are left
// out.
func Equation(v core.Vector, donorID string) string {
	var reactants, products []string
	for comp := core.Donor; comp < core.NumComponents; comp++ {
		coef := v[comp]
		if coef == 0 {
			continue
		}
		name := comp.String()
		if comp == core.Donor {
			name = donorID
		}
		if coef > 0 {
			products = append(products, term(coef, name))
		} else {
			reactants = append(reactants, term(-coef, name))
		}
	}
	return strings.Join(reactants, " + ") + " <=> " + strings.Join(products, " + ")
}

func term(coef float64, name string) string {
	return fmt.Sprintf("(%s)  %s[%s]", core.FormatFloat(coef), name, Compartment)
}

// Media lists every compound as an unbounded medium component.
func Media(cpds []fticr.Compound) []MediaEntry {
	out := make([]MediaEntry, len(cpds))
	for i, c := range cpds {
		out[i] = MediaEntry{
			Compound:      c.ID,
			Name:          c.Formula,
			Formula:       c.Formula,
			MinFlux:       MediaMinFlux,
			MaxFlux:       MediaMaxFlux,
			Concentration: MediaConcentration,
		}
	}
	return out
}
