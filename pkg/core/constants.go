package core

import (
	"fmt"
	"math"
	"strings"
)

// Constants are the chemical and physical constants of the model.
type Constants struct {
	// Biomass is the biomass formula per C-mol.
	Biomass Composition
	// FormationEnergies are standard Gibbs energies of formation (kJ/mol)
	// per component. The donor slot is solved per compound and ignored here.
	FormationEnergies Vector
	// Acceptor is the electron-acceptor half-reaction.
	Acceptor Vector

	GasConstant     float64 // kJ/(K.mol)
	Temperature     float64 // K
	PH              float64
	Efficiency      float64 // TEEM energy transfer efficiency
	SynthesisEnergy float64 // kJ/(mol biomass)
}

// DefaultConstants returns the TEEM constants with oxygen as electron
// acceptor and CH1.8N0.2O0.5 biomass.
func DefaultConstants() Constants {
	return Constants{
		Biomass:           Composition{C: 1, H: 1.8, N: 0.2, O: 0.5},
		FormationEnergies: Vector{0, -237.2, -586.8, -79.3, -1096.1, 12.1, 0, 0, 16.4, -67},
		Acceptor:          OxygenAcceptor(),
		GasConstant:       0.008314,
		Temperature:       298,
		PH:                7,
		Efficiency:        0.43,
		SynthesisEnergy:   200,
	}
}

// OxygenAcceptor returns the O2 reduction half-reaction
// O2 + 4H+ + 4e- -> 2H2O.
func OxygenAcceptor() Vector {
	var v Vector
	v[Acceptor] = -1
	v[Proton] = -4
	v[Electron] = -4
	v[H2O] = 2
	return v
}

// Validate checks the constants for values the derivation cannot use.
func (c Constants) Validate() error {
	var errs []string
	if err := c.Biomass.Validate(); err != nil {
		errs = append(errs, "biomass: "+err.Error())
	}
	if !c.FormationEnergies.IsFinite() {
		errs = append(errs, "formation energies must be finite")
	}
	if !c.Acceptor.IsFinite() {
		errs = append(errs, "acceptor must be finite")
	}
	if c.Acceptor[Electron] == 0 {
		errs = append(errs, "acceptor must transfer electrons")
	}
	if c.GasConstant <= 0 {
		errs = append(errs, "gas constant must be positive")
	}
	if c.Temperature <= 0 {
		errs = append(errs, "temperature must be positive")
	}
	if c.Efficiency <= 0 || c.Efficiency > 1 {
		errs = append(errs, "efficiency must be in (0, 1]")
	}
	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Constants",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// protonCorrection returns the pH correction for a reaction with the given
// proton coefficient.
func (c Constants) protonCorrection(protons float64) float64 {
	return c.GasConstant * c.Temperature * protons * (-c.PH * math.Ln10)
}

func (c Constants) String() string {
	return fmt.Sprintf("biomass=%s pH=%g T=%g eta=%g delGsyn=%g",
		c.Biomass.Formula(), c.PH, c.Temperature, c.Efficiency, c.SynthesisEnergy)
}
