package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoCarbon is returned for compositions without carbon. Both the
// oxidation state of carbon and the O2 anabolic reaction divide by the
// carbon count.
var ErrNoCarbon = errors.New("composition has no carbon")

// ArithmeticError reports a degenerate step in the derivation, such as a
// zero denominator or a non-finite result.
type ArithmeticError struct {
	Step    string
	Message string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic error in %s: %s", e.Step, e.Message)
}

// Pathway selects the electron acceptor used for the anabolic reaction.
type Pathway int

const (
	// PathwayO2 balances biomass synthesis with O2 (Kleerebezem and Van Loosdrecht, 2010).
	PathwayO2 Pathway = iota
	// PathwayHCO3 balances biomass synthesis with HCO3- (McCarty).
	PathwayHCO3
)

func (p Pathway) String() string {
	switch p {
	case PathwayO2:
		return "O2"
	case PathwayHCO3:
		return "HCO3"
	}
	return "unknown"
}

// ThermoColumns are the names of the thermodynamic properties, in the order
// returned by Thermodynamics.Values.
var ThermoColumns = []string{
	"delGcox0PerC", "delGcox0", "delGcox", "delGcat0", "delGcat",
	"delGan0_O2", "delGan0_HCO3", "delGan_O2", "delGan_HCO3",
	"delGdis_O2", "delGdis_HCO3", "lambda_O2", "lambda_HCO3",
}

// Thermodynamics holds the Gibbs energies (kJ) and lambda values of a compound.
type Thermodynamics struct {
	DelGcox0PerC float64 // kJ/C-mol
	DelGcox0     float64
	DelGcox      float64
	DelGcat0     float64
	DelGcat      float64
	DelGan0O2    float64
	DelGan0HCO3  float64
	DelGanO2     float64
	DelGanHCO3   float64
	DelGdisO2    float64
	DelGdisHCO3  float64
	LambdaO2     float64
	LambdaHCO3   float64
}

// Values returns the properties in ThermoColumns order.
func (t Thermodynamics) Values() []float64 {
	return []float64{
		t.DelGcox0PerC, t.DelGcox0, t.DelGcox, t.DelGcat0, t.DelGcat,
		t.DelGan0O2, t.DelGan0HCO3, t.DelGanO2, t.DelGanHCO3,
		t.DelGdisO2, t.DelGdisHCO3, t.LambdaO2, t.LambdaHCO3,
	}
}

// Stoichiometry is the full set of reactions and energies for one compound.
type Stoichiometry struct {
	Composition Composition

	Donor         Vector
	Acceptor      Vector
	Catabolic     Vector
	AnabolicO2    Vector
	AnabolicHCO3  Vector
	MetabolicO2   Vector
	MetabolicHCO3 Vector

	Thermo Thermodynamics
}

// Vector returns the stoichiometric vector of the given reaction.
func (s *Stoichiometry) Vector(rt ReactionType) Vector {
	switch rt {
	case ReactionDonor:
		return s.Donor
	case ReactionAcceptor:
		return s.Acceptor
	case ReactionCatabolic:
		return s.Catabolic
	case ReactionAnabolicO2:
		return s.AnabolicO2
	case ReactionAnabolicHCO3:
		return s.AnabolicHCO3
	case ReactionMetabolicO2:
		return s.MetabolicO2
	case ReactionMetabolicHCO3:
		return s.MetabolicHCO3
	}
	panic(fmt.Sprintf("core: unknown reaction type %d", rt))
}

// Lambda returns (lambda_O2, lambda_HCO3).
func (s *Stoichiometry) Lambda() [2]float64 {
	return [2]float64{s.Thermo.LambdaO2, s.Thermo.LambdaHCO3}
}

// Calculator derives stoichiometries from compositions. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	constants Constants
	biomass   Vector
}

// NewCalculator creates a calculator for the given constants.
func NewCalculator(c Constants) (*Calculator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	biomass := biomassSynthesis(c.Biomass)
	if biomass[Electron] == 0 {
		return nil, &ValidationError{Field: "Constants", Message: "biomass synthesis transfers no electrons"}
	}
	return &Calculator{constants: c, biomass: biomass}, nil
}

var defaultCalculator = func() *Calculator {
	calc, err := NewCalculator(DefaultConstants())
	if err != nil {
		panic(err)
	}
	return calc
}()

// DefaultCalculator returns a calculator using DefaultConstants.
func DefaultCalculator() *Calculator {
	return defaultCalculator
}

// Constants returns the calculator's constants.
func (c *Calculator) Constants() Constants {
	return c.constants
}

// Compute derives all reactions, Gibbs energies and lambda values for comp.
func (c *Calculator) Compute(comp Composition) (*Stoichiometry, error) {
	if err := comp.Validate(); err != nil {
		return nil, err
	}
	if comp.C <= 0 {
		return nil, ErrNoCarbon
	}

	s := &Stoichiometry{
		Composition: comp,
		Donor:       DonorHalfReaction(comp),
		Acceptor:    c.constants.Acceptor,
	}

	var err error
	s.Catabolic, err = balance(s.Donor, s.Acceptor, "catabolic reaction")
	if err != nil {
		return nil, err
	}
	s.AnabolicO2, err = c.anabolic(PathwayO2, comp, s.Donor)
	if err != nil {
		return nil, err
	}
	s.AnabolicHCO3, err = c.anabolic(PathwayHCO3, comp, s.Donor)
	if err != nil {
		return nil, err
	}

	if err := c.energies(s); err != nil {
		return nil, err
	}
	if err := s.checkFinite(); err != nil {
		return nil, err
	}

	return s, nil
}

// Compute derives a stoichiometry using the default constants.
func Compute(comp Composition) (*Stoichiometry, error) {
	return defaultCalculator.Compute(comp)
}

// DonorHalfReaction returns the oxidation half-reaction of a CaHbNcOdSePf
// donor to HCO3-, NH4+, HPO4 2-, HS-, H+ and e-.
func DonorHalfReaction(comp Composition) Vector {
	a, b, c, d, e, f := comp.C, comp.H, comp.N, comp.O, comp.S, comp.P
	return Vector{
		-1,
		-(3*a + 4*e - d),
		a,
		c,
		e,
		f,
		5*a + b - 4*c - 2*d + 7*e - f,
		4*a + b - 3*c - 2*d + 5*e - 2*f,
		0,
		0,
	}
}

// ElectronCount returns the electrons transferred by the donor half-reaction.
func ElectronCount(comp Composition) float64 {
	return DonorHalfReaction(comp)[Electron]
}

// NOSC returns the nominal oxidation state of carbon (LaRowe and Van Cappellen, 2011).
func NOSC(comp Composition) float64 {
	return -ElectronCount(comp)/comp.C + 4
}

// biomassSynthesis returns the biomass "star" vector: the reversed donor
// half-reaction of biomass, with the biomass coefficient moved from the donor
// slot to the biomass slot.
func biomassSynthesis(biomass Composition) Vector {
	v := DonorHalfReaction(biomass).Scale(-1)
	v[Biomass] = v[Donor]
	v[Donor] = 0
	return v
}

// balance removes the electron component of v by subtracting a multiple of ref.
func balance(v, ref Vector, step string) (Vector, error) {
	if ref[Electron] == 0 {
		return Vector{}, &ArithmeticError{Step: step, Message: "reference reaction transfers no electrons"}
	}
	out := v.AddScaled(-v[Electron]/ref[Electron], ref)
	out[Electron] = 0
	return out, nil
}

// anabolic builds the anabolic reaction of the given pathway.
func (c *Calculator) anabolic(p Pathway, comp Composition, donor Vector) (Vector, error) {
	step := "anabolic reaction (" + p.String() + ")"

	switch p {
	case PathwayO2:
		if comp.C == 0 {
			return Vector{}, ErrNoCarbon
		}
		star := c.biomass.AddScaled(1/comp.C, donor)
		switch e := star[Electron]; {
		case e > 0:
			return balance(star, c.constants.Acceptor, step)
		case e < 0:
			return balance(star, donor, step)
		default:
			return star, nil
		}

	case PathwayHCO3:
		an, err := balance(donor, c.biomass, step)
		if err != nil {
			return Vector{}, err
		}
		if an[Biomass] == 0 {
			return Vector{}, &ArithmeticError{Step: step, Message: "no biomass is produced"}
		}
		return an.Div(an[Biomass]), nil
	}

	return Vector{}, fmt.Errorf("unknown pathway %d", p)
}

// energies fills the Gibbs energies, lambda values and metabolic reactions.
func (c *Calculator) energies(s *Stoichiometry) error {
	k := c.constants
	t := &s.Thermo

	t.DelGcox0PerC = 60.3 - 28.5*NOSC(s.Composition)
	t.DelGcox0 = t.DelGcox0PerC * s.Composition.C * math.Abs(s.Donor[Donor])

	// Solve the donor's formation energy from the oxidation energy.
	gf := k.FormationEnergies
	gf[Donor] = 0
	if s.Donor[Donor] == 0 {
		return &ArithmeticError{Step: "donor formation energy", Message: "donor coefficient is zero"}
	}
	gf[Donor] = (t.DelGcox0 - gf.Dot(s.Donor)) / s.Donor[Donor]

	t.DelGcox = t.DelGcox0 + k.protonCorrection(s.Donor[Proton])
	t.DelGcat0 = gf.Dot(s.Catabolic)
	t.DelGcat = t.DelGcat0 + k.protonCorrection(s.Catabolic[Proton])
	if t.DelGcat == 0 {
		return &ArithmeticError{Step: "lambda", Message: "catabolic energy is zero"}
	}

	o2 := c.partition(gf, s.Catabolic, s.AnabolicO2, t.DelGcat)
	t.DelGan0O2, t.DelGanO2, t.LambdaO2, t.DelGdisO2 = o2.delGan0, o2.delGan, o2.lambda, o2.delGdis
	s.MetabolicO2 = o2.metabolic

	hco3 := c.partition(gf, s.Catabolic, s.AnabolicHCO3, t.DelGcat)
	t.DelGan0HCO3, t.DelGanHCO3, t.LambdaHCO3, t.DelGdisHCO3 = hco3.delGan0, hco3.delGan, hco3.lambda, hco3.delGdis
	s.MetabolicHCO3 = hco3.metabolic

	return nil
}

type partitioning struct {
	delGan0   float64
	delGan    float64
	lambda    float64
	delGdis   float64
	metabolic Vector
}

// partition applies the Thermodynamic Electron Equivalents Model to one
// anabolic pathway.
func (c *Calculator) partition(gf, cat, an Vector, delGcat float64) partitioning {
	k := c.constants
	var p partitioning

	p.delGan0 = gf.Dot(an)
	p.delGan = p.delGan0 + k.protonCorrection(an[Proton])

	m := -1.0
	if p.delGan < 0 {
		m = 1
	}
	p.lambda = (p.delGan*math.Pow(k.Efficiency, m) + k.SynthesisEnergy) / (-delGcat * k.Efficiency)

	// A non-positive lambda means no catabolism contributes.
	p.metabolic = an
	if p.lambda > 0 {
		p.metabolic = an.AddScaled(p.lambda, cat)
	}
	p.delGdis = gf.Dot(p.metabolic) + k.protonCorrection(p.metabolic[Proton])

	return p
}

func (s *Stoichiometry) checkFinite() error {
	for _, rt := range ReactionTypes {
		if !s.Vector(rt).IsFinite() {
			return &ArithmeticError{Step: rt.String(), Message: "non-finite coefficient"}
		}
	}
	for i, v := range s.Thermo.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ArithmeticError{Step: ThermoColumns[i], Message: "non-finite value"}
		}
	}
	return nil
}
