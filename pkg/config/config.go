// Package config loads the YAML parameter file of a run.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

// Config is the parameter file of a run.
type Config struct {
	Binning     Binning     `yaml:"binning"`
	Model       Model       `yaml:"model"`
	Correlation Correlation `yaml:"correlation"`
	Constants   Overrides   `yaml:"constants"`
}

// Binning selects how compounds are averaged by lambda.
type Binning struct {
	Method string  `yaml:"method"`
	Bins   int     `yaml:"bins"`
	Cutoff float64 `yaml:"cutoff"`
}

// Model selects the flux-balance model files to write.
type Model struct {
	Prefix   string `yaml:"prefix"`
	Reaction string `yaml:"reaction"`
}

// Correlation lists the rate scales of the lambda correlation analysis.
type Correlation struct {
	VhCS []float64 `yaml:"vh_cs"`
	VhO2 []float64 `yaml:"vh_o2"`
}

// Overrides replaces individual constants. Unset fields keep their default.
type Overrides struct {
	Biomass           string             `yaml:"biomass"`
	FormationEnergies map[string]float64 `yaml:"formation_energies"`
	GasConstant       *float64           `yaml:"gas_constant"`
	Temperature       *float64           `yaml:"temperature"`
	PH                *float64           `yaml:"ph"`
	Efficiency        *float64           `yaml:"efficiency"`
	SynthesisEnergy   *float64           `yaml:"synthesis_energy"`
}

// Default returns the parameters used when no file is given.
func Default() *Config {
	return &Config{
		Binning: Binning{
			Method: fticr.BinCumulative,
			Bins:   10,
			Cutoff: 5,
		},
		Model: Model{
			Prefix:   "temp",
			Reaction: core.ReactionMetabolicO2.String(),
		},
		Correlation: Correlation{
			VhCS: []float64{1},
			VhO2: []float64{1},
		},
	}
}

// Load reads a parameter file. Keys absent from the file keep their
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML parameters over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every parameter, including the constant overrides.
func (c *Config) Validate() error {
	var errs []error
	if err := fticr.ValidateBinning(c.Binning.Bins, c.Binning.Cutoff); err != nil {
		errs = append(errs, err)
	}
	if _, err := fticr.Strategy(c.Binning.Method); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ReactionType(); err != nil {
		errs = append(errs, err)
	}
	if c.Model.Prefix == "" {
		errs = append(errs, errors.New("model prefix must not be empty"))
	}
	if _, err := c.Constants.Apply(core.DefaultConstants()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ReactionType returns the reaction type written to the model files.
func (c *Config) ReactionType() (core.ReactionType, error) {
	rt, ok := core.ParseReactionType(c.Model.Reaction)
	if !ok {
		return 0, fmt.Errorf("unknown reaction type '%s'", c.Model.Reaction)
	}
	return rt, nil
}

// Calculator builds a calculator from the default constants with the
// overrides applied.
func (c *Config) Calculator() (*core.Calculator, error) {
	constants, err := c.Constants.Apply(core.DefaultConstants())
	if err != nil {
		return nil, err
	}
	return core.NewCalculator(constants)
}

// Apply returns base with the overrides applied and validated.
func (o Overrides) Apply(base core.Constants) (core.Constants, error) {
	c := base

	if o.Biomass != "" {
		biomass, err := core.ParseFormula(o.Biomass)
		if err != nil {
			return c, fmt.Errorf("biomass: %w", err)
		}
		c.Biomass = biomass
	}

	for name, g := range o.FormationEnergies {
		comp, ok := componentByName(name)
		if !ok {
			return c, fmt.Errorf("formation_energies: unknown component '%s' (valid: %s)",
				name, strings.Join(core.ComponentNames()[1:], ", "))
		}
		if comp == core.Donor {
			return c, errors.New("formation_energies: the donor energy is derived per compound")
		}
		c.FormationEnergies[comp] = g
	}

	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.GasConstant, o.GasConstant)
	set(&c.Temperature, o.Temperature)
	set(&c.PH, o.PH)
	set(&c.Efficiency, o.Efficiency)
	set(&c.SynthesisEnergy, o.SynthesisEnergy)

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func componentByName(name string) (core.Component, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for comp := core.Donor; comp < core.NumComponents; comp++ {
		if comp.String() == name {
			return comp, true
		}
	}
	return 0, false
}
