// Package config defines the YAML scenario format, an alternative to the
// .ste input files. A scenario fully describes a system: time settings,
// bodies, couplings and forces.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pavshv/mdof/internal/model"
	"github.com/pavshv/mdof/internal/sim"
)

const (
	DefaultDt         = 0.01
	DefaultTMax       = 10.0
	DefaultIntegrator = "rk4"
)

type Scenario struct {
	Name       string       `yaml:"name"`
	Simulation TimeConfig   `yaml:"simulation"`
	Integrator string       `yaml:"integrator"`
	Bodies     []BodyConfig `yaml:"bodies"`
}

type TimeConfig struct {
	TMax          float64 `yaml:"tmax"`
	TStep         float64 `yaml:"tstep"`
	FullAnimation bool    `yaml:"full_animation"`
}

type BodyConfig struct {
	ID        int              `yaml:"id"`
	Mass      float64          `yaml:"mass"`
	X0        float64          `yaml:"x0"`
	V0        float64          `yaml:"v0"`
	XLoc      float64          `yaml:"xloc"`
	Couplings []CouplingConfig `yaml:"couplings"`
	Force     *ForceConfig     `yaml:"force,omitempty"`
}

type CouplingConfig struct {
	To        int     `yaml:"to"`
	Stiffness float64 `yaml:"stiffness"`
	Zeta      float64 `yaml:"zeta"`
}

// ForceConfig uses pointers for the optional fields so an absent value is
// distinguishable from a literal zero.
type ForceConfig struct {
	Type  string   `yaml:"type"`
	Omega *float64 `yaml:"omega,omitempty"`
	P0    *float64 `yaml:"p0,omitempty"`
	Start *float64 `yaml:"start,omitempty"`
	Stop  *float64 `yaml:"stop,omitempty"`
}

// DefaultScenario is the two-mass reference system: body 1 anchored to
// ground (k=10) and coupled to body 2 (k=5), unit masses, undamped.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:       "two-mass",
		Simulation: TimeConfig{TMax: 1.0, TStep: DefaultDt},
		Integrator: DefaultIntegrator,
		Bodies: []BodyConfig{
			{
				ID: 1, Mass: 1.0, X0: 1.0,
				Couplings: []CouplingConfig{
					{To: 0, Stiffness: 10.0},
					{To: 2, Stiffness: 5.0},
				},
			},
			{
				ID: 2, Mass: 1.0,
				Couplings: []CouplingConfig{
					{To: 1, Stiffness: 5.0},
				},
			},
		},
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Scenario{
		Simulation: TimeConfig{TMax: DefaultTMax, TStep: DefaultDt},
		Integrator: DefaultIntegrator,
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build converts the scenario into a body registry and simulation config,
// applying the same validation as the .ste parser.
func (s *Scenario) Build() (*model.Registry, sim.Config, error) {
	cfg := sim.Config{
		Dt:            s.Simulation.TStep,
		TMax:          s.Simulation.TMax,
		FullAnimation: s.Simulation.FullAnimation,
	}

	reg := model.NewRegistry()
	for _, bc := range s.Bodies {
		b := &model.Body{
			ID:   bc.ID,
			Mass: bc.Mass,
			X0:   bc.X0,
			V0:   bc.V0,
			XLoc: bc.XLoc,
		}
		for _, cc := range bc.Couplings {
			b.Couplings = append(b.Couplings, model.Coupling{
				To:        cc.To,
				Stiffness: cc.Stiffness,
				Zeta:      cc.Zeta,
			})
		}
		if bc.Force != nil {
			spec, err := bc.Force.spec()
			if err != nil {
				return nil, sim.Config{}, fmt.Errorf("config: body %d: %w", bc.ID, err)
			}
			b.Force = spec
		}
		if err := reg.Add(b); err != nil {
			return nil, sim.Config{}, fmt.Errorf("config: %w", err)
		}
	}
	return reg, cfg, nil
}

func (fc *ForceConfig) spec() (model.ForceSpec, error) {
	kind, err := model.ParseForceKind(fc.Type)
	if err != nil {
		return model.ForceSpec{}, err
	}
	spec := model.ForceSpec{Kind: kind}
	if fc.P0 != nil {
		spec.Amplitude = *fc.P0
		spec.HasAmplitude = true
	}
	if fc.Omega != nil {
		spec.Omega = *fc.Omega
		spec.HasOmega = true
	}
	if fc.Start != nil {
		spec.Start = *fc.Start
		spec.HasStart = true
	}
	if fc.Stop != nil {
		spec.Stop = *fc.Stop
		spec.HasStop = true
	}
	return spec, nil
}
