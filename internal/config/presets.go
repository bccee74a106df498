package config

import "sort"

func fp(v float64) *float64 { return &v }

var Presets = map[string]*Scenario{
	"two-mass": DefaultScenario(),
	"chain": {
		Name:       "chain",
		Simulation: TimeConfig{TMax: 20.0, TStep: 0.01, FullAnimation: true},
		Integrator: "rk4",
		Bodies: []BodyConfig{
			{
				ID: 1, Mass: 1.0, X0: 1.0, XLoc: 0.0,
				Couplings: []CouplingConfig{
					{To: 0, Stiffness: 100.0, Zeta: 0.02},
					{To: 2, Stiffness: 100.0, Zeta: 0.02},
				},
			},
			{
				ID: 2, Mass: 1.0, XLoc: 2.0,
				Couplings: []CouplingConfig{
					{To: 3, Stiffness: 100.0, Zeta: 0.02},
				},
			},
			{
				ID: 3, Mass: 1.0, XLoc: 4.0,
				Couplings: []CouplingConfig{
					{To: 4, Stiffness: 100.0, Zeta: 0.02},
				},
			},
			{
				ID: 4, Mass: 1.0, XLoc: 6.0,
				Couplings: []CouplingConfig{
					{To: 0, Stiffness: 100.0, Zeta: 0.02},
				},
			},
		},
	},
	"forced": {
		Name:       "forced",
		Simulation: TimeConfig{TMax: 30.0, TStep: 0.005},
		Integrator: "rk4",
		Bodies: []BodyConfig{
			{
				ID: 1, Mass: 1.0,
				Couplings: []CouplingConfig{
					{To: 0, Stiffness: 25.0, Zeta: 0.05},
				},
				// Driven just below the 5 rad/s natural frequency.
				Force: &ForceConfig{
					Type: "SIN", Omega: fp(4.8), P0: fp(2.0),
					Start: fp(1.0), Stop: fp(20.0),
				},
			},
		},
	},
	"damped": {
		Name:       "damped",
		Simulation: TimeConfig{TMax: 10.0, TStep: 0.01},
		Integrator: "rk4",
		Bodies: []BodyConfig{
			{
				ID: 1, Mass: 2.0, X0: 1.0,
				Couplings: []CouplingConfig{
					{To: 0, Stiffness: 10.0, Zeta: 1.5},
					{To: 2, Stiffness: 5.0, Zeta: 0.8},
				},
			},
			{
				ID: 2, Mass: 1.0, X0: -0.5,
				Couplings: []CouplingConfig{
					{To: 1, Stiffness: 5.0, Zeta: 0.8},
				},
			},
		},
	},
}

// GetPreset returns a built-in scenario, or nil if the name is unknown.
func GetPreset(name string) *Scenario {
	return Presets[name]
}

// ListPresets returns the preset names sorted alphabetically.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
