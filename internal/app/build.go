package app

import (
	"fmt"

	"epi-ca/internal/core"
	"epi-ca/internal/sims/epidemic"
)

// BuildSim constructs the simulation selected by cfg and resets it with
// cfg.Seed. A config file is only understood by the epidemic simulation;
// other registered simulations take the overrides as their factory map.
func BuildSim(cfg *Config) (core.Sim, error) {
	overrides, err := cfg.Overrides.Map()
	if err != nil {
		return nil, err
	}
	if cfg.ConfigPath != "" {
		if cfg.Sim != "epidemic" {
			return nil, fmt.Errorf("sim %q does not accept a config file", cfg.Sim)
		}
		ec, err := epidemic.LoadConfig(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		if err := ec.Apply(overrides); err != nil {
			return nil, err
		}
		sim, err := epidemic.NewWithConfig(ec)
		if err != nil {
			return nil, err
		}
		if cfg.Seed != 0 {
			sim.Reset(cfg.Seed)
		}
		return sim, nil
	}

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q (available: %v)", cfg.Sim, core.SimNames())
	}
	sim, err := factory(overrides)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Sim, err)
	}
	if cfg.Seed != 0 {
		sim.Reset(cfg.Seed)
	}
	return sim, nil
}
