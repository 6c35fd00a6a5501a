package app

import "epi-ca/internal/core"

type seedProvider interface {
	Seed() int64
}

// effectiveSeed returns the seed the sim actually used when it reports one,
// so a zero request resolved by the sim can be replayed later.
func effectiveSeed(sim core.Sim, requested int64) int64 {
	if sp, ok := sim.(seedProvider); ok {
		return sp.Seed()
	}
	return requested
}

// reseed resets sim with seed and returns the seed to reuse for a same-seed
// reset.
func reseed(sim core.Sim, seed int64) int64 {
	sim.Reset(seed)
	return effectiveSeed(sim, seed)
}
