package epidemic

import (
	"fmt"
	"math/rand/v2"

	"epi-ca/internal/core"
)

// Engine computes next-turn grids from read-only snapshots.
type Engine struct {
	params Params
	ring   []int
}

// NewEngine returns an engine applying the transition rules of p.
func NewEngine(p Params) *Engine {
	return &Engine{params: p}
}

// Params returns the engine's transition parameters.
func (e *Engine) Params() Params { return e.params }

// Propose writes the next turn for every cell of snap into next. It reads
// only snap, so the result does not depend on iteration order. Ring
// vaccination is applied in a second serialized pass after every cell rule
// has run.
func (e *Engine) Propose(snap Snapshot, next *core.ByteGrid, rng *rand.Rand) error {
	n := snap.Size()
	if n == 0 || next == nil || next.W != n || next.H != n {
		return ErrSizeMismatch
	}
	data := next.Cells()
	e.ring = e.ring[:0]

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			st := snap.StateAt(i)
			history := int(snap.HistoryAt(x, y))
			out := st
			var err error
			switch st {
			case Affected:
				out, err = e.affected(history, rng)
				if e.params.Ring {
					e.ring = append(e.ring, i)
				}
			case Susceptible:
				out, err = e.susceptible(snap, x, y, history, rng)
			case Recovered:
				out, err = e.recovered(history, rng)
			}
			if err != nil {
				return fmt.Errorf("cell (%d,%d) %s at history %d: %w", x, y, st, history, err)
			}
			data[i] = uint8(out)
		}
	}

	for _, i := range e.ring {
		for _, j := range snap.Neighbors(i%n, i/n) {
			if snap.StateAt(j) == Susceptible {
				data[j] = uint8(Vaccinated)
			}
		}
	}
	return nil
}

func (e *Engine) affected(history int, rng *rand.Rand) (State, error) {
	adj := e.params.Adjusted(history)
	d, err := NewCategorical(
		Outcome[State]{Value: Affected, P: 1 - (adj.Recovery + adj.Death)},
		Outcome[State]{Value: Recovered, P: adj.Recovery},
		Outcome[State]{Value: Dead, P: adj.Death},
	)
	if err != nil {
		return Affected, err
	}
	return d.Sample(rng), nil
}

// susceptible runs a single infection draw when any neighbor is Affected,
// then, outside ring mode, the background vaccination override.
func (e *Engine) susceptible(snap Snapshot, x, y, history int, rng *rand.Rand) (State, error) {
	out := Susceptible
	for _, j := range snap.Neighbors(x, y) {
		if snap.StateAt(j) != Affected {
			continue
		}
		d, err := Bernoulli(Affected, Susceptible, e.params.Adjusted(history).Infection)
		if err != nil {
			return Susceptible, err
		}
		out = d.Sample(rng)
		break
	}
	if e.params.Ring {
		return out, nil
	}
	v, err := Bernoulli(Vaccinated, out, e.params.Vaccination)
	if err != nil {
		return out, err
	}
	return v.Sample(rng), nil
}

func (e *Engine) recovered(history int, rng *rand.Rand) (State, error) {
	d, err := Bernoulli(Susceptible, Recovered, e.params.Adjusted(history).ImmunityLoss)
	if err != nil {
		return Recovered, err
	}
	return d.Sample(rng), nil
}
