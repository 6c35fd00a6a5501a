package epidemic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"epi-ca/internal/core"
)

// Frame is published once per committed turn. Cells aliases a buffer owned
// by the simulation and is only valid until the next turn.
type Frame struct {
	Turn   int
	Size   int
	Cells  []uint8
	Counts Counts
	Raw    RawCounts
}

// Observer receives every committed turn, including the initial grid as
// turn 0 on Reset.
type Observer interface {
	ObserveTurn(f Frame) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f Frame) error

// ObserveTurn calls fn(f).
func (fn ObserverFunc) ObserveTurn(f Frame) error { return fn(f) }

// Epidemic runs the stochastic epidemic automaton on a toroidal grid.
type Epidemic struct {
	cfg Config

	store  *Store
	engine *Engine
	next   *core.ByteGrid
	rng    *rand.Rand
	seed   int64

	display []uint8
	history []uint32
	counts  Counts

	turn      int
	err       error
	observers []Observer
}

// New returns an Epidemic with an n×n grid and default parameters.
func New(n int) (*Epidemic, error) {
	cfg := DefaultConfig()
	cfg.Size = n
	return NewWithConfig(cfg)
}

// NewWithConfig validates cfg and returns a seeded simulation at turn 0.
func NewWithConfig(cfg Config) (*Epidemic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := NewStore(cfg.Normalization)
	if err != nil {
		return nil, err
	}
	e := &Epidemic{
		cfg:    cfg,
		store:  store,
		engine: NewEngine(cfg.Params),
		next:   core.NewByteGrid(cfg.Size, cfg.Size),
	}
	e.Reset(cfg.Seed)
	if e.err != nil {
		return nil, e.err
	}
	return e, nil
}

// Name returns the simulation identifier.
func (e *Epidemic) Name() string { return "epidemic" }

// Size reports the grid dimensions.
func (e *Epidemic) Size() core.Size { return core.Size{W: e.cfg.Size, H: e.cfg.Size} }

// Cells exposes the current display buffer.
func (e *Epidemic) Cells() []uint8 { return e.display }

// Config returns the run configuration.
func (e *Epidemic) Config() Config { return e.cfg }

// Turn returns the number of committed turns since the last Reset.
func (e *Epidemic) Turn() int { return e.turn }

// Seed returns the seed used by the last Reset.
func (e *Epidemic) Seed() int64 { return e.seed }

// Err reports the error that halted the run, if any.
func (e *Epidemic) Err() error { return e.err }

// Done reports whether the configured number of turns has been simulated or
// the run halted on an error. A zero turn count never finishes.
func (e *Epidemic) Done() bool {
	if e.err != nil {
		return true
	}
	return e.cfg.Turns > 0 && e.turn >= e.cfg.Turns
}

// Counts returns the normalized counts of the current grid.
func (e *Epidemic) Counts() Counts { return e.counts }

// RawCounts returns the number of cells in each state.
func (e *Epidemic) RawCounts() RawCounts { return e.store.RawCounts() }

// Series returns a copy of the recorded time series, starting with turn 0.
func (e *Epidemic) Series() Series { return e.store.Series() }

// History exposes the turns-in-current-state counter for every cell.
func (e *Epidemic) History() []uint32 {
	e.history = e.store.CopyHistory(e.history)
	return e.history
}

// Observe registers an observer for subsequent turns.
func (e *Epidemic) Observe(o Observer) {
	if o == nil {
		return
	}
	e.observers = append(e.observers, o)
}

// Reset reseeds the grid. A zero seed falls back to the configured seed and
// then to the wall clock.
func (e *Epidemic) Reset(seed int64) {
	if seed == 0 {
		seed = e.cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.rng = core.NewRNG(seed).Source()
	e.seed = seed
	e.turn = 0
	e.err = nil
	if err := e.store.Initialize(e.cfg.Size, e.cfg.Initial, e.rng); err != nil {
		e.err = err
		return
	}
	e.publish()
}

// Load replaces the grid with explicit states in row-major order and resets
// the turn counter. It is used to set up scenarios.
func (e *Epidemic) Load(cells []State) error {
	if err := e.store.InitializeWith(e.cfg.Size, cells); err != nil {
		return err
	}
	e.turn = 0
	e.err = nil
	e.publish()
	return e.err
}

// Step advances the simulation by one turn: propose the next grid from a
// snapshot, commit it, then record and publish the counts.
func (e *Epidemic) Step() {
	if e.Done() {
		return
	}
	if err := e.engine.Propose(e.store.Snapshot(), e.next, e.rng); err != nil {
		e.err = fmt.Errorf("turn %d: %w", e.turn+1, err)
		return
	}
	if err := e.store.Commit(e.next); err != nil {
		e.err = fmt.Errorf("turn %d: %w", e.turn+1, err)
		return
	}
	e.turn++
	e.publish()
}

// Run steps until Done. The context is only checked between turns.
func (e *Epidemic) Run(ctx context.Context) error {
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Step()
	}
	return e.err
}

func (e *Epidemic) publish() {
	e.counts = e.store.PopulationCounts()
	e.display = e.store.CopyCells(e.display)
	f := Frame{
		Turn:   e.turn,
		Size:   e.cfg.Size,
		Cells:  e.display,
		Counts: e.counts,
		Raw:    e.store.RawCounts(),
	}
	for _, o := range e.observers {
		if err := o.ObserveTurn(f); err != nil {
			e.err = fmt.Errorf("turn %d observer: %w", e.turn, err)
			return
		}
	}
}

func init() {
	core.Register("epidemic", func(cfg map[string]string) (core.Sim, error) {
		c, err := FromMap(cfg)
		if err != nil {
			return nil, err
		}
		e, err := NewWithConfig(c)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}
