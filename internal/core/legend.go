package core

import "image/color"

// LegendEntry is one labelled color swatch with its current value.
type LegendEntry struct {
	Label string
	Color color.RGBA
	Value float64
}

// LegendProvider is implemented by sims whose cell values map to named
// categories.
type LegendProvider interface {
	Legend() []LegendEntry
}

// TurnProvider reports how many turns a sim has advanced.
type TurnProvider interface {
	Turn() int
}

// ErrProvider reports the error that halted a sim.
type ErrProvider interface {
	Err() error
}

// Finisher reports whether a sim has reached its final turn.
type Finisher interface {
	Done() bool
}
