package epidemic

import (
	"errors"
	"math"
	"testing"

	"epi-ca/internal/core"
)

func TestCategoricalRejectsMalformed(t *testing.T) {
	if _, err := NewCategorical[State](); !errors.Is(err, ErrDistribution) {
		t.Fatalf("empty set: %v", err)
	}
	if _, err := NewCategorical(Outcome[State]{Susceptible, 0.5}, Outcome[State]{Affected, 0.4}); !errors.Is(err, ErrDistribution) {
		t.Fatalf("short sum: %v", err)
	}
	if _, err := NewCategorical(Outcome[State]{Susceptible, 1.2}, Outcome[State]{Affected, -0.2}); !errors.Is(err, ErrProbabilityRange) {
		t.Fatalf("out of range: %v", err)
	}
	if _, err := Bernoulli(Affected, Susceptible, math.NaN()); !errors.Is(err, ErrProbabilityRange) {
		t.Fatalf("NaN: %v", err)
	}
}

func TestCategoricalCertainOutcomes(t *testing.T) {
	rng := core.NewRNG(4).Source()
	d, err := NewCategorical(
		Outcome[State]{Affected, 0},
		Outcome[State]{Recovered, 1},
		Outcome[State]{Dead, 0},
	)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		if got := d.Sample(rng); got != Recovered {
			t.Fatalf("draw %d = %s, expected Recovered", i, got)
		}
	}
}

func TestCategoricalFrequencies(t *testing.T) {
	rng := core.NewRNG(8).Source()
	d, err := NewCategorical(
		Outcome[State]{Affected, 0.5},
		Outcome[State]{Recovered, 0.3},
		Outcome[State]{Dead, 0.2},
	)
	if err != nil {
		t.Fatal(err)
	}
	const draws = 100000
	var counts [NumStates]int
	for i := 0; i < draws; i++ {
		counts[d.Sample(rng)]++
	}
	for _, o := range d.Outcomes() {
		got := float64(counts[o.Value]) / draws
		if math.Abs(got-o.P) > 0.01 {
			t.Fatalf("%s frequency %.4f, expected %.2f", o.Value, got, o.P)
		}
	}
}
