package epidemic

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// sumTolerance absorbs floating point error when checking that outcome
// probabilities sum to one.
const sumTolerance = 1e-9

// Outcome pairs a value with the probability of drawing it.
type Outcome[T any] struct {
	Value T
	P     float64
}

// Categorical is a weighted discrete distribution over mutually exclusive
// outcomes. Every probability lies in [0, 1] and they sum to 1.
type Categorical[T any] struct {
	outcomes []Outcome[T]
}

// NewCategorical validates the outcome set and returns a distribution.
func NewCategorical[T any](outcomes ...Outcome[T]) (Categorical[T], error) {
	if len(outcomes) == 0 {
		return Categorical[T]{}, fmt.Errorf("%w: empty outcome set", ErrDistribution)
	}
	sum := 0.0
	for _, o := range outcomes {
		if math.IsNaN(o.P) || o.P < -sumTolerance || o.P > 1+sumTolerance {
			return Categorical[T]{}, fmt.Errorf("%w: outcome %v has probability %g", ErrProbabilityRange, o.Value, o.P)
		}
		sum += o.P
	}
	if math.Abs(sum-1) > sumTolerance {
		return Categorical[T]{}, fmt.Errorf("%w: probabilities sum to %g", ErrDistribution, sum)
	}
	return Categorical[T]{outcomes: outcomes}, nil
}

// Bernoulli returns the two-outcome distribution {hit: p, miss: 1-p}.
func Bernoulli[T any](hit, miss T, p float64) (Categorical[T], error) {
	return NewCategorical(Outcome[T]{Value: hit, P: p}, Outcome[T]{Value: miss, P: 1 - p})
}

// Outcomes returns the outcome set.
func (c Categorical[T]) Outcomes() []Outcome[T] { return c.outcomes }

// Sample draws one outcome using a single uniform variate.
func (c Categorical[T]) Sample(rng *rand.Rand) T {
	u := rng.Float64()
	acc := 0.0
	for _, o := range c.outcomes {
		acc += o.P
		if u < acc {
			return o.Value
		}
	}
	// u landed in the rounding gap above the cumulative sum; fall back to
	// the last outcome with non-zero weight.
	for i := len(c.outcomes) - 1; i >= 0; i-- {
		if c.outcomes[i].P > 0 {
			return c.outcomes[i].Value
		}
	}
	return c.outcomes[len(c.outcomes)-1].Value
}
