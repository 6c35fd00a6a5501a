package epidemic

import "errors"

var (
	// ErrInvalidSize reports a grid size that is not positive.
	ErrInvalidSize = errors.New("epidemic: grid size must be positive")
	// ErrDistribution reports a categorical distribution that does not sum to 1.
	ErrDistribution = errors.New("epidemic: probabilities must sum to 1")
	// ErrProbabilityRange reports a (possibly history-adjusted) probability
	// outside [0, 1].
	ErrProbabilityRange = errors.New("epidemic: probability outside [0, 1]")
	// ErrInvalidTurns reports a negative turn count.
	ErrInvalidTurns = errors.New("epidemic: turn count must not be negative")
	// ErrInvalidNormalization reports a non-positive population normalization.
	ErrInvalidNormalization = errors.New("epidemic: normalization must be positive")
	// ErrSizeMismatch reports a proposed grid whose shape differs from the store's.
	ErrSizeMismatch = errors.New("epidemic: grid size mismatch")
)
