package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput          = errors.New("invalid input")
	ErrDistributionParameter = errors.New("invalid distribution parameter")

	// Estimation errors
	ErrInsufficientSamples = errors.New("insufficient samples")

	// Reshape errors
	ErrAmbiguousPivot = errors.New("ambiguous pivot")

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Error constructors with context
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}

func NewParameterError(family string, param string, value float64) error {
	return fmt.Errorf("%w: %s %s=%v", ErrDistributionParameter, family, param, value)
}

func NewInsufficientSamplesError(need, got int) error {
	return fmt.Errorf("%w: need at least %d observations, got %d", ErrInsufficientSamples, need, got)
}

func NewAmbiguousPivotError(participant int, condition string) error {
	return fmt.Errorf("%w: more than one row for participant %d condition %q", ErrAmbiguousPivot, participant, condition)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDistributionParameter)
}

func IsEstimationError(err error) bool {
	return errors.Is(err, ErrInsufficientSamples)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}
