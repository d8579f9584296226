package solver

import "errors"

// Configuration errors returned by Config.Validate and SetParam.
var (
	// ErrInvalidBounds indicates a non-positive or oversized simulation extent,
	// or non-finite gravity.
	ErrInvalidBounds = errors.New("solver: bounds must be positive and finite")

	// ErrInvalidRadius indicates a spawn radius outside the supported range.
	ErrInvalidRadius = errors.New("solver: spawn radius out of range")

	// ErrInvalidSpawnSafety indicates a bad safety factor or iteration cap.
	ErrInvalidSpawnSafety = errors.New("solver: spawn safety settings out of range")

	// ErrInvalidPopulation indicates negative or inverted population bounds.
	ErrInvalidPopulation = errors.New("solver: invalid population bounds")

	// ErrInvalidHeat indicates a negative or non-finite heat setting or
	// restitution.
	ErrInvalidHeat = errors.New("solver: heat and restitution settings must be finite and non-negative")

	// ErrNonFinite is returned by SetParam for NaN or infinite values.
	ErrNonFinite = errors.New("solver: parameter value must be finite")

	// ErrUnknownParam is returned by SetParam for names it does not know.
	ErrUnknownParam = errors.New("solver: unknown parameter")
)
