package meltr

import "errors"

// Common errors used throughout the meltr package
var (
	// ErrInvalidToken is returned when the tokenizer hands the melt loop an
	// EOF token where a concrete value was expected. This indicates broken
	// windowing/resume state or a misbehaving tokenizer and is not
	// recoverable.
	ErrInvalidToken = errors.New("invalid token: EOF inside melt loop")

	// ErrLocaleMarks is returned when a locale's decimal mark and grouping
	// mark are the same character.
	ErrLocaleMarks = errors.New("decimal mark and grouping mark must be different")
	// ErrUnknownEncoding is returned when a locale names an encoding this
	// package cannot resolve.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrConfigValidation is returned when configuration validation fails
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrConfigNotFound is returned when no configuration file could be
	// located from the working directory upward.
	ErrConfigNotFound = errors.New("configuration file not found")
)
