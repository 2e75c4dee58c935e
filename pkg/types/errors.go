package types

import "errors"

// Batch validation errors.
var (
	ErrEmptyBatch   = errors.New("staged batch is empty")
	ErrMissingField = errors.New("case is missing a required field")
)

// Configuration errors.
var (
	ErrDriverEmpty     = errors.New("database driver must not be empty")
	ErrDriverUnknown   = errors.New("unknown database driver")
	ErrHostEmpty       = errors.New("database host must not be empty")
	ErrDatabaseEmpty   = errors.New("database name must not be empty")
	ErrPathEmpty       = errors.New("sqlite database path must not be empty")
	ErrTimeoutNegative = errors.New("timeouts and delays must not be negative")
	ErrRateNegative    = errors.New("row rate must not be negative")
)
