package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMissingColumn     = errors.New("required column missing")
	ErrInvalidValue      = errors.New("invalid numeric value")
	ErrUnknownComparison = errors.New("unknown comparison type")
	ErrLengthMismatch    = errors.New("sequences differ in length")
	ErrInvalidReplicates = errors.New("bootstrap replicate count must be at least 1")
	ErrEmptyTable        = errors.New("table has no header row")
	ErrRaggedRow         = errors.New("row width does not match header")
	ErrDuplicateHeader   = errors.New("duplicate column header")
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// Statistical errors
	ErrInsufficientSamples = errors.New("insufficient paired samples for correlation")

	// ErrUndefinedCorrelation marks a replicate whose rank correlation is NaN.
	// It is never returned by the estimator; it tags warnings.
	ErrUndefinedCorrelation = errors.New("undefined rank correlation")
)

// NewMissingColumnError reports a column absent from the joined table built from source.
func NewMissingColumnError(source string, column ColumnName) error {
	return fmt.Errorf("%w: column '%s' does not exist in the data joined from %s", ErrMissingColumn, column, source)
}

// NewInsufficientSamplesError reports how many paired samples survived.
func NewInsufficientSamplesError(source string, n int) error {
	if source == "" {
		return fmt.Errorf("%w: need at least 2, got %d", ErrInsufficientSamples, n)
	}
	return fmt.Errorf("%w: need at least 2, got %d after joining %s", ErrInsufficientSamples, n, source)
}

// NewInvalidValueError reports a cell that could not be parsed as a float.
func NewInvalidValueError(source string, row int, column ColumnName, raw string) error {
	return fmt.Errorf("%w: %s row %d column '%s' has %q", ErrInvalidValue, source, row, column, raw)
}

// NewUnknownComparisonError reports a comparison label outside expected.
func NewUnknownComparisonError(name, expected string) error {
	return fmt.Errorf("%w: %q (expected %s)", ErrUnknownComparison, name, expected)
}

// Error checking helpers
func IsMissingColumnError(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

func IsInsufficientSamplesError(err error) bool {
	return errors.Is(err, ErrInsufficientSamples)
}

// IsInputError reports whether err was caused by the caller's data or arguments.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrUnknownComparison) ||
		errors.Is(err, ErrInsufficientSamples) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrInvalidReplicates) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrRaggedRow) ||
		errors.Is(err, ErrDuplicateHeader) ||
		errors.Is(err, ErrUnsupportedFormat)
}
