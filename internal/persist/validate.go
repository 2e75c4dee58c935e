package persist

import (
	"fmt"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// ValidationError reports a staged case that lacks a required field.
// It unwraps to types.ErrMissingField.
type ValidationError struct {
	Index  int    // Position of the case in the batch.
	Number string // Case number, empty when that is the missing field.
	Field  string // Staging key of the missing field.
}

func (e *ValidationError) Error() string {
	if e.Number == "" {
		return fmt.Sprintf("case at index %d: missing %s", e.Index, e.Field)
	}
	return fmt.Sprintf("case %q at index %d: missing %s", e.Number, e.Index, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return types.ErrMissingField
}

// Validate checks a batch before any connection is opened. An empty batch
// returns types.ErrEmptyBatch; the first case missing a required field
// returns a *ValidationError.
func Validate(batch []types.Case) error {
	if len(batch) == 0 {
		return types.ErrEmptyBatch
	}
	for i := range batch {
		if field := batch[i].MissingField(); field != "" {
			return &ValidationError{Index: i, Number: batch[i].Number, Field: field}
		}
	}
	return nil
}
