package keylength

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateCoset indicates a coset too small for a meaningful IoC.
	ErrDegenerateCoset = errors.New("keylength: degenerate coset")

	// ErrKeyLengthNotFound indicates the bounded search found no key length
	// whose average IoC falls inside the model's tolerance window.
	ErrKeyLengthNotFound = errors.New("keylength: key length not found")
)

// SearchError describes an exhausted key length search.
type SearchError struct {
	// Length is the ciphertext length.
	Length int
	// Min and Max are the bounds that were searched. Max < Min means the
	// ciphertext was too short to try any candidate.
	Min, Max int
}

func (e *SearchError) Error() string {
	if e.Max < e.Min {
		return fmt.Sprintf("keylength: key length not found: ciphertext of %d symbols is too short", e.Length)
	}
	return fmt.Sprintf("keylength: key length not found in [%d, %d] for %d symbols", e.Min, e.Max, e.Length)
}

// Unwrap returns ErrKeyLengthNotFound.
func (e *SearchError) Unwrap() error {
	return ErrKeyLengthNotFound
}
