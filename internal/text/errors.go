package text

import (
	"errors"
	"fmt"
)

// ErrInvalidSymbol indicates a symbol outside the supported alphabet.
var ErrInvalidSymbol = errors.New("text: invalid symbol")

// SymbolError records where an invalid symbol was found.
type SymbolError struct {
	Pos    int
	Symbol rune
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("text: invalid symbol %q at position %d", e.Symbol, e.Pos)
}

// Unwrap returns ErrInvalidSymbol so callers can use errors.Is.
func (e *SymbolError) Unwrap() error {
	return ErrInvalidSymbol
}
