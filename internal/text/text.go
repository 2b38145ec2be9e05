// Package text handles ciphertext symbols and the alphabet index mapping.
//
// Every ciphertext that enters the analysis pipeline passes through Parse,
// so downstream packages can index count tables with Index(b) without
// bounds checks.
package text

import (
	"strings"
)

// AlphabetSize is the number of letters in the supported alphabet.
const AlphabetSize = 26

// First is the symbol at alphabet index 0.
const First = 'A'

// Ciphertext is a validated sequence of uppercase alphabet symbols.
// It is never modified after Parse returns it.
type Ciphertext []byte

// String returns the ciphertext as a string.
func (c Ciphertext) String() string {
	return string(c)
}

// Len returns the number of symbols.
func (c Ciphertext) Len() int {
	return len(c)
}

// Parse trims surrounding whitespace from s and validates that every
// remaining symbol is an uppercase letter.
func Parse(s string) (Ciphertext, error) {
	s = strings.TrimSpace(s)
	b := []byte(s)
	if err := Validate(b); err != nil {
		return nil, err
	}
	return Ciphertext(b), nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Ciphertext {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate reports the first symbol outside 'A'..'Z'.
func Validate(b []byte) error {
	for i, c := range b {
		if !IsUpper(c) {
			return &SymbolError{Pos: i, Symbol: rune(c)}
		}
	}
	return nil
}

// IsUpper reports whether c is in the supported alphabet.
func IsUpper(c byte) bool {
	return c >= First && c < First+AlphabetSize
}

// Index maps a validated symbol to its alphabet index.
func Index(c byte) int {
	return int(c - First)
}

// Letter maps an alphabet index in [0, AlphabetSize) to its uppercase symbol.
func Letter(i int) byte {
	return byte(First + i)
}

// LowerLetter maps an alphabet index to its lowercase symbol.
func LowerLetter(i int) byte {
	return byte('a' + i)
}

// Counts returns the number of occurrences of each alphabet index in b.
// size is the length of the returned table.
func Counts(b []byte, size int) []int {
	counts := make([]int, size)
	for _, c := range b {
		counts[Index(c)]++
	}
	return counts
}

// FoldKey upper-cases a user supplied keyword and validates it.
func FoldKey(s string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if err := Validate([]byte(key)); err != nil {
		return "", err
	}
	return key, nil
}
