package vigenere

import "errors"

// ErrEmptyKey is returned when a keyword has no letters.
var ErrEmptyKey = errors.New("vigenere: empty key")
