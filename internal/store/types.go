// Package store provides the SQLite history of vigcrack analyses.
package store

import "errors"

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("store: record not found")

// Status is the outcome of a recorded analysis.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Record is one stored analysis.
type Record struct {
	ID          int64
	Fingerprint [32]byte
	Source      string
	CreatedNs   int64
	Length      int
	Status      Status
	KeyLength   int
	Keyword     string
	AverageIoC  float64
	Plaintext   string
	Error       string
	Model       string
	DurationNs  int64
}

// Stats summarizes the history.
type Stats struct {
	Total     int64
	Succeeded int64
	Failed    int64
	// Symbols is the total ciphertext length analyzed.
	Symbols int64
}
