// Package language holds the statistical model of the target plaintext
// language: its letter frequencies and the index of coincidence expected
// from text written in it.
//
// Models are plain values. The analysis packages receive a *Model
// explicitly instead of reading package globals, so tests can swap in
// alternative tables.
package language

import (
	"fmt"
	"math"
)

// Default tuning for English text.
const (
	// DefaultExpectedIoC is the index of coincidence of English text.
	DefaultExpectedIoC = 0.065

	// DefaultTolerance is the accepted distance from the expected IoC.
	DefaultTolerance = 0.010

	// RandomIoC is the index of coincidence of uniformly random letters (1/26).
	RandomIoC = 1.0 / 26
)

// englishFrequencies is the reference letter distribution for A..Z.
var englishFrequencies = [...]float64{
	0.082, 0.015, 0.028, 0.043, 0.127, 0.022, 0.020, 0.061, 0.070, 0.002,
	0.008, 0.040, 0.024, 0.067, 0.075, 0.019, 0.001, 0.060, 0.063, 0.091,
	0.028, 0.010, 0.023, 0.001, 0.020, 0.001,
}

// Model describes a plaintext language.
type Model struct {
	// Name identifies the model in logs and reports.
	Name string `toml:"name" json:"name" yaml:"name"`

	// AlphabetSize is the number of symbols; always 26.
	AlphabetSize int `toml:"alphabet_size" json:"alphabet_size" yaml:"alphabet_size"`

	// ExpectedIoC is the index of coincidence of plaintext in this language.
	ExpectedIoC float64 `toml:"expected_ioc" json:"expected_ioc" yaml:"expected_ioc"`

	// Tolerance is the half-width of the acceptance window around ExpectedIoC.
	Tolerance float64 `toml:"tolerance" json:"tolerance" yaml:"tolerance"`

	// Frequencies holds the probability of each letter, indexed from 'A'.
	Frequencies []float64 `toml:"frequencies" json:"frequencies" yaml:"frequencies"`
}

// English returns a fresh copy of the built-in English model.
func English() *Model {
	freq := make([]float64, len(englishFrequencies))
	copy(freq, englishFrequencies[:])
	return &Model{
		Name:         "english",
		AlphabetSize: len(englishFrequencies),
		ExpectedIoC:  DefaultExpectedIoC,
		Tolerance:    DefaultTolerance,
		Frequencies:  freq,
	}
}

// Accepts reports whether an average IoC lies inside the tolerance window.
func (m *Model) Accepts(avg float64) bool {
	return math.Abs(avg-m.ExpectedIoC) <= m.Tolerance
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	clone := *m
	clone.Frequencies = append([]float64(nil), m.Frequencies...)
	return &clone
}

// WithWindow returns a copy of the model with a different acceptance window.
// Zero values keep the model's own setting.
func (m *Model) WithWindow(expected, tolerance float64) *Model {
	clone := m.Clone()
	if expected > 0 {
		clone.ExpectedIoC = expected
	}
	if tolerance > 0 {
		clone.Tolerance = tolerance
	}
	return clone
}

// Validate checks the model for internal consistency.
func (m *Model) Validate() error {
	if m.AlphabetSize != 26 {
		return fmt.Errorf("%w: alphabet size %d, want 26", ErrInvalidModel, m.AlphabetSize)
	}
	if len(m.Frequencies) != m.AlphabetSize {
		return fmt.Errorf("%w: %d frequencies for alphabet of %d",
			ErrInvalidModel, len(m.Frequencies), m.AlphabetSize)
	}
	var sum float64
	for i, f := range m.Frequencies {
		if f < 0 || math.IsNaN(f) {
			return fmt.Errorf("%w: frequency %d is %v", ErrInvalidModel, i, f)
		}
		sum += f
	}
	if sum < 0.95 || sum > 1.05 {
		return fmt.Errorf("%w: frequencies sum to %.4f", ErrInvalidModel, sum)
	}
	if m.ExpectedIoC <= 0 || m.ExpectedIoC >= 1 {
		return fmt.Errorf("%w: expected IoC %v outside (0, 1)", ErrInvalidModel, m.ExpectedIoC)
	}
	if m.Tolerance < 0 || m.Tolerance >= m.ExpectedIoC {
		return fmt.Errorf("%w: tolerance %v outside [0, %v)", ErrInvalidModel, m.Tolerance, m.ExpectedIoC)
	}
	return nil
}
