package keylength

import (
	"context"
	"errors"

	"vigcrack/internal/language"
	"vigcrack/internal/text"
)

// Default search bounds.
const (
	DefaultMinKeyLength = 2
	DefaultMaxKeyLength = 64
)

// Candidate is one tried key length.
type Candidate struct {
	KeyLength  int     `json:"key_length"`
	AverageIoC float64 `json:"average_ioc"`
	Cosets     int     `json:"cosets"`
	Accepted   bool    `json:"accepted"`
}

// Estimate is the outcome of a successful search.
type Estimate struct {
	KeyLength  int
	AverageIoC float64
	// Candidates lists every tried length in search order; the last one is
	// the accepted length.
	Candidates []Candidate
}

// Estimator searches key lengths in increasing order and accepts the first
// whose average coset IoC lies inside the model's tolerance window.
type Estimator struct {
	Model *language.Model

	// MinKeyLength and MaxKeyLength bound the search. The effective upper
	// bound is further limited to len(ciphertext)/2 so every coset holds at
	// least two symbols.
	MinKeyLength int
	MaxKeyLength int

	// ParallelThreshold is the ciphertext length from which cosets are
	// measured concurrently. Zero disables parallelism.
	ParallelThreshold int

	// Observe, if set, is called for every candidate in search order.
	Observe func(Candidate)
}

// NewEstimator returns an estimator with the default bounds.
func NewEstimator(model *language.Model) *Estimator {
	if model == nil {
		model = language.English()
	}
	return &Estimator{
		Model:        model,
		MinKeyLength: DefaultMinKeyLength,
		MaxKeyLength: DefaultMaxKeyLength,
	}
}

// Bounds returns the inclusive key length range searched for a ciphertext
// of the given length. hi < lo means nothing can be searched.
func (e *Estimator) Bounds(length int) (lo, hi int) {
	lo = e.MinKeyLength
	if lo < DefaultMinKeyLength {
		lo = DefaultMinKeyLength
	}
	hi = length / 2
	if e.MaxKeyLength > 0 && e.MaxKeyLength < hi {
		hi = e.MaxKeyLength
	}
	return lo, hi
}

// Estimate finds the smallest key length in Bounds whose average IoC the
// model accepts. It returns a *SearchError wrapping ErrKeyLengthNotFound
// when the bounds are exhausted, and a *text.SymbolError for symbols
// outside the alphabet.
func (e *Estimator) Estimate(ctx context.Context, buf []byte) (*Estimate, error) {
	if err := text.Validate(buf); err != nil {
		return nil, err
	}
	lo, hi := e.Bounds(len(buf))
	parallel := e.ParallelThreshold > 0 && len(buf) >= e.ParallelThreshold

	res := &Estimate{}
	for m := lo; m <= hi; m++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		avg, used, err := AverageIoC(buf, m, e.Model.AlphabetSize, parallel)
		if errors.Is(err, ErrDegenerateCoset) {
			// Larger m only shrinks the cosets further.
			break
		}
		if err != nil {
			return nil, err
		}

		c := Candidate{
			KeyLength:  m,
			AverageIoC: avg,
			Cosets:     used,
			Accepted:   e.Model.Accepts(avg),
		}
		res.Candidates = append(res.Candidates, c)
		if e.Observe != nil {
			e.Observe(c)
		}
		if c.Accepted {
			res.KeyLength = m
			res.AverageIoC = avg
			return res, nil
		}
	}

	return nil, &SearchError{Length: len(buf), Min: lo, Max: hi}
}

// Profile computes the average IoC for every length in Bounds without
// stopping at the first accepted one.
func (e *Estimator) Profile(ctx context.Context, buf []byte) ([]Candidate, error) {
	if err := text.Validate(buf); err != nil {
		return nil, err
	}
	lo, hi := e.Bounds(len(buf))
	parallel := e.ParallelThreshold > 0 && len(buf) >= e.ParallelThreshold

	var res []Candidate
	for m := lo; m <= hi; m++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		avg, used, err := AverageIoC(buf, m, e.Model.AlphabetSize, parallel)
		if err != nil {
			break
		}
		res = append(res, Candidate{
			KeyLength:  m,
			AverageIoC: avg,
			Cosets:     used,
			Accepted:   e.Model.Accepts(avg),
		})
	}
	return res, nil
}
