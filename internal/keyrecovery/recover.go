// Package keyrecovery recovers a Vigenère keyword once its length is known.
//
// Every coset of the ciphertext is a Caesar shift of plaintext. Rotating
// the coset's letter counts against the reference frequencies of the
// language gives a correlation score per shift; the shift with the best
// alignment is the key letter for that position.
package keyrecovery

import (
	"fmt"
	"sync"

	"vigcrack/internal/coset"
	"vigcrack/internal/language"
	"vigcrack/internal/text"
)

// Score returns the correlation between observed counts, rotated by shift,
// and the reference distribution:
//
//	(1/n) * sum_j counts[(shift+j) mod size] * ref[j]
//
// It returns 0 when n is 0.
func Score(counts []int, n, shift int, ref []float64) float64 {
	if n == 0 {
		return 0
	}
	size := len(counts)
	var sum float64
	for j, r := range ref {
		sum += float64(counts[(shift+j)%size]) * r
	}
	return sum / float64(n)
}

// BestShift returns the index of the first maximum in scores. A uniform or
// empty score table yields 0.
func BestShift(scores []float64) int {
	best := 0
	for s := 1; s < len(scores); s++ {
		if scores[s] > scores[best] {
			best = s
		}
	}
	return best
}

// Scores returns the score of every shift for one coset.
func Scores(buf []byte, model *language.Model) []float64 {
	counts := text.Counts(buf, model.AlphabetSize)
	scores := make([]float64, model.AlphabetSize)
	for s := range scores {
		scores[s] = Score(counts, len(buf), s, model.Frequencies)
	}
	return scores
}

// Key is a recovered keyword.
type Key struct {
	Keyword string
	// Shifts holds the alphabet index of each key letter.
	Shifts []int
	// Scores holds the full shift score table of each position.
	Scores [][]float64
}

// Margin returns, per position, the gap between the best and second best
// score. Small margins mark key letters that were close calls.
func (k *Key) Margin() []float64 {
	out := make([]float64, len(k.Scores))
	for p, scores := range k.Scores {
		best := k.Shifts[p]
		second := -1.0
		for s, v := range scores {
			if s != best && v > second {
				second = v
			}
		}
		if second >= 0 {
			out[p] = scores[best] - second
		}
	}
	return out
}

// Recoverer picks the best shift for each coset.
type Recoverer struct {
	Model *language.Model

	// ParallelThreshold is the ciphertext length from which cosets are
	// scored concurrently. Zero disables parallelism.
	ParallelThreshold int
}

// NewRecoverer returns a sequential recoverer for model.
func NewRecoverer(model *language.Model) *Recoverer {
	if model == nil {
		model = language.English()
	}
	return &Recoverer{Model: model}
}

// Recover returns the m letter keyword of buf. Symbols outside the
// alphabet give a *text.SymbolError.
func (r *Recoverer) Recover(buf []byte, m int) (*Key, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKeyLength, m)
	}
	if err := text.Validate(buf); err != nil {
		return nil, err
	}

	key := &Key{
		Shifts: make([]int, m),
		Scores: make([][]float64, m),
	}
	position := func(p int) {
		key.Scores[p] = Scores(coset.Coset(buf, m, p), r.Model)
		key.Shifts[p] = BestShift(key.Scores[p])
	}

	if r.ParallelThreshold > 0 && len(buf) >= r.ParallelThreshold {
		var wg sync.WaitGroup
		wg.Add(m)
		for p := 0; p < m; p++ {
			go func(p int) {
				defer wg.Done()
				position(p)
			}(p)
		}
		wg.Wait()
	} else {
		for p := 0; p < m; p++ {
			position(p)
		}
	}

	word := make([]byte, m)
	for p, s := range key.Shifts {
		word[p] = text.Letter(s)
	}
	key.Keyword = string(word)
	return key, nil
}
