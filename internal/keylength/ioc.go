// Package keylength estimates the key length of a Vigenère ciphertext from
// the index of coincidence of its cosets.
//
// When a ciphertext is split into the right number of cosets, each coset is
// a Caesar shift of plaintext and keeps the plaintext's index of
// coincidence (about 0.065 for English). Wrong splits mix alphabets and
// drift toward the uniform value of 1/26.
package keylength

import (
	"sync"

	"vigcrack/internal/coset"
	"vigcrack/internal/text"
)

// IoC returns the index of coincidence of a letter count table whose
// counts add up to n:
//
//	sum f_i*(f_i-1) / (n*(n-1))
//
// It returns ErrDegenerateCoset when n < 2.
func IoC(counts []int, n int) (float64, error) {
	if n < 2 {
		return 0, ErrDegenerateCoset
	}
	var sum int
	for _, f := range counts {
		sum += f * (f - 1)
	}
	return float64(sum) / (float64(n) * float64(n-1)), nil
}

// CosetIoC returns the index of coincidence of a run of symbols.
func CosetIoC(buf []byte, size int) (float64, error) {
	return IoC(text.Counts(buf, size), len(buf))
}

// AverageIoC averages the index of coincidence of the m cosets of buf.
// Cosets with fewer than two symbols are skipped; used is the number of
// cosets that contributed. If none did, ErrDegenerateCoset is returned.
// With parallel set, cosets are measured concurrently.
func AverageIoC(buf []byte, m, size int, parallel bool) (avg float64, used int, err error) {
	values := make([]float64, m)
	errs := make([]error, m)

	if parallel {
		var wg sync.WaitGroup
		wg.Add(m)
		for o := 0; o < m; o++ {
			go func(o int) {
				defer wg.Done()
				values[o], errs[o] = CosetIoC(coset.Coset(buf, m, o), size)
			}(o)
		}
		wg.Wait()
	} else {
		for o := 0; o < m; o++ {
			values[o], errs[o] = CosetIoC(coset.Coset(buf, m, o), size)
		}
	}

	var sum float64
	for o := 0; o < m; o++ {
		if errs[o] != nil {
			continue
		}
		sum += values[o]
		used++
	}
	if used == 0 {
		return 0, 0, ErrDegenerateCoset
	}
	return sum / float64(used), used, nil
}
