package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"vigcrack/internal/corpus"
	"vigcrack/internal/text"
	"vigcrack/internal/vigenere"
)

// Keyword lengths tried by selftest.
const (
	minSelfTestKey = 3
	maxSelfTestKey = 12
)

func cmdSelfTest(a *app, args []string) int {
	fs := newFlagSet(a, "selftest", "selftest [-n N] [-length L] [-min-rate R]")
	runs := fs.Int("n", 20, "number of random keywords")
	length := fs.Int("length", 1000, "plaintext letters per run")
	minRate := fs.Float64("min-rate", 0.5, "lowest acceptable success rate")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if *runs < 1 || *length < 1 || *minRate < 0 || *minRate > 1 {
		fs.Usage()
		return exitUsage
	}

	plaintext := corpus.Prefix(*length)
	passed := 0
	for i := 1; i <= *runs; i++ {
		if err := a.ctx.Err(); err != nil {
			return a.fail(err)
		}

		key, err := randomKeyword(rand.Reader, minSelfTestKey, maxSelfTestKey)
		if err != nil {
			return a.fail(err)
		}
		ct, err := vigenere.Encrypt(plaintext, key)
		if err != nil {
			return a.fail(err)
		}

		found, status := "-", "FAIL"
		res, err := a.analyzer.Analyze(a.ctx, text.Ciphertext(ct))
		if err == nil {
			found = res.Keyword
			if res.Keyword == key {
				status = "ok"
				passed++
			}
		}
		fmt.Fprintf(a.stdout, "run %3d  key %-12s  found %-12s  %s\n", i, key, found, status)
	}

	rate := float64(passed) / float64(*runs)
	fmt.Fprintf(a.stdout, "\nSuccess rate: %d/%d (%.1f%%)\n", passed, *runs, rate*100)
	if rate < *minRate {
		return exitFailure
	}
	return exitOK
}

// randomKeyword returns a keyword of lo..hi distinct letters drawn from r.
func randomKeyword(r io.Reader, lo, hi int) (string, error) {
	n, err := rand.Int(r, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return "", fmt.Errorf("random keyword: %w", err)
	}
	size := lo + int(n.Int64())

	letters := make([]byte, 26)
	for i := range letters {
		letters[i] = text.Letter(i)
	}
	// Partial Fisher-Yates over the alphabet.
	for i := 0; i < size; i++ {
		j, err := rand.Int(r, big.NewInt(int64(26-i)))
		if err != nil {
			return "", fmt.Errorf("random keyword: %w", err)
		}
		k := i + int(j.Int64())
		letters[i], letters[k] = letters[k], letters[i]
	}
	return string(letters[:size]), nil
}
