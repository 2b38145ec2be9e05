package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vigcrack/internal/corpus"
	"vigcrack/internal/report"
	"vigcrack/internal/store"
	"vigcrack/internal/text"
	"vigcrack/internal/vigenere"
)

func cmdCrack(a *app, args []string) int {
	fs := newFlagSet(a, "crack", "crack [file]")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	raw, source, err := a.readInput(fs.Args())
	if err != nil {
		return a.fail(err)
	}
	res, err := a.crack(raw, source)
	if err != nil {
		return a.fail(err)
	}
	if err := report.Write(a.stdout, res, a.model, a.format); err != nil {
		return a.fail(err)
	}
	return exitOK
}

func cmdKeyLength(a *app, args []string) int {
	fs := newFlagSet(a, "keylength", "keylength [file]")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	raw, _, err := a.readInput(fs.Args())
	if err != nil {
		return a.fail(err)
	}
	ct, err := text.Parse(raw)
	if err != nil {
		return a.fail(fmt.Errorf("parse ciphertext: %w", err))
	}

	cands, err := a.analyzer.Profile(a.ctx, ct)
	if err != nil {
		return a.fail(err)
	}
	est, estErr := a.analyzer.EstimateKeyLength(a.ctx, ct)
	if estErr == nil && a.format == report.FormatText {
		fmt.Fprintf(a.stdout, "Keysize Found! - m = %d\n\n", est.KeyLength)
	}
	if err := report.WriteCandidates(a.stdout, cands, a.model, a.format); err != nil {
		return a.fail(err)
	}
	if estErr != nil {
		return a.fail(estErr)
	}
	return exitOK
}

func cmdDecrypt(a *app, args []string) int {
	fs := newFlagSet(a, "decrypt", "decrypt -key K [file]")
	key := fs.String("key", "", "keyword")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if *key == "" {
		fs.Usage()
		return exitUsage
	}

	raw, _, err := a.readInput(fs.Args())
	if err != nil {
		return a.fail(err)
	}
	ct, err := text.Parse(raw)
	if err != nil {
		return a.fail(fmt.Errorf("parse ciphertext: %w", err))
	}
	pt, err := vigenere.Decrypt(ct.String(), *key)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.stdout, pt)
	return exitOK
}

func cmdEncrypt(a *app, args []string) int {
	fs := newFlagSet(a, "encrypt", "encrypt -key K [file]")
	key := fs.String("key", "", "keyword")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if *key == "" {
		fs.Usage()
		return exitUsage
	}

	raw, _, err := a.readInput(fs.Args())
	if err != nil {
		return a.fail(err)
	}
	// Only the letters of the input are enciphered.
	letters := corpus.Normalize(raw)
	if letters == "" {
		return a.fail(errors.New("no letters in input"))
	}
	ct, err := vigenere.Encrypt(letters, *key)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.stdout, ct)
	return exitOK
}

func cmdMetrics(a *app, args []string) int {
	fs := newFlagSet(a, "metrics", "metrics [file]")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	code := exitOK
	raw, source, err := a.readInput(fs.Args())
	if err == nil {
		_, err = a.crack(raw, source)
	}
	if err != nil {
		code = a.fail(err)
	}

	reg := a.metrics.Registry()
	if a.format == report.FormatJSON {
		err = reg.WriteJSON(a.stdout)
	} else {
		err = reg.WritePrometheus(a.stdout)
	}
	if err != nil {
		return a.fail(err)
	}
	return code
}

// historyEntry is the JSON form of a stored analysis.
type historyEntry struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Status      string    `json:"status"`
	Length      int       `json:"length"`
	KeyLength   int       `json:"key_length,omitempty"`
	Keyword     string    `json:"keyword,omitempty"`
	AverageIoC  float64   `json:"average_ioc,omitempty"`
	Plaintext   string    `json:"plaintext,omitempty"`
	Error       string    `json:"error,omitempty"`
	Model       string    `json:"model,omitempty"`
	DurationNs  int64     `json:"duration_ns"`
}

func toEntry(r *store.Record) historyEntry {
	return historyEntry{
		ID:          r.ID,
		CreatedAt:   time.Unix(0, r.CreatedNs).UTC(),
		Source:      r.Source,
		Fingerprint: store.FormatFingerprint(r.Fingerprint),
		Status:      string(r.Status),
		Length:      r.Length,
		KeyLength:   r.KeyLength,
		Keyword:     r.Keyword,
		AverageIoC:  r.AverageIoC,
		Plaintext:   r.Plaintext,
		Error:       r.Error,
		Model:       r.Model,
		DurationNs:  r.DurationNs,
	}
}

func cmdHistory(a *app, args []string) int {
	fs := newFlagSet(a, "history", "history [-limit N] [-id N] [-fingerprint HEX] [-prune AGE]")
	limit := fs.Int("limit", 20, "number of analyses to list (0 for all)")
	id := fs.Int64("id", 0, "show one analysis")
	fingerprint := fs.String("fingerprint", "", "show the latest successful analysis of a ciphertext")
	prune := fs.Duration("prune", 0, "delete analyses older than this age")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	s, err := a.openStore()
	if err != nil {
		return a.fail(err)
	}

	switch {
	case *prune > 0:
		n, err := s.Prune(time.Now().Add(-*prune).UnixNano())
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintf(a.stdout, "Pruned %d analyses\n", n)
		return exitOK

	case *id > 0:
		r, err := s.Get(*id)
		if err != nil {
			return a.fail(fmt.Errorf("analysis %d: %w", *id, err))
		}
		return a.showRecord(r)

	case *fingerprint != "":
		fp, err := store.ParseFingerprint(*fingerprint)
		if err != nil {
			fs.Usage()
			return exitUsage
		}
		r, err := s.Lookup(fp)
		if err != nil {
			return a.fail(err)
		}
		return a.showRecord(r)
	}

	records, err := s.List(*limit)
	if err != nil {
		return a.fail(err)
	}

	if a.format == report.FormatJSON {
		entries := make([]historyEntry, 0, len(records))
		for i := range records {
			entries = append(entries, toEntry(&records[i]))
		}
		return a.writeJSON(entries)
	}

	if len(records) == 0 {
		fmt.Fprintln(a.stdout, "No analyses recorded.")
		return exitOK
	}

	fmt.Fprintf(a.stdout, "%-5s %-20s %-7s %4s %-16s %8s  %s\n",
		"ID", "WHEN", "STATUS", "M", "KEYWORD", "SYMBOLS", "FINGERPRINT")
	for _, r := range records {
		keyword := r.Keyword
		if r.Status != store.StatusOK {
			keyword = "-"
		}
		fmt.Fprintf(a.stdout, "%-5d %-20s %-7s %4d %-16s %8d  %s\n",
			r.ID,
			time.Unix(0, r.CreatedNs).Format("2006-01-02 15:04:05"),
			r.Status,
			r.KeyLength,
			truncate(keyword, 16),
			r.Length,
			store.FormatFingerprint(r.Fingerprint)[:16],
		)
	}

	st, err := s.Stats()
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "\n%d analyses (%d ok, %d failed), %d symbols\n",
		st.Total, st.Succeeded, st.Failed, st.Symbols)
	return exitOK
}

func (a *app) showRecord(r *store.Record) int {
	if a.format == report.FormatJSON {
		return a.writeJSON(toEntry(r))
	}

	fmt.Fprintf(a.stdout, "Analysis:    %d\n", r.ID)
	fmt.Fprintf(a.stdout, "When:        %s\n", time.Unix(0, r.CreatedNs).Format(time.RFC3339))
	fmt.Fprintf(a.stdout, "Source:      %s\n", r.Source)
	fmt.Fprintf(a.stdout, "Fingerprint: %s\n", store.FormatFingerprint(r.Fingerprint))
	fmt.Fprintf(a.stdout, "Status:      %s\n", r.Status)
	fmt.Fprintf(a.stdout, "Symbols:     %d\n", r.Length)
	if r.Status != store.StatusOK {
		fmt.Fprintf(a.stdout, "Error:       %s\n", r.Error)
		return exitOK
	}
	fmt.Fprintf(a.stdout, "Key length:  %d (average IoC %.4f)\n", r.KeyLength, r.AverageIoC)
	fmt.Fprintf(a.stdout, "Keyword:     %s\n", r.Keyword)
	fmt.Fprintf(a.stdout, "Plaintext:   %s\n", r.Plaintext)
	return exitOK
}

func (a *app) writeJSON(v any) int {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return a.fail(err)
	}
	return exitOK
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
