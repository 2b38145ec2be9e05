// Package report renders analysis results for people and programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"vigcrack/internal/analysis"
	"vigcrack/internal/keylength"
	"vigcrack/internal/language"
)

// Format selects an output rendering.
type Format int

const (
	// FormatText is the terminal rendering.
	FormatText Format = iota
	// FormatJSON is a single JSON document.
	FormatJSON
	// FormatMarkdown is a Markdown document.
	FormatMarkdown
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "markdown"
	default:
		return "text"
	}
}

// ParseFormat parses "text", "json", "markdown" or "md".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return FormatText, fmt.Errorf("unknown report format: %s", s)
	}
}

// barWidth is the width of candidate IoC bars.
const barWidth = 20

// barMax is the IoC at which a bar is full.
const barMax = 0.1

// Write renders res to w.
func Write(w io.Writer, res *analysis.Result, model *language.Model, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatMarkdown:
		return writeMarkdown(w, res, model)
	default:
		return writeText(w, res, model)
	}
}

func writeText(w io.Writer, res *analysis.Result, model *language.Model) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Keysize Found! - m = %d\n", res.KeyLength)
	fmt.Fprintf(&b, "Keyword Found! - K = %s\n\n", res.Keyword)
	fmt.Fprintf(&b, "Plaintext: %s\n\n", res.Plaintext)

	writeCandidateTable(&b, res.Candidates, model)

	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Symbols:   %d\n", res.Length)
	fmt.Fprintf(&b, "Model:     %s\n", res.Model)
	fmt.Fprintf(&b, "Duration:  %s\n", res.Duration)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCandidateTable(b *strings.Builder, cands []keylength.Candidate, model *language.Model) {
	fmt.Fprintln(b, strings.Repeat("-", 60))
	if model != nil {
		fmt.Fprintf(b, "KEY LENGTH CANDIDATES (expected IoC %.3f +/- %.3f)\n",
			model.ExpectedIoC, model.Tolerance)
	} else {
		fmt.Fprintln(b, "KEY LENGTH CANDIDATES")
	}
	fmt.Fprintln(b, strings.Repeat("-", 60))
	for _, c := range cands {
		mark := " "
		if c.Accepted {
			mark = "*"
		}
		fmt.Fprintf(b, "  m = %3d  %.4f %s %s\n",
			c.KeyLength, c.AverageIoC, mark, FormatMetricBar(c.AverageIoC, 0, barMax, barWidth))
	}
}

// WriteCandidates renders a key length candidate trace on its own.
func WriteCandidates(w io.Writer, cands []keylength.Candidate, model *language.Model, f Format) error {
	switch f {
	case FormatJSON:
		if cands == nil {
			cands = []keylength.Candidate{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cands)
	case FormatMarkdown:
		var b strings.Builder
		writeMarkdownCandidates(&b, cands)
		_, err := io.WriteString(w, b.String())
		return err
	default:
		var b strings.Builder
		writeCandidateTable(&b, cands, model)
		_, err := io.WriteString(w, b.String())
		return err
	}
}

func writeJSON(w io.Writer, res *analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func writeMarkdown(w io.Writer, res *analysis.Result, model *language.Model) error {
	var b strings.Builder
	fmt.Fprintln(&b, "# Vigenère analysis")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "- **Key length:** %d\n", res.KeyLength)
	fmt.Fprintf(&b, "- **Keyword:** `%s`\n", res.Keyword)
	fmt.Fprintf(&b, "- **Average IoC:** %.4f\n", res.AverageIoC)
	if model != nil {
		fmt.Fprintf(&b, "- **Model:** %s (expected %.3f, tolerance %.3f)\n",
			res.Model, model.ExpectedIoC, model.Tolerance)
	}
	fmt.Fprintf(&b, "- **Symbols:** %d\n", res.Length)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "## Plaintext")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "```")
	fmt.Fprintln(&b, res.Plaintext)
	fmt.Fprintln(&b, "```")
	fmt.Fprintln(&b)
	writeMarkdownCandidates(&b, res.Candidates)

	if len(res.Shifts) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "## Key positions")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "| position | letter | shift | margin |")
		fmt.Fprintln(&b, "|---:|:---:|---:|---:|")
		for p, s := range res.Shifts {
			var margin float64
			if p < len(res.Margins) {
				margin = res.Margins[p]
			}
			fmt.Fprintf(&b, "| %d | %c | %d | %.4f |\n", p, res.Keyword[p], s, margin)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownCandidates(b *strings.Builder, cands []keylength.Candidate) {
	fmt.Fprintln(b, "## Key length candidates")
	fmt.Fprintln(b)
	fmt.Fprintln(b, "| m | average IoC | cosets | accepted |")
	fmt.Fprintln(b, "|---:|---:|---:|:---:|")
	for _, c := range cands {
		acc := ""
		if c.Accepted {
			acc = "yes"
		}
		fmt.Fprintf(b, "| %d | %.4f | %d | %s |\n", c.KeyLength, c.AverageIoC, c.Cosets, acc)
	}
}

// FormatMetricBar produces an ASCII bar for value within [min, max].
func FormatMetricBar(value, min, max float64, width int) string {
	if width <= 0 {
		return ""
	}
	if max <= min {
		return strings.Repeat("-", width)
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	filled := int(normalized * float64(width))
	if filled > width {
		filled = width
	}

	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
