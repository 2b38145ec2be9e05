// Package analysis runs the full ciphertext-only attack: key length
// estimation, key recovery and decryption.
package analysis

import (
	"context"
	"fmt"
	"time"

	"vigcrack/internal/keylength"
	"vigcrack/internal/keyrecovery"
	"vigcrack/internal/language"
	"vigcrack/internal/logging"
	"vigcrack/internal/metrics"
	"vigcrack/internal/text"
	"vigcrack/internal/vigenere"
)

// DefaultParallelThreshold is the ciphertext length from which per-coset
// work runs concurrently.
const DefaultParallelThreshold = 4096

// Result is the outcome of a successful analysis.
type Result struct {
	Length     int                   `json:"length"`
	KeyLength  int                   `json:"key_length"`
	Keyword    string                `json:"keyword"`
	Plaintext  string                `json:"plaintext"`
	AverageIoC float64               `json:"average_ioc"`
	Candidates []keylength.Candidate `json:"candidates"`
	Shifts     []int                 `json:"shifts"`
	// Margins holds, per key position, the score gap between the chosen
	// shift and the runner-up.
	Margins  []float64     `json:"margins"`
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration_ns"`
}

// Analyzer drives the pipeline with a fixed language model.
type Analyzer struct {
	model             *language.Model
	logger            *logging.Logger
	metrics           *metrics.CrackerMetrics
	minKeyLength      int
	maxKeyLength      int
	parallelThreshold int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithModel sets the language model. The model is cloned.
func WithModel(m *language.Model) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.model = m.Clone()
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.CrackerMetrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// WithKeyLengthBounds sets the key length search range. Zero keeps the
// default for that end.
func WithKeyLengthBounds(lo, hi int) Option {
	return func(a *Analyzer) {
		if lo > 0 {
			a.minKeyLength = lo
		}
		if hi > 0 {
			a.maxKeyLength = hi
		}
	}
}

// WithParallelThreshold sets the ciphertext length from which cosets are
// processed concurrently. Zero disables concurrency.
func WithParallelThreshold(n int) Option {
	return func(a *Analyzer) {
		a.parallelThreshold = n
	}
}

// New creates an Analyzer. Without options it uses the English model, the
// default bounds, a discarding logger and no metrics.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		model:             language.English(),
		logger:            logging.Discard(),
		minKeyLength:      keylength.DefaultMinKeyLength,
		maxKeyLength:      keylength.DefaultMaxKeyLength,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithSubsystem("analysis")
	return a
}

// Model returns the analyzer's language model.
func (a *Analyzer) Model() *language.Model {
	return a.model
}

func (a *Analyzer) estimator(ctx context.Context) *keylength.Estimator {
	e := keylength.NewEstimator(a.model)
	e.MinKeyLength = a.minKeyLength
	e.MaxKeyLength = a.maxKeyLength
	e.ParallelThreshold = a.parallelThreshold

	log := a.logger.WithContext(ctx)
	e.Observe = func(c keylength.Candidate) {
		if a.metrics != nil {
			a.metrics.CandidatesEvaluated.Inc()
		}
		log.Debug("key length candidate",
			"m", c.KeyLength,
			"average_ioc", c.AverageIoC,
			"accepted", c.Accepted,
		)
	}
	return e
}

// EstimateKeyLength runs only the key length search.
func (a *Analyzer) EstimateKeyLength(ctx context.Context, ct text.Ciphertext) (*keylength.Estimate, error) {
	est, err := a.estimator(ctx).Estimate(ctx, ct)
	if err != nil {
		return nil, fmt.Errorf("estimate key length: %w", err)
	}
	return est, nil
}

// Profile returns the average IoC of every searchable key length.
func (a *Analyzer) Profile(ctx context.Context, ct text.Ciphertext) ([]keylength.Candidate, error) {
	e := keylength.NewEstimator(a.model)
	e.MinKeyLength = a.minKeyLength
	e.MaxKeyLength = a.maxKeyLength
	e.ParallelThreshold = a.parallelThreshold
	return e.Profile(ctx, ct)
}

// Analyze recovers the key length, keyword and plaintext of ct.
func (a *Analyzer) Analyze(ctx context.Context, ct text.Ciphertext) (*Result, error) {
	start := time.Now()
	log := a.logger.WithContext(ctx)

	if a.metrics != nil {
		a.metrics.AnalysesTotal.Inc()
		a.metrics.SymbolsAnalyzed.Add(uint64(len(ct)))
		a.metrics.CiphertextSize.Observe(float64(len(ct)))
	}

	res, err := a.analyze(ctx, ct)
	elapsed := time.Since(start)
	if a.metrics != nil {
		a.metrics.AnalysisDuration.ObserveDuration(elapsed)
	}
	if err != nil {
		if a.metrics != nil {
			a.metrics.FailuresTotal.Inc()
		}
		log.Warn("analysis failed", "length", len(ct), "error", err)
		return nil, err
	}

	res.Duration = elapsed
	if a.metrics != nil {
		a.metrics.LastKeyLength.Set(float64(res.KeyLength))
		a.metrics.LastAverageIoC.Set(res.AverageIoC)
	}
	log.Info("analysis complete",
		"length", res.Length,
		"key_length", res.KeyLength,
		"average_ioc", res.AverageIoC,
		"duration", elapsed,
	)
	log.Debug("keyword recovered", "keyword", res.Keyword)
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, ct text.Ciphertext) (*Result, error) {
	// Ciphertext may be built without Parse.
	if err := text.Validate(ct); err != nil {
		return nil, fmt.Errorf("validate ciphertext: %w", err)
	}
	est, err := a.EstimateKeyLength(ctx, ct)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := keyrecovery.NewRecoverer(a.model)
	r.ParallelThreshold = a.parallelThreshold
	key, err := r.Recover(ct, est.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("recover key: %w", err)
	}

	c, err := vigenere.NewCipher(key.Keyword)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	pt := make([]byte, len(ct))
	c.Decrypt(pt, ct)

	return &Result{
		Length:     len(ct),
		KeyLength:  est.KeyLength,
		Keyword:    key.Keyword,
		Plaintext:  string(pt),
		AverageIoC: est.AverageIoC,
		Candidates: est.Candidates,
		Shifts:     key.Shifts,
		Margins:    key.Margin(),
		Model:      a.model.Name,
	}, nil
}

// Crack parses raw ciphertext and analyzes it.
func (a *Analyzer) Crack(ctx context.Context, raw string) (*Result, error) {
	ct, err := text.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse ciphertext: %w", err)
	}
	return a.Analyze(ctx, ct)
}
