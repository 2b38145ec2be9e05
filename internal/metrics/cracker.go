package metrics

// CrackerMetrics holds the metrics recorded by the analysis pipeline.
type CrackerMetrics struct {
	registry *Registry

	// Counters
	AnalysesTotal       *Counter
	FailuresTotal       *Counter
	CandidatesEvaluated *Counter
	SymbolsAnalyzed     *Counter

	// Gauges
	LastKeyLength  *Gauge
	LastAverageIoC *Gauge

	// Histograms
	AnalysisDuration *Histogram
	CiphertextSize   *Histogram
}

// NewCrackerMetrics creates and registers the pipeline metrics. A nil
// registry gets a fresh one in the "vigcrack" namespace.
func NewCrackerMetrics(registry *Registry) *CrackerMetrics {
	if registry == nil {
		registry = NewRegistry("vigcrack", "")
	}

	return &CrackerMetrics{
		registry: registry,

		AnalysesTotal: registry.RegisterCounter(
			"analyses_total",
			"Total number of ciphertexts analyzed",
			nil,
		),
		FailuresTotal: registry.RegisterCounter(
			"failures_total",
			"Total number of analyses that failed",
			nil,
		),
		CandidatesEvaluated: registry.RegisterCounter(
			"keylength_candidates_total",
			"Total number of key length candidates evaluated",
			nil,
		),
		SymbolsAnalyzed: registry.RegisterCounter(
			"symbols_total",
			"Total number of ciphertext symbols analyzed",
			nil,
		),

		LastKeyLength: registry.RegisterGauge(
			"last_key_length",
			"Key length found by the most recent successful analysis",
			nil,
		),
		LastAverageIoC: registry.RegisterGauge(
			"last_average_ioc",
			"Average coset IoC at the accepted key length of the most recent analysis",
			nil,
		),

		AnalysisDuration: registry.RegisterHistogram(
			"analysis_duration_seconds",
			"Time spent on one analysis",
			nil,
			DurationBuckets,
		),
		CiphertextSize: registry.RegisterHistogram(
			"ciphertext_symbols",
			"Length of analyzed ciphertexts",
			nil,
			SizeBuckets,
		),
	}
}

// Registry returns the underlying registry.
func (m *CrackerMetrics) Registry() *Registry {
	return m.registry
}
