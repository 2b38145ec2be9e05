package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"vigcrack/internal/analysis"
	"vigcrack/internal/config"
	"vigcrack/internal/fsutil"
	"vigcrack/internal/language"
	"vigcrack/internal/logging"
	"vigcrack/internal/metrics"
	"vigcrack/internal/report"
	"vigcrack/internal/store"
)

var (
	errStorageDisabled = errors.New("storage is disabled")
	errNoInput         = errors.New("no ciphertext on stdin")
)

// app holds what every command needs.
type app struct {
	ctx        context.Context
	flags      globalFlags
	configPath string
	cfg        *config.Config
	model      *language.Model
	format     report.Format
	logger     *logging.Logger
	metrics    *metrics.CrackerMetrics
	analyzer   *analysis.Analyzer

	dumpMetrics bool
	store       *store.Store

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(ctx context.Context, g globalFlags, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	path := g.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	g.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, stdout, stderr)
	if err != nil {
		return nil, err
	}
	a := &app{
		ctx:         ctx,
		flags:       g,
		configPath:  path,
		logger:      logger,
		metrics:     metrics.NewCrackerMetrics(nil),
		dumpMetrics: g.dumpMetrics,
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
	}
	if err := a.configure(cfg); err != nil {
		logger.Close()
		return nil, err
	}
	logger.Debug("configuration loaded",
		"path", path,
		"model", a.model.Name,
		"max_key_length", cfg.Analysis.MaxKeyLength,
		"storage", cfg.Storage.Enabled,
	)
	return a, nil
}

// apply overlays the command-line options on cfg.
func (g globalFlags) apply(cfg *config.Config) {
	if g.format != "" {
		cfg.Output.Format = g.format
	}
	if g.model != "" {
		cfg.Analysis.ModelPath = g.model
	}
	if g.maxKeyLength > 0 {
		cfg.Analysis.MaxKeyLength = g.maxKeyLength
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.noStore {
		cfg.Storage.Enabled = false
	}
}

// configure builds the model, output format and analyzer for a validated
// cfg. The app is left unchanged on error.
func (a *app) configure(cfg *config.Config) error {
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	model, err := cfg.Model()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.format = format
	a.model = model
	a.analyzer = analysis.New(
		analysis.WithModel(model),
		analysis.WithLogger(a.logger),
		analysis.WithMetrics(a.metrics),
		analysis.WithKeyLengthBounds(cfg.Analysis.MinKeyLength, cfg.Analysis.MaxKeyLength),
		analysis.WithParallelThreshold(cfg.Analysis.ParallelThreshold),
	)
	return nil
}

func newLogger(cfg *config.Config, stdout, stderr io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	lc := &logging.Config{
		Level:     level,
		Format:    format,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		Component: "vigcrack",
	}
	switch cfg.Logging.Output {
	case "", "stderr":
		lc.Writer = stderr
	case "stdout":
		lc.Writer = stdout
	}
	return logging.New(lc)
}

func (a *app) close() {
	if a.dumpMetrics {
		a.metrics.Registry().WritePrometheus(a.stderr)
	}
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Close()
}

// fail reports err and returns the failure exit code.
func (a *app) fail(err error) int {
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return exitFailure
}

// readInput returns the raw input from the named file, or one line of
// stdin when no file is given. On a terminal the user is prompted first.
func (a *app) readInput(args []string) (raw, source string, err error) {
	if len(args) > 0 {
		data, err := fsutil.ReadFile(args[0], a.cfg.Watch.MaxFileSize)
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}

	if f, ok := a.stdin.(*os.File); ok && fsutil.IsTerminal(f) {
		fmt.Fprint(a.stdout, "Enter Ciphertext: ")
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			return "", "", errNoInput
		}
	}
	return line, "stdin", nil
}

// openStore opens the history database on first use.
func (a *app) openStore() (*store.Store, error) {
	if !a.cfg.Storage.Enabled {
		return nil, errStorageDisabled
	}
	if a.store != nil {
		return a.store, nil
	}
	busy := time.Duration(a.cfg.Storage.BusyTimeoutMs) * time.Millisecond
	s, err := store.OpenWithTimeout(a.cfg.Storage.Path, busy)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.store = s
	return s, nil
}

// crack analyzes raw under a fresh run ID and records the outcome in the
// history.
func (a *app) crack(raw, source string) (*analysis.Result, error) {
	ctx := logging.ContextWithRunID(a.ctx, a.logger.NewRunID())
	log := a.logger.WithContext(ctx)

	fp := store.Fingerprint([]byte(strings.TrimSpace(raw)))
	a.checkSeen(log, fp)

	res, err := a.analyzer.Crack(ctx, raw)
	a.record(log, newRecord(fp, source, raw, res, err, a.model.Name))
	return res, err
}

func (a *app) checkSeen(log *logging.Logger, fp [32]byte) {
	if !a.cfg.Storage.Enabled {
		return
	}
	s, err := a.openStore()
	if err != nil {
		return
	}
	prev, err := s.Lookup(fp)
	if err != nil {
		return
	}
	log.Info("ciphertext analyzed before",
		"id", prev.ID,
		"at", time.Unix(0, prev.CreatedNs).Format(time.RFC3339),
	)
}

func (a *app) record(log *logging.Logger, r *store.Record) {
	if !a.cfg.Storage.Enabled {
		return
	}
	s, err := a.openStore()
	if err != nil {
		log.Warn("history unavailable", "error", err)
		return
	}
	id, err := s.Insert(r)
	if err != nil {
		log.Warn("failed to record analysis", "error", err)
		return
	}
	log.Debug("analysis recorded", "id", id, "status", string(r.Status))
}

func newRecord(fp [32]byte, source, raw string, res *analysis.Result, err error, model string) *store.Record {
	r := &store.Record{
		Fingerprint: fp,
		Source:      source,
		Length:      len(strings.TrimSpace(raw)),
		Model:       model,
	}
	if err != nil {
		r.Status = store.StatusFailed
		r.Error = err.Error()
		return r
	}
	r.Status = store.StatusOK
	r.Length = res.Length
	r.KeyLength = res.KeyLength
	r.Keyword = res.Keyword
	r.AverageIoC = res.AverageIoC
	r.Plaintext = res.Plaintext
	r.DurationNs = res.Duration.Nanoseconds()
	return r
}
