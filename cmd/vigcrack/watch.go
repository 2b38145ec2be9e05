package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"vigcrack/internal/config"
	"vigcrack/internal/fsutil"
	"vigcrack/internal/logging"
	"vigcrack/internal/report"
	"vigcrack/internal/watcher"
)

func cmdWatch(a *app, args []string) int {
	fs := newFlagSet(a, "watch", "watch [dir...]")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = a.cfg.Watch.Paths
	}
	if len(paths) == 0 {
		fmt.Fprintln(a.stderr, "watch: no paths given and watch.paths is empty")
		fs.Usage()
		return exitUsage
	}

	// One watcher per history database.
	lock, err := fsutil.TryLock(filepath.Join(filepath.Dir(a.cfg.Storage.Path), "watch.lock"))
	if err != nil {
		if errors.Is(err, fsutil.ErrLocked) {
			return a.fail(fmt.Errorf("another watcher is running: %w", err))
		}
		return a.fail(err)
	}
	defer lock.Release()

	w, err := watcher.New(paths, watcher.Options{
		Extensions:  a.cfg.Watch.Extensions,
		Debounce:    time.Duration(a.cfg.Watch.DebounceMs) * time.Millisecond,
		MaxFileSize: a.cfg.Watch.MaxFileSize,
	})
	if err != nil {
		return a.fail(fmt.Errorf("create watcher: %w", err))
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return a.fail(fmt.Errorf("start watcher: %w", err))
	}
	defer w.Stop()

	log := a.logger.WithSubsystem("watch")
	log.Info("watching",
		"paths", paths,
		"extensions", a.cfg.Watch.Extensions,
		"pending", w.TrackedFiles(),
	)

	// Reload callbacks run on the loader's goroutine; the swap happens here.
	changed := make(chan struct{}, 1)
	loader := config.NewLoader(a.configPath)
	loader.OnChange(func(*config.Config) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err := loader.Watch(); err != nil {
		log.Info("config reload disabled", "path", a.configPath, "error", err)
	}
	defer loader.Close()

	for {
		select {
		case <-a.ctx.Done():
			log.Info("stopping watcher")
			return exitOK

		case ev, ok := <-w.Events():
			if !ok {
				return exitOK
			}
			a.crackFile(ev)

		case err, ok := <-w.Errors():
			if !ok {
				return exitOK
			}
			log.Warn("watch error", "error", err)

		case <-changed:
			if cfg := loader.Config(); cfg != nil {
				a.reload(cfg.Clone(), w, log)
			}

		case err := <-loader.Errors():
			log.Warn("config reload failed", "path", a.configPath, "error", err)
		}
	}
}

// reload applies a changed config file to the running watcher. Command
// line options still win. Storage, logging, watch paths and debounce
// keep their startup values.
func (a *app) reload(cfg *config.Config, w *watcher.Watcher, log *logging.Logger) {
	a.flags.apply(cfg)
	cfg.Storage = a.cfg.Storage
	cfg.Logging = a.cfg.Logging
	cfg.Watch.Paths = a.cfg.Watch.Paths
	cfg.Watch.DebounceMs = a.cfg.Watch.DebounceMs
	cfg.Watch.MaxFileSize = a.cfg.Watch.MaxFileSize
	if err := cfg.Validate(); err != nil {
		log.Warn("ignoring reloaded config", "error", err)
		return
	}
	if err := a.configure(cfg); err != nil {
		log.Warn("ignoring reloaded config", "error", err)
		return
	}
	w.SetExtensions(cfg.Watch.Extensions)
	log.Info("configuration reloaded",
		"path", a.configPath,
		"model", a.model.Name,
		"max_key_length", cfg.Analysis.MaxKeyLength,
		"extensions", cfg.Watch.Extensions,
	)
}

// crackFile analyzes one watched file and prints its report.
func (a *app) crackFile(ev watcher.Event) {
	fmt.Fprintf(a.stdout, "==> %s <==\n", ev.Path)
	res, err := a.crack(string(ev.Data), ev.Path)
	if err != nil {
		fmt.Fprintf(a.stdout, "Error: %v\n\n", err)
		return
	}
	if err := report.Write(a.stdout, res, a.model, a.format); err != nil {
		a.logger.Warn("failed to write report", "path", ev.Path, "error", err)
	}
	fmt.Fprintln(a.stdout)
}
