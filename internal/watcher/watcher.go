// Package watcher monitors directories for ciphertext files and emits them
// once they stop changing.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vigcrack/internal/fsutil"
)

// Event is a stable file ready for analysis.
type Event struct {
	Path      string
	Data      []byte
	Timestamp time.Time
}

// Options configures a Watcher.
type Options struct {
	// Extensions limits events to files with these suffixes, compared
	// case-insensitively. Empty means every file.
	Extensions []string
	// Debounce is how long a file must be unchanged before it is emitted.
	Debounce time.Duration
	// MaxFileSize skips larger files, reporting fsutil.ErrFileTooLarge.
	// Zero means no limit.
	MaxFileSize int64
}

// Watcher monitors files and directories for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     []string
	opts      Options

	// guards opts.Extensions
	extMu sync.RWMutex

	// path -> last modification time
	state   map[string]time.Time
	stateMu sync.RWMutex

	events chan Event
	errors chan error

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error
}

// New creates a new file watcher.
func New(paths []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	opts.Extensions = normalizeExtensions(opts.Extensions)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		paths:     paths,
		opts:      opts,
		state:     make(map[string]time.Time),
		events:    make(chan Event, 100),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel of stable files.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching all configured paths. Files already present are
// emitted once they have been stable for the debounce interval.
func (w *Watcher) Start() error {
	for _, path := range w.paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if err := w.fsWatcher.Add(absPath); err != nil {
				return err
			}
			entries, err := os.ReadDir(absPath)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if !entry.IsDir() {
					w.trackFile(filepath.Join(absPath, entry.Name()))
				}
			}
		} else {
			// Single files are watched through their directory.
			if err := w.fsWatcher.Add(filepath.Dir(absPath)); err != nil {
				return err
			}
			w.trackFile(absPath)
		}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()

	return nil
}

// Stop shuts down the watcher and closes the event and error channels.
// Calls after the first return the first call's result.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		close(w.events)
		close(w.errors)
		w.stopErr = w.fsWatcher.Close()
	})
	return w.stopErr
}

func normalizeExtensions(in []string) []string {
	exts := make([]string, 0, len(in))
	for _, ext := range in {
		ext = strings.ToLower(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// SetExtensions replaces the extension filter. Files already pending
// stay pending.
func (w *Watcher) SetExtensions(exts []string) {
	exts = normalizeExtensions(exts)
	w.extMu.Lock()
	w.opts.Extensions = exts
	w.extMu.Unlock()
}

// Matches reports whether path passes the extension filter.
func (w *Watcher) Matches(path string) bool {
	w.extMu.RLock()
	defer w.extMu.RUnlock()
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range w.opts.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func (w *Watcher) trackFile(path string) {
	if !w.Matches(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	w.stateMu.Lock()
	w.state[path] = info.ModTime()
	w.stateMu.Unlock()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.Matches(event.Name) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}

			w.stateMu.Lock()
			w.state[event.Name] = time.Now()
			w.stateMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) reportError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func (w *Watcher) tick() time.Duration {
	t := w.opts.Debounce / 2
	if t > time.Second {
		t = time.Second
	}
	if t < 10*time.Millisecond {
		t = 10 * time.Millisecond
	}
	return t
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			w.checkStableFiles(now)
		}
	}
}

type stableFile struct {
	path    string
	lastMod time.Time
}

// checkStableFiles emits files that have not changed for the debounce
// interval. The lock is released while files are read.
func (w *Watcher) checkStableFiles(now time.Time) {
	threshold := now.Add(-w.opts.Debounce)

	var stable []stableFile
	w.stateMu.RLock()
	for path, lastMod := range w.state {
		if lastMod.Before(threshold) {
			stable = append(stable, stableFile{path: path, lastMod: lastMod})
		}
	}
	w.stateMu.RUnlock()

	if len(stable) == 0 {
		return
	}

	type readResult struct {
		stableFile
		data []byte
		err  error
	}
	results := make([]readResult, len(stable))
	for i, sf := range stable {
		data, err := fsutil.ReadFile(sf.path, w.opts.MaxFileSize)
		results[i] = readResult{stableFile: sf, data: data, err: err}
	}

	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	for _, r := range results {
		current, exists := w.state[r.path]
		if !exists || current != r.lastMod {
			// Removed or modified while reading.
			continue
		}
		if r.err != nil {
			delete(w.state, r.path)
			w.reportError(r.err)
			continue
		}

		select {
		case w.events <- Event{Path: r.path, Data: r.data, Timestamp: now}:
			delete(w.state, r.path)
		default:
			// Channel full, retry on the next tick.
		}
	}
}

// TrackedFiles returns the number of files waiting to become stable.
func (w *Watcher) TrackedFiles() int {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	return len(w.state)
}
