package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vigcrack/internal/fsutil"
)

func testOptions() Options {
	return Options{
		Extensions: []string{"txt", ".CT"},
		Debounce:   100 * time.Millisecond,
	}
}

func TestMatches(t *testing.T) {
	w, err := New(nil, testOptions())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.fsWatcher.Close()

	tests := []struct {
		path string
		want bool
	}{
		{"a.txt", true},
		{"A.TXT", true},
		{"b.ct", true},
		{"c.md", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := w.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	all, err := New(nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer all.fsWatcher.Close()
	if !all.Matches("anything.bin") {
		t.Error("empty extension list should match every file")
	}
}

func TestNewDoesNotModifyOptions(t *testing.T) {
	exts := []string{"TXT"}
	w, err := New(nil, Options{Extensions: exts})
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsWatcher.Close()
	if exts[0] != "TXT" {
		t.Errorf("caller slice modified: %q", exts[0])
	}
}

func TestWatcherCreation(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, testOptions())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.fsWatcher.Close()

	if w.TrackedFiles() != 0 {
		t.Errorf("expected 0 tracked files before start, got %d", w.TrackedFiles())
	}
}

func TestSetExtensions(t *testing.T) {
	w, err := New(nil, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsWatcher.Close()

	w.SetExtensions([]string{"DAT"})
	if w.Matches("a.txt") {
		t.Error("a.txt should no longer match")
	}
	if !w.Matches("b.dat") {
		t.Error("b.dat should match after SetExtensions")
	}

	w.SetExtensions(nil)
	if !w.Matches("c.md") {
		t.Error("empty extension list should match every file")
	}
}

func TestWatcherStopTwice(t *testing.T) {
	w, err := New([]string{t.TempDir()}, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
}

func TestWatcherStartMissingPath(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing")}, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsWatcher.Close()
	if err := w.Start(); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestWatcherExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "initial.txt"), []byte("initial"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0600); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{dir}, Options{Extensions: []string{".txt"}, Debounce: time.Hour})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	if w.TrackedFiles() != 1 {
		t.Errorf("expected 1 tracked file, got %d", w.TrackedFiles())
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("failed to stop watcher: %v", err)
	}
}

func TestWatcherEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, testOptions())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "skip.md"), []byte("nope"), 0600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "msg.ct")
	if err := os.WriteFile(path, []byte("LXFOPVEFRNHR"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	select {
	case ev := <-w.Events():
		if filepath.Base(ev.Path) != "msg.ct" {
			t.Errorf("expected msg.ct, got %s", ev.Path)
		}
		if string(ev.Data) != "LXFOPVEFRNHR" {
			t.Errorf("unexpected data %q", ev.Data)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestWatcherDebounce(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, Options{Debounce: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "debounce.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("v"+string(rune('0'+i))), 0600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	count := 0
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			count++
			if count > 1 {
				t.Fatal("expected only one event due to debouncing")
			}
			if string(ev.Data) != "v4" {
				t.Errorf("expected last write, got %q", ev.Data)
			}
		case <-timeout:
			if count != 1 {
				t.Errorf("expected 1 event, got %d", count)
			}
			return
		}
	}
}

func TestWatcherTooLarge(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, Options{Debounce: 50 * time.Millisecond, MaxFileSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "big.txt"), []byte("ABCDEFGHIJKLMNOP"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-w.Errors():
		if !errors.Is(err, fsutil.ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for error")
	}
}
