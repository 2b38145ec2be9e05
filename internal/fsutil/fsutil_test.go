package fsutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	data := []byte("attackatdawn")

	if err := WriteFile(path, data, PermFile); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file contents mismatch: got %q, want %q", got, data)
	}

	if err := WriteFile(path, []byte("updated"), PermFile); err != nil {
		t.Fatalf("WriteFile update failed: %v", err)
	}
	matches, _ := filepath.Glob(path + ".tmp.*")
	if len(matches) > 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestAtomicWriterAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	w, err := NewAtomicWriter(path, PermFile)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("partial"))
	w.Abort()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("target exists after Abort: %v", err)
	}
	matches, _ := filepath.Glob(path + ".tmp.*")
	if len(matches) > 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msg.txt")
	if err := os.WriteFile(path, []byte("LXFOPVEFRNHR"), 0600); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFile(path, 0)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "LXFOPVEFRNHR" {
		t.Errorf("ReadFile = %q", data)
	}
	if _, err := ReadFile(path, 12); err != nil {
		t.Errorf("limit equal to size should pass: %v", err)
	}
	if _, err := ReadFile(path, 4); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
	if _, err := ReadFile(dir, 0); err == nil {
		t.Error("expected error for directory")
	}
	if _, err := ReadFile(filepath.Join(dir, "missing"), 0); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTryLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.lock")

	l, err := TryLock(path)
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}

	if _, err := TryLock(path); !errors.Is(err, ErrLocked) {
		t.Errorf("second TryLock = %v, want ErrLocked", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release = %v", err)
	}

	l2, err := TryLock(path)
	if err != nil {
		t.Fatalf("TryLock after release failed: %v", err)
	}
	l2.Release()
}

func TestIsTerminalRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "plain")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
}
