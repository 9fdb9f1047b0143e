package storage

import (
	"os"
	"testing"

	"github.com/ignitekv/ignite/pkg/generation"
)

func TestOpenWriterCreatesFileAndAppends(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir, 1)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	w2, err := OpenWriter(dir, 1)
	if err != nil {
		t.Fatalf("reopen OpenWriter: %v", err)
	}
	if w2.Pos() != int64(len("first\n")) {
		t.Fatalf("Pos() after reopen = %d, want %d", w2.Pos(), len("first\n"))
	}
	if _, err := w2.Write([]byte("second\n")); err != nil {
		t.Fatalf("Write after reopen: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(generation.Path(dir, 1))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "first\nsecond\n" {
		t.Fatalf("file contents = %q, want %q", got, "first\nsecond\n")
	}
}

func TestOpenReaderReadsWhatWriterWrote(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir, 2)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	if _, err := w.Write([]byte("line one\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(dir, 2)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	line, err := r.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if string(line) != "line one\n" {
		t.Fatalf("ReadLine = %q, want %q", line, "line one\n")
	}
}

func TestOpenReaderMissingGenerationFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := OpenReader(dir, 99); err == nil {
		t.Fatal("expected error opening a reader for a nonexistent generation")
	}
}

func TestRemoveDeletesGenerationFile(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir, 3)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := Remove(dir, 3); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(generation.Path(dir, 3)); !os.IsNotExist(err) {
		t.Fatalf("expected generation file to be gone, stat err = %v", err)
	}
}

func TestRemoveMissingGenerationFails(t *testing.T) {
	dir := t.TempDir()
	if err := Remove(dir, 77); err == nil {
		t.Fatal("expected error removing a nonexistent generation")
	}
}
