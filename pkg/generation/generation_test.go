package generation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListIgnoresNonMatchingNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.log", "2.log", "not-a-number.log", "10.log", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	gens, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []uint64{1, 2, 10}
	if len(gens) != len(want) {
		t.Fatalf("got %v, want %v", gens, want)
	}
	for i, g := range want {
		if gens[i] != g {
			t.Fatalf("got %v, want %v", gens, want)
		}
	}
}

func TestListEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	gens, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(gens) != 0 {
		t.Fatalf("expected no generations, got %v", gens)
	}
}

func TestNameAndPath(t *testing.T) {
	if Name(7) != "7.log" {
		t.Fatalf("Name(7) = %q, want 7.log", Name(7))
	}
	got := Path("/data", 7)
	want := filepath.Join("/data", "7.log")
	if got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
}
