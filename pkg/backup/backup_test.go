package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ignitekv/ignite/pkg/generation"
)

func writeGeneration(t *testing.T, dir string, gen uint64, content string) {
	t.Helper()
	if err := os.WriteFile(generation.Path(dir, gen), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestSnapshotAndVerify(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneration(t, dataDir, 1, `{"Set":{"key":"a","value":"1"}}`+"\n")
	writeGeneration(t, dataDir, 2, `{"Set":{"key":"b","value":"2"}}`+"\n")

	dest := filepath.Join(t.TempDir(), "snapshot.zst")
	if err := Snapshot(dataDir, dest); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected archive file to exist: %v", err)
	}
	if _, err := os.Stat(dest + digestSuffix); err != nil {
		t.Fatalf("expected digest sidecar to exist: %v", err)
	}

	ok, err := Verify(dest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify reported a mismatch for an untouched archive")
	}
}

func TestCopyRawPreservesGenerationFiles(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneration(t, dataDir, 1, `{"Set":{"key":"a","value":"1"}}`+"\n")
	writeGeneration(t, dataDir, 2, `{"Set":{"key":"b","value":"2"}}`+"\n")

	destDir := filepath.Join(t.TempDir(), "copy")
	if err := CopyRaw(dataDir, destDir); err != nil {
		t.Fatalf("CopyRaw: %v", err)
	}

	gens, err := generation.List(destDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(gens) != 2 {
		t.Fatalf("expected 2 generations in the copy, got %v", gens)
	}

	want, err := os.ReadFile(generation.Path(dataDir, 1))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got, err := os.ReadFile(generation.Path(destDir, 1))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("copied generation 1 content = %q, want %q", got, want)
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	dataDir := t.TempDir()
	writeGeneration(t, dataDir, 1, `{"Set":{"key":"a","value":"1"}}`+"\n")

	dest := filepath.Join(t.TempDir(), "snapshot.zst")
	if err := Snapshot(dataDir, dest); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data = append(data, 0xff)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ok, err := Verify(dest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected Verify to detect a corrupted archive")
	}
}
