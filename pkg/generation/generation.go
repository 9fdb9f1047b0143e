// Package generation locates and names the numbered log files that make
// up a store's on-disk directory, adapted from the teacher's pkg/seginfo
// down to the plain "<u64>.log" naming this engine uses instead of
// segment rotation by size.
package generation

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Name returns the file name for generation gen.
func Name(gen uint64) string {
	return fmt.Sprintf("%d.log", gen)
}

// Path returns the full path to generation gen's log file within dir.
func Path(dir string, gen uint64) string {
	return filepath.Join(dir, Name(gen))
}

// List returns the generations present in dir, sorted ascending. File
// names that do not parse as "<u64>.log" are ignored rather than
// rejected, matching the boundary behavior of opening a directory that
// contains unrelated files.
func List(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("generation: read dir %s: %w", dir, err)
	}

	gens := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		gen, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		gens = append(gens, gen)
	}

	slices.Sort(gens)
	return gens, nil
}

// parseName extracts the generation number from a "<u64>.log" file name.
func parseName(name string) (uint64, bool) {
	const ext = ".log"
	if !strings.HasSuffix(name, ext) {
		return 0, false
	}
	numPart := strings.TrimSuffix(name, ext)
	if numPart == "" {
		return 0, false
	}
	gen, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, false
	}
	return gen, true
}
