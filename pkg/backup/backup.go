// Package backup implements read-only directory snapshots of a store's
// generation files: a single zstd-compressed archive plus a blake2b
// digest for later integrity verification. This never touches the live
// on-disk format; it only reads the ".log" files already present.
package backup

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	"github.com/ignitekv/ignite/pkg/filesys"
	"github.com/ignitekv/ignite/pkg/generation"
)

// digestSuffix names the sidecar file carrying a snapshot's blake2b
// digest.
const digestSuffix = ".b2"

// Snapshot walks the generation files in dataDir in ascending order and
// writes their zstd-compressed concatenation to destPath, alongside a
// destPath+".b2" file holding a blake2b-256 digest of the archive. It
// does not interrupt service: it only opens generation files for
// reading.
func Snapshot(dataDir, destPath string) error {
	gens, err := generation.List(dataDir)
	if err != nil {
		return fmt.Errorf("backup: list generations: %w", err)
	}

	archive, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("backup: create archive: %w", err)
	}
	defer archive.Close()

	digest, err := blake2b.New256(nil)
	if err != nil {
		return fmt.Errorf("backup: init digest: %w", err)
	}

	encoder, err := zstd.NewWriter(io.MultiWriter(archive, digest))
	if err != nil {
		return fmt.Errorf("backup: init encoder: %w", err)
	}

	for _, gen := range gens {
		f, err := os.Open(generation.Path(dataDir, gen))
		if err != nil {
			encoder.Close()
			return fmt.Errorf("backup: open generation %d: %w", gen, err)
		}
		_, copyErr := io.Copy(encoder, f)
		f.Close()
		if copyErr != nil {
			encoder.Close()
			return fmt.Errorf("backup: copy generation %d: %w", gen, copyErr)
		}
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("backup: flush encoder: %w", err)
	}

	return os.WriteFile(destPath+digestSuffix, digest.Sum(nil), 0644)
}

// CopyRaw makes an uncompressed, directory-for-directory snapshot of
// dataDir at destDir, preserving every generation file byte-for-byte.
// It is faster than Snapshot and lets an operator resume serving
// directly from the copy, at the cost of no compression and no
// integrity digest; Snapshot is the archival form, CopyRaw the
// restore-ready form.
func CopyRaw(dataDir, destDir string) error {
	return filesys.CopyDir(dataDir, destDir)
}

// Verify recomputes destPath's blake2b digest and compares it against
// the sidecar recorded by Snapshot.
func Verify(destPath string) (bool, error) {
	want, err := os.ReadFile(destPath + digestSuffix)
	if err != nil {
		return false, fmt.Errorf("backup: read digest sidecar: %w", err)
	}

	archive, err := os.Open(destPath)
	if err != nil {
		return false, fmt.Errorf("backup: open archive: %w", err)
	}
	defer archive.Close()

	digest, err := blake2b.New256(nil)
	if err != nil {
		return false, fmt.Errorf("backup: init digest: %w", err)
	}
	if _, err := io.Copy(digest, archive); err != nil {
		return false, fmt.Errorf("backup: hash archive: %w", err)
	}

	return bytes.Equal(digest.Sum(nil), want), nil
}
