// Package storage owns the raw file handles backing a single generation:
// opening the append-only writer and the independent positional reader
// that the engine's index entries point into.
package storage

import (
	"os"

	"github.com/ignitekv/ignite/internal/iobuf"
	"github.com/ignitekv/ignite/pkg/errors"
	"github.com/ignitekv/ignite/pkg/generation"
)

// OpenWriter opens (creating if necessary) the log file for gen in dir in
// append mode and wraps it in a positional writer. The writer MUST be
// opened in append mode so the OS write position tracks WriterWithPos's
// logical pos even under concurrent growth.
func OpenWriter(dir string, gen uint64) (*iobuf.WriterWithPos, error) {
	path := generation.Path(dir, gen)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, generation.Name(gen))
	}
	w, err := iobuf.NewWriterWithPos(f)
	if err != nil {
		f.Close()
		return nil, errors.ClassifyFileOpenError(err, path, generation.Name(gen))
	}
	return w, nil
}

// OpenReader opens the log file for gen in dir read-only and wraps it in
// a positional reader with independent seek state from the writer.
func OpenReader(dir string, gen uint64) (*iobuf.ReaderWithPos, error) {
	path := generation.Path(dir, gen)
	f, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, generation.Name(gen))
	}
	r, err := iobuf.NewReaderWithPos(f)
	if err != nil {
		f.Close()
		return nil, errors.ClassifyFileOpenError(err, path, generation.Name(gen))
	}
	return r, nil
}

// Remove deletes generation gen's log file from dir.
func Remove(dir string, gen uint64) error {
	path := generation.Path(dir, gen)
	if err := os.Remove(path); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to remove generation file").
			WithGeneration(gen).
			WithPath(path).
			WithFileName(generation.Name(gen))
	}
	return nil
}
