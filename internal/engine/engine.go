// Package engine implements the log-structured storage engine: an
// append-only on-disk command log, an in-memory index from key to log
// offset, a generational file layout, and an online compaction procedure
// that reclaims space without interrupting service.
//
// The engine is single-threaded and cooperative: it holds exclusive
// access to its writer, reader map, and index, and performs no internal
// locking. Callers (the server) are responsible for serializing calls.
package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ignitekv/ignite/internal/codec"
	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/iobuf"
	"github.com/ignitekv/ignite/internal/storage"
	pkgerrors "github.com/ignitekv/ignite/pkg/errors"
	"github.com/ignitekv/ignite/pkg/eventbus"
	"github.com/ignitekv/ignite/pkg/generation"
	"github.com/ignitekv/ignite/pkg/metrics"
	"github.com/ignitekv/ignite/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on a
// closed engine.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// ErrKeyNotFound is returned by Remove when the key has no entry in the
// index.
var ErrKeyNotFound = errors.New("key not found")

// Engine is the native log-structured key-value store.
type Engine struct {
	dir                 string
	compactionThreshold uint64

	index   *index.Index
	readers map[uint64]*iobuf.ReaderWithPos
	writer  *iobuf.WriterWithPos

	activeGen   uint64
	uncompacted uint64

	setCount    atomic.Uint64
	getCount    atomic.Uint64
	removeCount atomic.Uint64

	log     *zap.SugaredLogger
	metrics *metrics.Recorder
	events  *eventbus.Publisher

	closed atomic.Bool
}

// Stats is a point-in-time snapshot of engine health, consumed by the
// admin stats feed.
type Stats struct {
	SetCount         uint64
	GetCount         uint64
	RemoveCount      uint64
	UncompactedBytes uint64
	ActiveGeneration uint64
}

// Stats returns a snapshot of the engine's operation counters and
// compaction state.
func (e *Engine) Stats() Stats {
	return Stats{
		SetCount:         e.setCount.Load(),
		GetCount:         e.getCount.Load(),
		RemoveCount:      e.removeCount.Load(),
		UncompactedBytes: e.uncompacted,
		ActiveGeneration: e.activeGen,
	}
}

// Config holds the parameters needed to open an Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
	Metrics *metrics.Recorder
	Events  *eventbus.Publisher
}

// Open opens (or creates) the engine's store at config.Options.DataDir,
// replaying every existing generation into the index before returning.
func Open(ctx context.Context, config *Config) (*Engine, error) {
	dir := config.Options.DataDir
	info, statErr := os.Stat(dir)
	if statErr != nil || !info.IsDir() {
		return nil, pkgerrors.NewValidationError(statErr, pkgerrors.ErrorCodeInvalidInput, "store path must be an existing directory").
			WithField("dataDir").
			WithProvided(dir)
	}

	e := &Engine{
		dir:                 dir,
		compactionThreshold: config.Options.CompactionThreshold,
		index:               index.New(),
		readers:             make(map[uint64]*iobuf.ReaderWithPos),
		log:                 config.Logger,
		metrics:             config.Metrics,
		events:              config.Events,
	}

	gens, err := generation.List(dir)
	if err != nil {
		return nil, err
	}

	for _, gen := range gens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reader, err := storage.OpenReader(dir, gen)
		if err != nil {
			return nil, err
		}
		n, err := e.replay(gen, reader)
		if err != nil {
			reader.Close()
			return nil, err
		}
		e.uncompacted += n
		e.readers[gen] = reader
	}

	activeGen := uint64(1)
	if len(gens) > 0 {
		activeGen = gens[len(gens)-1] + 1
	}
	if err := e.openActiveGeneration(activeGen); err != nil {
		return nil, err
	}

	e.metrics.SetUncompactedBytes(e.uncompacted)
	if e.log != nil {
		e.log.Infow("engine opened", "dataDir", dir, "activeGeneration", e.activeGen, "uncompacted", e.uncompacted)
	}
	e.events.Publish("opened", map[string]any{"dataDir": dir, "activeGeneration": e.activeGen})

	return e, nil
}

// openActiveGeneration creates (or reopens) gen as the active writer and
// registers its reader.
func (e *Engine) openActiveGeneration(gen uint64) error {
	writer, err := storage.OpenWriter(e.dir, gen)
	if err != nil {
		return err
	}
	if _, ok := e.readers[gen]; !ok {
		reader, err := storage.OpenReader(e.dir, gen)
		if err != nil {
			writer.Close()
			return err
		}
		e.readers[gen] = reader
	}
	e.writer = writer
	e.activeGen = gen
	return nil
}

// replay scans an existing generation's log file from the start,
// rebuilding index entries and accumulating the uncompacted byte count
// superseded records within this generation contribute.
func (e *Engine) replay(gen uint64, reader *iobuf.ReaderWithPos) (uint64, error) {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	var uncompacted uint64
	stream := codec.NewStream(reader, 0)
	for {
		rec, start, endExclusive, err := stream.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeSegmentCorrupted, "failed to replay generation").
				WithGeneration(gen)
		}

		length := endExclusive - start + 1 // +1 for the framing newline
		switch {
		case rec.Set != nil:
			body, encErr := codec.Encode(rec)
			if encErr != nil {
				return 0, encErr
			}
			old, had := e.index.Set(rec.Set.Key, index.Entry{
				Generation: gen,
				Offset:     start,
				Length:     length,
				Checksum:   index.Checksum(body[:len(body)-1]),
			})
			if had {
				uncompacted += uint64(old.Length)
			}
		case rec.Remove != nil:
			if old, had := e.index.Remove(rec.Remove.Key); had {
				uncompacted += uint64(old.Length)
			}
			// The tombstone itself is garbage once replay completes.
			uncompacted += uint64(length)
		default:
			return 0, pkgerrors.NewStorageError(nil, pkgerrors.ErrorCodeInvalidCommand, "unknown command variant during replay").
				WithGeneration(gen).
				WithOffset(start)
		}
	}

	return uncompacted, nil
}

// Set stores value under key, superseding any prior value.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	body, err := codec.Encode(codec.NewSet(key, value))
	if err != nil {
		return err
	}

	start := e.writer.Pos()
	if _, err := e.writer.Write(body); err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to append set record").
			WithGeneration(e.activeGen).
			WithOffset(start)
	}
	if err := e.writer.Flush(); err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to flush set record").
			WithGeneration(e.activeGen).
			WithOffset(start)
	}
	end := e.writer.Pos()

	entry := index.Entry{
		Generation: e.activeGen,
		Offset:     start,
		Length:     end - start,
		Checksum:   index.Checksum(body[:len(body)-1]),
	}
	if old, had := e.index.Set(key, entry); had {
		e.uncompacted += uint64(old.Length)
		e.metrics.SetUncompactedBytes(e.uncompacted)
	}

	e.setCount.Add(1)
	e.metrics.IncSet()
	if e.uncompacted > e.compactionThreshold {
		if err := e.compact(); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key, or found=false if absent.
func (e *Engine) Get(key string) (value string, found bool, err error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	entry, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	reader, ok := e.readers[entry.Generation]
	if !ok {
		return "", false, pkgerrors.NewIndexCorruptionError("Get", e.index.Len(), nil)
	}

	if reader.Pos() != entry.Offset {
		if _, err := reader.Seek(entry.Offset, io.SeekStart); err != nil {
			return "", false, pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to seek reader").
				WithGeneration(entry.Generation).
				WithOffset(entry.Offset)
		}
	}

	line, readErr := reader.ReadLine()
	if readErr != nil && readErr != io.EOF {
		return "", false, pkgerrors.NewStorageError(readErr, pkgerrors.ErrorCodeIO, "failed to read indexed record").
			WithGeneration(entry.Generation).
			WithOffset(entry.Offset)
	}
	if len(line) == 0 || line[len(line)-1] != '\n' {
		return "", false, pkgerrors.NewStorageError(nil, pkgerrors.ErrorCodeCorruption, "indexed record truncated").
			WithGeneration(entry.Generation).
			WithOffset(entry.Offset)
	}

	body := line[:len(line)-1]
	if index.Checksum(body) != entry.Checksum {
		return "", false, pkgerrors.NewStorageError(nil, pkgerrors.ErrorCodeCorruption, "checksum mismatch on indexed record").
			WithGeneration(entry.Generation).
			WithOffset(entry.Offset)
	}

	rec, err := codec.Decode(body)
	if err != nil {
		return "", false, err
	}
	if rec.Set == nil {
		return "", false, pkgerrors.NewStorageError(nil, pkgerrors.ErrorCodeCorruption, "indexed offset holds a non-Set record").
			WithGeneration(entry.Generation).
			WithOffset(entry.Offset)
	}
	if rec.Set.Key != key {
		return "", false, pkgerrors.NewStorageError(nil, pkgerrors.ErrorCodeCorruption, "indexed record key mismatch").
			WithGeneration(entry.Generation).
			WithOffset(entry.Offset)
	}

	e.getCount.Add(1)
	e.metrics.IncGet()
	return rec.Set.Value, true, nil
}

// Remove deletes key. It returns ErrKeyNotFound if key has no entry.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if _, ok := e.index.Get(key); !ok {
		return ErrKeyNotFound
	}

	body, err := codec.Encode(codec.NewRemove(key))
	if err != nil {
		return err
	}
	if _, err := e.writer.Write(body); err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to append remove record").
			WithGeneration(e.activeGen)
	}
	if err := e.writer.Flush(); err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to flush remove record").
			WithGeneration(e.activeGen)
	}

	// Matches the original engine's accounting exactly: the tombstone's
	// own bytes are not added to uncompacted here, only during replay.
	e.index.Remove(key)
	e.removeCount.Add(1)
	e.metrics.IncRemove()
	return nil
}

// compact rewrites every live record into a fresh generation C and
// starts a new active generation N = C+1, then drops all generations
// older than C.
func (e *Engine) compact() error {
	stop := e.metrics.StartCompaction()
	defer stop()

	compactGen := e.activeGen + 1
	newActiveGen := e.activeGen + 2

	if err := e.openActiveGeneration(newActiveGen); err != nil {
		return err
	}

	compactWriter, err := storage.OpenWriter(e.dir, compactGen)
	if err != nil {
		return err
	}
	if _, ok := e.readers[compactGen]; !ok {
		reader, err := storage.OpenReader(e.dir, compactGen)
		if err != nil {
			compactWriter.Close()
			return err
		}
		e.readers[compactGen] = reader
	}

	type relocation struct {
		key   string
		entry index.Entry
	}
	relocations := make([]relocation, 0, e.index.Len())

	var copyErr error
	e.index.Range(func(key string, entry index.Entry) {
		if copyErr != nil {
			return
		}
		reader, ok := e.readers[entry.Generation]
		if !ok {
			copyErr = pkgerrors.NewIndexCorruptionError("Compact", e.index.Len(), nil)
			return
		}
		if reader.Pos() != entry.Offset {
			if _, err := reader.Seek(entry.Offset, io.SeekStart); err != nil {
				copyErr = err
				return
			}
		}
		line, err := reader.ReadLine()
		if err != nil && err != io.EOF {
			copyErr = err
			return
		}

		newStart := compactWriter.Pos()
		if _, err := compactWriter.Write(line); err != nil {
			copyErr = err
			return
		}
		newEnd := compactWriter.Pos()

		relocations = append(relocations, relocation{
			key: key,
			entry: index.Entry{
				Generation: compactGen,
				Offset:     newStart,
				Length:     newEnd - newStart,
				Checksum:   entry.Checksum,
			},
		})
	})
	if copyErr != nil {
		return copyErr
	}

	for _, r := range relocations {
		e.index.Set(r.key, r.entry)
	}

	if err := compactWriter.Flush(); err != nil {
		return err
	}

	for gen, reader := range e.readers {
		if gen >= compactGen {
			continue
		}
		reader.Close()
		delete(e.readers, gen)
		if err := storage.Remove(e.dir, gen); err != nil {
			return err
		}
	}

	e.uncompacted = 0
	e.metrics.SetUncompactedBytes(0)
	if e.log != nil {
		e.log.Infow("compaction complete", "compactGeneration", compactGen, "activeGeneration", e.activeGen)
	}
	e.events.Publish("compacted", map[string]any{"compactGeneration": compactGen, "activeGeneration": e.activeGen})
	return nil
}

// Close flushes and releases all open file handles.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	var firstErr error
	if err := e.writer.Close(); err != nil {
		firstErr = err
	}
	for _, reader := range e.readers {
		if err := reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.log != nil {
		e.log.Infow("engine closed", "dataDir", e.dir)
	}
	e.events.Publish("closed", map[string]any{"dataDir": e.dir})
	return firstErr
}
