// Package index provides the engine's in-memory key directory: a mapping
// from key to the location of its most recent Set record.
package index

import "github.com/zeebo/xxh3"

// Entry pinpoints a record within a specific generation's log file.
// Offset is the byte position of the record's first byte; Length is the
// number of bytes the record plus its trailing newline occupy.
// Checksum is an xxh3 digest of the encoded record body (excluding the
// newline), carried only in memory to turn a corrupt-but-well-framed
// record into a detectable condition on Get. Replay computes it from
// each decoded record; it does not verify anything at that point.
type Entry struct {
	Generation uint64
	Offset     int64
	Length     int64
	Checksum   uint64
}

// Checksum hashes the encoded record body (the bytes written to disk,
// without the trailing newline) for storage in an Entry.
func Checksum(body []byte) uint64 {
	return xxh3.Hash(body)
}

// Index is the engine's key->Entry directory. The engine is
// single-threaded and cooperative by design (see the concurrency model),
// so Index does no internal locking; callers must not share an Index
// across goroutines without external synchronization.
type Index struct {
	entries map[string]Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// Get returns the entry for key, if present.
func (idx *Index) Get(key string) (Entry, bool) {
	e, ok := idx.entries[key]
	return e, ok
}

// Set records e as the current entry for key, returning the previous
// entry if one existed.
func (idx *Index) Set(key string, e Entry) (Entry, bool) {
	old, had := idx.entries[key]
	idx.entries[key] = e
	return old, had
}

// Remove deletes key's entry, returning it if one existed.
func (idx *Index) Remove(key string) (Entry, bool) {
	old, had := idx.entries[key]
	if had {
		delete(idx.entries, key)
	}
	return old, had
}

// Len returns the number of live keys in the index.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Range calls fn for every entry in the index. Iteration order is
// unspecified, matching the map it's backed by; callers that need a
// stable order (e.g. compaction) must not rely on one being provided
// here.
func (idx *Index) Range(fn func(key string, e Entry)) {
	for k, e := range idx.entries {
		fn(k, e)
	}
}
