// Package codec implements the self-delimiting text encoding for the
// store's command records: one JSON object per line, either
// {"Set":{"key":...,"value":...}} or {"Remove":{"key":...}}.
package codec

import (
	"bufio"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Set is the payload of a Set command record.
type Set struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Remove is the payload of a Remove command record.
type Remove struct {
	Key string `json:"key"`
}

// Record is the on-disk sum type. Exactly one of Set or Remove is
// populated; this mirrors how the wire protocol frames requests, so the
// same type doubles as the log record shape.
type Record struct {
	Set    *Set    `json:"Set,omitempty"`
	Remove *Remove `json:"Remove,omitempty"`
}

// NewSet builds a Set record.
func NewSet(key, value string) Record {
	return Record{Set: &Set{Key: key, Value: value}}
}

// NewRemove builds a Remove record.
func NewRemove(key string) Record {
	return Record{Remove: &Remove{Key: key}}
}

// Key returns the key carried by whichever variant is populated, or ""
// for a zero-value Record.
func (r Record) Key() string {
	switch {
	case r.Set != nil:
		return r.Set.Key
	case r.Remove != nil:
		return r.Remove.Key
	default:
		return ""
	}
}

// Encode serializes a record as its JSON form plus a single trailing
// newline, the framing this engine relies on for every index offset it
// records.
func Encode(r Record) ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("codec: encode record: %w", err)
	}
	return append(body, '\n'), nil
}

// Decode parses a single line (without its trailing newline) into a
// Record.
func Decode(line []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(line, &r); err != nil {
		return Record{}, fmt.Errorf("codec: decode record: %w", err)
	}
	if r.Set == nil && r.Remove == nil {
		return Record{}, fmt.Errorf("codec: decode record: unknown command variant")
	}
	return r, nil
}

// Stream decodes a sequence of framed records from an underlying byte
// stream, tracking byte offsets the way the engine's index needs them.
// It tolerates a truncated trailing partial record by treating it as
// end-of-stream, matching replay's crash-consistency requirement.
type Stream struct {
	r   *bufio.Reader
	pos int64
}

// NewStream wraps r for decoding, with startPos the stream's current
// logical offset in the underlying file (the caller is responsible for
// having already seked there).
func NewStream(r io.Reader, startPos int64) *Stream {
	return &Stream{r: bufio.NewReader(r), pos: startPos}
}

// Next yields the next record along with the half-open byte range
// [start, endExclusive) occupied by its JSON document (the trailing
// newline is not included in that range, but is accounted for in pos
// bookkeeping for the following call). Returns io.EOF when the stream is
// exhausted, including when only a truncated trailing partial record
// remains.
func (s *Stream) Next() (rec Record, start int64, endExclusive int64, err error) {
	line, readErr := s.r.ReadBytes('\n')
	if readErr != nil {
		if len(line) == 0 {
			return Record{}, 0, 0, io.EOF
		}
		// A non-empty line with no trailing newline is a truncated
		// trailing partial record; replay tolerates this by treating
		// it as end-of-stream rather than an error.
		return Record{}, 0, 0, io.EOF
	}

	start = s.pos
	endExclusive = start + int64(len(line)) - 1 // exclude the '\n'
	s.pos = start + int64(len(line))

	rec, err = Decode(line[:len(line)-1])
	if err != nil {
		return Record{}, start, endExclusive, err
	}
	return rec, start, endExclusive, nil
}
