// Package iobuf provides buffered file wrappers that track a logical
// byte position independently of the reader/writer's internal buffering,
// ported from the engine's original BufReaderWithPos/BufWriterWithPos.
package iobuf

import (
	"bufio"
	"io"
	"os"
)

// ReaderWithPos wraps a *os.File with a bufio.Reader, keeping pos in sync
// with the number of bytes actually delivered to the caller rather than
// however much the buffer has pulled ahead from the OS.
type ReaderWithPos struct {
	f   *os.File
	r   *bufio.Reader
	pos int64
}

// NewReaderWithPos opens a positional reader over f, initializing pos to
// the file's current offset.
func NewReaderWithPos(f *os.File) (*ReaderWithPos, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &ReaderWithPos{f: f, r: bufio.NewReader(f), pos: pos}, nil
}

// Pos returns the logical position: the offset of the next byte that
// will be delivered to a caller.
func (r *ReaderWithPos) Pos() int64 {
	return r.pos
}

// Read implements io.Reader, advancing pos by the bytes delivered.
func (r *ReaderWithPos) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.pos += int64(n)
	return n, err
}

// ReadLine reads up to and including the next '\n', returning the bytes
// read (including the newline, if found before EOF) and advancing pos by
// that count.
func (r *ReaderWithPos) ReadLine() ([]byte, error) {
	line, err := r.r.ReadBytes('\n')
	r.pos += int64(len(line))
	return line, err
}

// Seek repositions the reader, resetting the internal buffer so
// subsequent reads come from the new offset, and sets pos to the
// resulting offset.
func (r *ReaderWithPos) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.f.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	r.r.Reset(r.f)
	r.pos = pos
	return pos, nil
}

// Close closes the underlying file.
func (r *ReaderWithPos) Close() error {
	return r.f.Close()
}

// WriterWithPos wraps a *os.File opened in append mode with a
// bufio.Writer, keeping pos in sync with the bytes accepted into the
// buffer (not merely the bytes flushed to the OS), so pos equals the
// logical file size from the engine's perspective at all times.
type WriterWithPos struct {
	f   *os.File
	w   *bufio.Writer
	pos int64
}

// NewWriterWithPos opens a positional writer over f, which MUST be
// opened in append mode so the OS write position tracks pos even under
// concurrent file growth. pos is initialized to the file's current size.
func NewWriterWithPos(f *os.File) (*WriterWithPos, error) {
	pos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return &WriterWithPos{f: f, w: bufio.NewWriter(f), pos: pos}, nil
}

// Pos returns the logical end-of-file offset.
func (w *WriterWithPos) Pos() int64 {
	return w.pos
}

// Write implements io.Writer, advancing pos by the bytes accepted.
func (w *WriterWithPos) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}

// Flush pushes buffered bytes through to the operating system. This is
// the engine's durability boundary: no fsync is issued.
func (w *WriterWithPos) Flush() error {
	return w.w.Flush()
}

// Close flushes and closes the underlying file.
func (w *WriterWithPos) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
