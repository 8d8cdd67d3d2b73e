// Package buffer implements the growable byte buffer that backs every
// line-oriented file podcomb keeps, and every downloaded document before it
// is parsed.
package buffer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Increment is the allocation granularity. Capacity is always a multiple of it.
const Increment = 128

var (
	ErrHydrate  = errors.New("failed to hydrate buffer")
	ErrPersist  = errors.New("failed to persist buffer")
	ErrDetached = errors.New("buffer used after detach")
)

// Buffer is append-only storage with a resettable read cursor.
//
// The backing slice always holds a zero byte at offset written, so the
// content can be handed to code that expects a terminated string.
type Buffer struct {
	bytes    []byte
	written  int
	cursor   int
	detached bool
}

// New returns an empty buffer with capacity for one increment.
func New() *Buffer {
	return &Buffer{bytes: make([]byte, Increment)}
}

// Hydrate loads the full contents of path into a new buffer. The file is
// created empty when it does not exist yet.
func Hydrate(path string) (*Buffer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHydrate, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHydrate, path, err)
	}

	size := int(info.Size())
	b := &Buffer{
		bytes:   make([]byte, roundUp(size+1)),
		written: size,
	}

	if _, err := io.ReadFull(f, b.bytes[:size]); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHydrate, path, err)
	}
	b.bytes[size] = 0

	return b, nil
}

// FromReader drains r into a new buffer.
func FromReader(r io.Reader) (*Buffer, error) {
	b := New()
	if _, err := io.Copy(b, r); err != nil {
		return nil, err
	}
	return b, nil
}

// Append extends the logical content with p.
func (b *Buffer) Append(p []byte) {
	b.mustBeAttached()

	// Reaching capacity triggers growth; sizing past need keeps the new
	// region strictly larger than the old one.
	need := b.written + len(p) + 1
	if need >= len(b.bytes) {
		grown := make([]byte, roundUp(need+1))
		copy(grown, b.bytes[:b.written])
		b.bytes = grown
	}

	copy(b.bytes[b.written:], p)
	b.written += len(p)
	b.bytes[b.written] = 0
}

// AppendString is Append for string data.
func (b *Buffer) AppendString(s string) {
	b.Append([]byte(s))
}

// EndLine appends a newline unless the content is empty or already ends
// with one, so the next appended record starts on its own line.
func (b *Buffer) EndLine() {
	b.mustBeAttached()
	if b.written > 0 && b.bytes[b.written-1] != '\n' {
		b.AppendString("\n")
	}
}

// Write implements io.Writer on top of Append. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// NextLine returns the record that starts at the cursor, without its
// trailing newline, and moves the cursor past it. ok is false once the
// cursor has reached the end of the content. A last record that is not
// followed by a newline is still returned.
//
// The returned slice aliases the buffer and is only valid until the next
// Append.
func (b *Buffer) NextLine() (line []byte, ok bool) {
	b.mustBeAttached()

	if b.cursor == b.written {
		return nil, false
	}

	rest := b.bytes[b.cursor:b.written]
	end := bytes.IndexByte(rest, '\n')
	if end < 0 {
		b.cursor = b.written
		return rest, true
	}

	b.cursor += end + 1
	return rest[:end], true
}

// ResetCursor rewinds the cursor to the start of the content.
func (b *Buffer) ResetCursor() {
	b.mustBeAttached()
	b.cursor = 0
}

// Persist truncates path and writes exactly the buffer content to it.
func (b *Buffer) Persist(path string) error {
	b.mustBeAttached()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, path, err)
	}

	if _, err := f.Write(b.bytes[:b.written]); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrPersist, path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, path, err)
	}

	return nil
}

// Detach hands the content over to the caller. The buffer must not be used
// afterwards.
func (b *Buffer) Detach() []byte {
	b.mustBeAttached()

	content := b.bytes[:b.written:b.written]
	b.bytes = nil
	b.written = 0
	b.cursor = 0
	b.detached = true

	return content
}

// Bytes returns the content without copying it.
func (b *Buffer) Bytes() []byte {
	b.mustBeAttached()
	return b.bytes[:b.written]
}

func (b *Buffer) Len() int {
	return b.written
}

func (b *Buffer) Cap() int {
	return len(b.bytes)
}

func (b *Buffer) mustBeAttached() {
	if b.detached {
		panic(ErrDetached)
	}
}

func roundUp(n int) int {
	if n <= 0 {
		return Increment
	}
	return ((n-1)/Increment + 1) * Increment
}
