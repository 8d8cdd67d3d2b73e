// Package seen keeps the append-only log of entry identifiers that have
// already been downloaded or dismissed.
package seen

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/lysyi3m/podcomb/internal/buffer"
)

var ErrInvalidIdentifier = errors.New("identifier must be non-empty and fit on one line")

// Index is a newline-delimited list of identifiers mirrored to a file.
// Every Record is written through to disk before it returns.
type Index struct {
	path string
	buf  *buffer.Buffer
}

func Open(path string) (*Index, error) {
	buf, err := buffer.Hydrate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seen index: %w", err)
	}
	// A hand-edited file may lack the final newline.
	buf.EndLine()
	return &Index{path: path, buf: buf}, nil
}

// Contains scans the whole index for an exact, case-sensitive match.
// The scan is linear; the index only grows by one line per processed entry.
func (i *Index) Contains(id string) bool {
	want := []byte(id)

	i.buf.ResetCursor()
	for {
		line, ok := i.buf.NextLine()
		if !ok {
			return false
		}
		if len(line) == len(want) && bytes.Equal(line, want) {
			return true
		}
	}
}

// Record appends id and persists the whole index.
func (i *Index) Record(id string) error {
	if id == "" || strings.ContainsAny(id, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}

	i.buf.AppendString(id)
	i.buf.AppendString("\n")

	if err := i.buf.Persist(i.path); err != nil {
		return fmt.Errorf("failed to record %q: %w", id, err)
	}
	return nil
}

// Len counts the stored records, duplicates included.
func (i *Index) Len() int {
	n := 0
	i.buf.ResetCursor()
	for {
		if _, ok := i.buf.NextLine(); !ok {
			return n
		}
		n++
	}
}

func (i *Index) Path() string {
	return i.path
}
