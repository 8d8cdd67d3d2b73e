// Package feed turns a downloaded RSS document into a lazy, newest-first
// sequence of downloadable entries.
package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/lysyi3m/podcomb/internal/buffer"
	"github.com/lysyi3m/podcomb/internal/markup"
)

// Document is a parsed feed with a traversal cursor over its items.
// Items are yielded in reverse document order: feeds list episodes
// oldest-first, so this is newest-first.
type Document struct {
	root   markup.Node
	cursor Cursor
}

// Parse consumes raw and parses it into a Document. The returned title is
// nil when the channel has no title.
func Parse(raw *buffer.Buffer, parser markup.Parser) (*Document, *string, error) {
	data := raw.Detach()

	root, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	if root == nil {
		return nil, nil, ErrNoRoot
	}

	if !isElement(root, rssElement) {
		return nil, nil, fmt.Errorf("%w: root element is <%s>", ErrNotRSS, root.Name())
	}

	channel := firstChild(root, channelElement)
	if channel == nil {
		return nil, nil, ErrNoChannel
	}

	var title *string
	if t := firstChild(channel, titleElement); t != nil {
		if text := strings.TrimSpace(t.Text()); text != "" {
			title = &text
		}
	}

	return &Document{root: root, cursor: NewCursor(channel)}, title, nil
}

// NextEntry returns the next item that carries an enclosure URL. Items
// without one are skipped. ok is false once every item has been visited;
// the sequence cannot be restarted.
func (d *Document) NextEntry() (entry Entry, ok bool) {
	for {
		n := d.cursor.Next()
		if n == nil {
			return Entry{}, false
		}
		if !isElement(n, itemElement) {
			continue
		}
		if entry, ok := entryFromItem(n); ok {
			return entry, true
		}
	}
}

// Release drops the parsed tree. It is safe to call on a nil Document and
// more than once.
func (d *Document) Release() {
	if d == nil {
		return
	}
	d.root = nil
	d.cursor.exhaust()
}

func entryFromItem(item markup.Node) (Entry, bool) {
	var title, guid, url string
	var hasTitle, hasGUID, hasURL bool

	// The first occurrence wins even when it is blank; blank values then
	// fall back to the enclosure URL.
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch {
		case !hasTitle && isElement(c, titleElement):
			title, hasTitle = strings.TrimSpace(c.Text()), true
		case !hasGUID && isElement(c, guidElement):
			guid, hasGUID = strings.TrimSpace(c.Text()), true
		case !hasURL && isElement(c, enclosureElement):
			if v, ok := c.Attr(urlAttribute); ok {
				url, hasURL = strings.TrimSpace(v), true
			}
		}
	}

	if url == "" {
		return Entry{}, false
	}

	return Entry{
		Title:        cmp.Or(title, url),
		GUID:         cmp.Or(guid, url),
		EnclosureURL: url,
	}, true
}

// isElement matches elements outside any namespace, so extension elements
// such as itunes:title never shadow the RSS ones.
func isElement(n markup.Node, name string) bool {
	return n.IsElement() && n.Space() == "" && n.Name() == name
}

func firstChild(parent markup.Node, name string) markup.Node {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if isElement(c, name) {
			return c
		}
	}
	return nil
}
