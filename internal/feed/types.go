package feed

import "errors"

var (
	ErrNoRoot    = errors.New("document has no root element")
	ErrNotRSS    = errors.New("document is not an RSS feed")
	ErrNoChannel = errors.New("rss element has no channel")
)

// Entry is one downloadable item of a feed. Missing titles and GUIDs are
// filled in from EnclosureURL, so all three fields are always set.
type Entry struct {
	Title        string
	GUID         string
	EnclosureURL string
}

const (
	rssElement       = "rss"
	channelElement   = "channel"
	itemElement      = "item"
	titleElement     = "title"
	guidElement      = "guid"
	enclosureElement = "enclosure"
	urlAttribute     = "url"
)
