package ingest

import (
	"context"
	"fmt"

	"github.com/lysyi3m/podcomb/internal/feed"
)

type Decision int

const (
	Skip Decision = iota
	Download
	MarkSeen
	StopFeed
	Quit
)

var decisionNames = map[Decision]string{
	Skip:     "skip",
	Download: "download",
	MarkSeen: "mark seen",
	StopFeed: "next feed",
	Quit:     "quit",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// FeedInfo describes the feed an entry belongs to. Title falls back to the
// URL when the channel has none.
type FeedInfo struct {
	URL   string
	Title string
}

// Decider chooses what happens to each new entry.
type Decider interface {
	Decide(ctx context.Context, info FeedInfo, entry feed.Entry) (Decision, error)
}

type DeciderFunc func(ctx context.Context, info FeedInfo, entry feed.Entry) (Decision, error)

func (f DeciderFunc) Decide(ctx context.Context, info FeedInfo, entry feed.Entry) (Decision, error) {
	return f(ctx, info, entry)
}
