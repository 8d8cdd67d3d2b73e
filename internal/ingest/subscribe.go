package ingest

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/podcomb/internal/feed"
	"github.com/lysyi3m/podcomb/internal/subscription"
)

var ErrAlreadySubscribed = errors.New("already subscribed")

// Subscribe checks that rawURL serves a feed ingestion can read and appends
// it to the subscription list. It returns the feed title, or the URL when
// the feed has none.
func (a *App) Subscribe(ctx context.Context, rawURL string) (string, error) {
	feedURL, err := subscription.Validate(rawURL)
	if err != nil {
		return "", err
	}
	if a.Subscriptions.Contains(feedURL) {
		return "", fmt.Errorf("%w: %s", ErrAlreadySubscribed, feedURL)
	}

	raw, err := a.Fetcher.FetchToBuffer(ctx, feedURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch feed: %w", err)
	}
	data := bytes.Clone(raw.Bytes())

	doc, title, err := feed.Parse(raw, a.Parser)
	if err != nil {
		return "", fmt.Errorf("failed to parse feed: %w", err)
	}
	doc.Release()

	if _, err := a.Subscriptions.Add(feedURL); err != nil {
		return "", err
	}

	name := feedURL
	if title != nil {
		name = cmp.Or(*title, feedURL)
	}
	slog.Info("Subscribed", append([]any{"feed", feedURL, "title", name}, preview(data)...)...)
	return name, nil
}

// preview returns log attributes describing the feed's contents. It is
// best effort: a document gofeed cannot read yields none.
func preview(data []byte) []any {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		slog.Debug("No feed preview", "error", err)
		return nil
	}

	attrs := []any{"items", len(parsed.Items)}
	if len(parsed.Authors) > 0 && parsed.Authors[0].Name != "" {
		attrs = append(attrs, "author", parsed.Authors[0].Name)
	}
	if parsed.Updated != "" {
		attrs = append(attrs, "updated", parsed.Updated)
	}
	return attrs
}
