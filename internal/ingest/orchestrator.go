package ingest

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/podcomb/internal/feed"
	"github.com/lysyi3m/podcomb/internal/history"
	"github.com/lysyi3m/podcomb/internal/media"
)

// Stats counts what a run did.
type Stats struct {
	Feeds       int
	Surfaced    int
	Downloaded  int
	Marked      int
	Skipped     int
	AlreadySeen int
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("feeds", s.Feeds),
		slog.Int("surfaced", s.Surfaced),
		slog.Int("downloaded", s.Downloaded),
		slog.Int("marked", s.Marked),
		slog.Int("skipped", s.Skipped),
		slog.Int("already_seen", s.AlreadySeen),
	)
}

type Orchestrator struct {
	app *App
}

func NewOrchestrator(app *App) *Orchestrator {
	return &Orchestrator{app: app}
}

// Run processes every subscription in file order. Entries already in the
// seen index never reach the decider, so running twice without new
// entries asks nothing. Any fetch, parse, download or persistence error
// ends the run.
func (o *Orchestrator) Run(ctx context.Context, decider Decider) (Stats, error) {
	var stats Stats
	startTime := time.Now()

	for _, feedURL := range o.app.Subscriptions.URLs() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		quit, err := o.processFeed(ctx, feedURL, decider, &stats)
		if err != nil {
			return stats, fmt.Errorf("feed %s: %w", feedURL, err)
		}
		stats.Feeds++

		if quit {
			slog.Debug("Run stopped by user", "feed", feedURL)
			break
		}
	}

	slog.Info("Ingestion finished", "stats", stats, "duration", time.Since(startTime))
	return stats, nil
}

func (o *Orchestrator) processFeed(ctx context.Context, feedURL string, decider Decider, stats *Stats) (bool, error) {
	raw, err := o.app.Fetcher.FetchToBuffer(ctx, feedURL)
	if err != nil {
		return false, fmt.Errorf("failed to fetch feed: %w", err)
	}

	doc, title, err := feed.Parse(raw, o.app.Parser)
	if err != nil {
		return false, fmt.Errorf("failed to parse feed: %w", err)
	}
	defer doc.Release()

	info := FeedInfo{URL: feedURL, Title: feedURL}
	if title != nil {
		info.Title = cmp.Or(*title, feedURL)
	}
	slog.Debug("Processing feed", "feed", feedURL, "title", info.Title)

	for {
		entry, ok := doc.NextEntry()
		if !ok {
			return false, nil
		}

		if o.app.Seen.Contains(entry.GUID) {
			stats.AlreadySeen++
			continue
		}
		stats.Surfaced++

		decision, err := decider.Decide(ctx, info, entry)
		if err != nil {
			return false, fmt.Errorf("failed to decide on %q: %w", entry.Title, err)
		}
		slog.Debug("Entry decided", "feed", feedURL, "entry", entry.Title, "decision", decision)

		switch decision {
		case Download:
			if err := o.download(ctx, info, entry); err != nil {
				return false, err
			}
			stats.Downloaded++
		case MarkSeen:
			if err := o.app.Seen.Record(entry.GUID); err != nil {
				return false, err
			}
			stats.Marked++
		case Skip:
			stats.Skipped++
		case StopFeed:
			return false, nil
		case Quit:
			return true, nil
		default:
			return false, fmt.Errorf("unknown decision %v for %q", decision, entry.Title)
		}
	}
}

func (o *Orchestrator) download(ctx context.Context, info FeedInfo, entry feed.Entry) error {
	path := media.Path(o.app.MediaDir, info.Title, entry.Title, entry.EnclosureURL)
	if err := media.EnsureDir(path); err != nil {
		return err
	}
	// Episodes may share a title; never overwrite an earlier download.
	path, err := media.Unique(path)
	if err != nil {
		return err
	}

	size, err := o.app.Fetcher.FetchToFile(ctx, entry.EnclosureURL, path)
	if err != nil {
		return fmt.Errorf("failed to download %q: %w", entry.Title, err)
	}

	if o.app.History != nil {
		err := o.app.History.Add(ctx, history.Record{
			FeedURL:      info.URL,
			FeedTitle:    info.Title,
			EntryTitle:   entry.Title,
			GUID:         entry.GUID,
			EnclosureURL: entry.EnclosureURL,
			Path:         path,
			Size:         size,
		})
		if err != nil {
			return err
		}
	}

	if err := o.app.Seen.Record(entry.GUID); err != nil {
		return err
	}

	slog.Info("Downloaded episode", "feed", info.Title, "entry", entry.Title, "path", path)
	return nil
}
