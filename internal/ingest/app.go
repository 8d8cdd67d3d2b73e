// Package ingest walks every subscribed feed newest-first and acts on the
// entries that are not yet in the seen index.
package ingest

import (
	"context"

	"github.com/lysyi3m/podcomb/internal/buffer"
	"github.com/lysyi3m/podcomb/internal/history"
	"github.com/lysyi3m/podcomb/internal/markup"
	"github.com/lysyi3m/podcomb/internal/seen"
	"github.com/lysyi3m/podcomb/internal/subscription"
)

// Fetcher is the transfer capability ingestion needs. *downloader.Downloader
// implements it.
type Fetcher interface {
	FetchToBuffer(ctx context.Context, url string) (*buffer.Buffer, error)
	FetchToFile(ctx context.Context, url, path string) (int64, error)
}

// App is the application context. It is built once at startup and owns
// all persisted state for the life of the process.
type App struct {
	Subscriptions *subscription.List
	Seen          *seen.Index
	Fetcher       Fetcher
	Parser        markup.Parser
	History       *history.Store // nil when the journal is disabled
	MediaDir      string
}
