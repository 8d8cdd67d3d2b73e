package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/lysyi3m/podcomb/internal/feed"
	"github.com/lysyi3m/podcomb/internal/ingest"
)

var decisionOrder = []ingest.Decision{
	ingest.Download,
	ingest.Skip,
	ingest.MarkSeen,
	ingest.StopFeed,
	ingest.Quit,
}

// PromptDecider shows each new entry and asks the user what to do with it.
type PromptDecider struct {
	prompter Prompter
	out      io.Writer
}

func NewPromptDecider(prompter Prompter, out io.Writer) *PromptDecider {
	return &PromptDecider{prompter: prompter, out: out}
}

func (d *PromptDecider) Decide(ctx context.Context, info ingest.FeedInfo, entry feed.Entry) (ingest.Decision, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Quit, err
	}

	fmt.Fprintf(d.out, "\n%s\n  %s\n  id:  %s\n  url: %s\n", info.Title, entry.Title, entry.GUID, entry.EnclosureURL)

	choices := lo.Map(decisionOrder, func(dec ingest.Decision, _ int) string { return dec.String() })
	answer, err := d.prompter.Choose("Action:", choices)
	if errors.Is(err, ErrQuit) {
		return ingest.Quit, nil
	}
	if err != nil {
		return ingest.Quit, err
	}

	decision, ok := lo.Find(decisionOrder, func(dec ingest.Decision) bool { return dec.String() == answer })
	if !ok {
		return ingest.Quit, fmt.Errorf("unexpected answer %q", answer)
	}
	return decision, nil
}
