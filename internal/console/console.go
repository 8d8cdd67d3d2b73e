// Package console is the interactive command loop.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/lysyi3m/podcomb/internal/buffer"
	"github.com/lysyi3m/podcomb/internal/ingest"
)

const historyLimit = 10

type command struct {
	key   string
	label string
}

var commands = []command{
	{"r", "run: check feeds for new episodes"},
	{"l", "list subscriptions"},
	{"a", "add a subscription"},
	{"s", "show recent downloads"},
	{"h", "help"},
	{"q", "quit"},
}

type Console struct {
	app      *ingest.App
	prompter Prompter
	out      io.Writer
}

func New(app *ingest.App, prompter Prompter, out io.Writer) *Console {
	return &Console{app: app, prompter: prompter, out: out}
}

// Run reads commands until the user quits. Only errors that leave the
// persisted state unusable are returned.
func (c *Console) Run(ctx context.Context) error {
	choices := lo.Map(commands, func(cmd command, _ int) string { return cmd.key + "  " + cmd.label })

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		answer, err := c.prompter.Choose("Command:", choices)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		key, _, _ := strings.Cut(strings.TrimSpace(answer), " ")
		switch key {
		case "h":
			c.help()
		case "l":
			c.list()
		case "a":
			if err := c.add(ctx); err != nil {
				return err
			}
		case "r":
			if err := c.run(ctx); err != nil {
				return err
			}
		case "s":
			if err := c.showHistory(ctx); err != nil {
				return err
			}
		case "q":
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown command %q, h for help\n", key)
		}
	}
}

func (c *Console) help() {
	for _, cmd := range commands {
		fmt.Fprintf(c.out, "  %s  %s\n", cmd.key, cmd.label)
	}
}

func (c *Console) list() {
	urls := c.app.Subscriptions.URLs()
	if len(urls) == 0 {
		fmt.Fprintln(c.out, "No subscriptions yet, a to add one")
		return
	}
	lines := lo.Map(urls, func(u string, i int) string { return fmt.Sprintf("%3d  %s", i+1, u) })
	fmt.Fprintln(c.out, strings.Join(lines, "\n"))
}

func (c *Console) add(ctx context.Context) error {
	rawURL, err := c.prompter.Input("Feed URL:", "")
	if errors.Is(err, ErrQuit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read feed URL: %w", err)
	}

	title, err := c.app.Subscribe(ctx, rawURL)
	switch {
	case errors.Is(err, buffer.ErrPersist):
		return err
	case err != nil:
		fmt.Fprintf(c.out, "Not subscribed: %v\n", err)
	default:
		fmt.Fprintf(c.out, "Subscribed to %s\n", title)
	}
	return nil
}

func (c *Console) run(ctx context.Context) error {
	if c.app.Subscriptions.Len() == 0 {
		fmt.Fprintln(c.out, "No subscriptions yet, a to add one")
		return nil
	}

	stats, err := ingest.NewOrchestrator(c.app).Run(ctx, NewPromptDecider(c.prompter, c.out))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n%d feeds checked: %d downloaded, %d marked seen, %d skipped, %d already seen\n",
		stats.Feeds, stats.Downloaded, stats.Marked, stats.Skipped, stats.AlreadySeen)
	return nil
}

func (c *Console) showHistory(ctx context.Context) error {
	if c.app.History == nil {
		fmt.Fprintln(c.out, "Download history is disabled")
		return nil
	}

	records, err := c.app.History.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(c.out, "Nothing downloaded yet")
		return nil
	}

	total, err := c.app.History.Count(ctx)
	if err != nil {
		return err
	}

	for _, r := range records {
		fmt.Fprintf(c.out, "  %-14s %s / %s (%s)\n", humanize.Time(r.DownloadedAt), r.FeedTitle, r.EntryTitle, humanize.Bytes(uint64(r.Size)))
	}
	fmt.Fprintf(c.out, "%d of %s downloads shown\n", len(records), humanize.Comma(int64(total)))
	return nil
}

// Progress returns a download progress callback that redraws a single
// line on out.
func Progress(out io.Writer) func(written, total int64) {
	var last int64 = -1
	return func(written, total int64) {
		// Redraw at most once per mebibyte.
		if written/humanize.MiByte == last && written != total {
			return
		}
		last = written / humanize.MiByte

		if total > 0 {
			fmt.Fprintf(out, "\r  %s / %s", humanize.IBytes(uint64(written)), humanize.IBytes(uint64(total)))
		} else {
			fmt.Fprintf(out, "\r  %s", humanize.IBytes(uint64(written)))
		}
		if written == total {
			fmt.Fprintln(out)
		}
	}
}
