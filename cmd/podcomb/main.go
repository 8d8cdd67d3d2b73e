package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/podcomb/internal/cfg"
	"github.com/lysyi3m/podcomb/internal/console"
	"github.com/lysyi3m/podcomb/internal/downloader"
	"github.com/lysyi3m/podcomb/internal/history"
	"github.com/lysyi3m/podcomb/internal/ingest"
	"github.com/lysyi3m/podcomb/internal/markup"
	"github.com/lysyi3m/podcomb/internal/seen"
	"github.com/lysyi3m/podcomb/internal/subscription"
)

func main() {
	if err := run(); err != nil {
		slog.Error("podcomb failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Debug("Configuration loaded",
		"version", appCfg.Version,
		"subscriptions", appCfg.SubscriptionsPath,
		"seen", appCfg.SeenPath,
		"history", appCfg.HistoryPath,
		"download_dir", appCfg.DownloadDir,
		"config_file", appCfg.ConfigFile)

	subs, err := subscription.Open(appCfg.SubscriptionsPath)
	if err != nil {
		return err
	}

	index, err := seen.Open(appCfg.SeenPath)
	if err != nil {
		return err
	}

	app := &ingest.App{
		Subscriptions: subs,
		Seen:          index,
		Fetcher:       downloader.New(nil, appCfg.UserAgent, appCfg.Timeout).WithProgress(console.Progress(os.Stdout)),
		Parser:        markup.NewParser(),
		MediaDir:      appCfg.DownloadDir,
	}

	if appCfg.HistoryPath != "" {
		store, err := history.Open(appCfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()
		app.History = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("podcomb %s: %d subscriptions, %d seen entries\n", appCfg.Version, subs.Len(), index.Len())

	return console.New(app, console.Terminal{}, os.Stdout).Run(ctx)
}
