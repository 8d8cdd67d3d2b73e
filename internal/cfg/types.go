package cfg

import "time"

type Cfg struct {
	// State files
	Home              string
	SubscriptionsPath string
	SeenPath          string
	HistoryPath       string // empty when the download history is disabled
	DownloadDir       string

	// Transfers
	UserAgent string
	Timeout   time.Duration

	// Application metadata
	ConfigFile string
	Debug      bool
	Version    string
}
