package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// State files
	Home          string `long:"home" env:"HOME" description:"Directory that relative state paths are resolved against"`
	Subscriptions string `long:"subscriptions" env:"PODCOMB_SUBSCRIPTIONS" default:".podcasts" description:"Subscription list, one feed URL per line"`
	Seen          string `long:"seen" env:"PODCOMB_SEEN" default:".podcasts_seen" description:"Identifiers of entries already downloaded or dismissed"`
	History       string `long:"history" env:"PODCOMB_HISTORY" default:".podcasts.db" description:"SQLite download history (empty disables it)"`
	DownloadDir   string `long:"download-dir" env:"PODCOMB_DOWNLOAD_DIR" default:"Podcasts" description:"Directory downloaded episodes are saved under"`

	// Transfers
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`
	Timeout   int    `long:"timeout" env:"PODCOMB_TIMEOUT" default:"0" description:"HTTP timeout in seconds (0 waits forever)"`

	// Application metadata
	Config string `long:"config" env:"PODCOMB_CONFIG" description:"YAML file with default values for any long option"`
	Debug  bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

type configFlag struct {
	Config string `long:"config" env:"PODCOMB_CONFIG"`
}

var globalCfg *Cfg

// Load reads the configuration from the command line and the environment.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load for an explicit argument list. Precedence, highest
// first: command line, environment, YAML config file, built-in defaults.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	configFile, err := findConfigFile(args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if configFile != "" {
		if err := applyConfigFile(parser, configFile); err != nil {
			return nil, err
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be non-negative")
	}

	home := raw.Home
	if home == "" {
		if home, err = os.UserHomeDir(); err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
	}

	cfg := &Cfg{
		Home:              home,
		SubscriptionsPath: resolve(home, raw.Subscriptions),
		SeenPath:          resolve(home, raw.Seen),
		HistoryPath:       resolve(home, raw.History),
		DownloadDir:       resolve(home, raw.DownloadDir),
		UserAgent:         cmp.Or(raw.UserAgent, "podcomb/"+GetVersion()),
		Timeout:           time.Duration(raw.Timeout) * time.Second,
		ConfigFile:        configFile,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.SubscriptionsPath == "" || cfg.SeenPath == "" {
		return nil, fmt.Errorf("subscription and seen paths are required")
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// findConfigFile picks --config (or PODCOMB_CONFIG) out of args without
// validating anything else.
func findConfigFile(args []string) (string, error) {
	var c configFlag
	if _, err := flags.NewParser(&c, flags.IgnoreUnknown).ParseArgs(args); err != nil {
		return "", err
	}
	return c.Config, nil
}

// applyConfigFile turns the keys of a YAML mapping into option defaults.
// Keys are long option names, e.g. "download-dir: /srv/podcasts".
func applyConfigFile(parser *flags.Parser, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for key, value := range values {
		option := parser.FindOptionByLongName(key)
		if option == nil || key == "config" {
			return fmt.Errorf("invalid config file %s: unknown option %q", path, key)
		}
		if value == nil {
			option.Default = []string{""}
			continue
		}
		option.Default = []string{fmt.Sprint(value)}
	}

	return nil
}

func resolve(home, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}
