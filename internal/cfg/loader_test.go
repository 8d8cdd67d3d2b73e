package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"PODCOMB_SUBSCRIPTIONS", "PODCOMB_SEEN", "PODCOMB_HISTORY", "PODCOMB_DOWNLOAD_DIR",
		"PODCOMB_TIMEOUT", "PODCOMB_CONFIG", "USER_AGENT", "DEBUG",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolateEnv(t)

	c, err := LoadArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, home, c.Home)
	assert.Equal(t, filepath.Join(home, ".podcasts"), c.SubscriptionsPath)
	assert.Equal(t, filepath.Join(home, ".podcasts_seen"), c.SeenPath)
	assert.Equal(t, filepath.Join(home, ".podcasts.db"), c.HistoryPath)
	assert.Equal(t, filepath.Join(home, "Podcasts"), c.DownloadDir)
	assert.Equal(t, "podcomb/"+GetVersion(), c.UserAgent)
	assert.Zero(t, c.Timeout)
	assert.False(t, c.Debug)
	assert.Same(t, c, Get())
}

func TestLoadFlagsAndEnv(t *testing.T) {
	home := isolateEnv(t)
	t.Setenv("PODCOMB_SEEN", "/var/lib/podcomb/seen")
	t.Setenv("PODCOMB_TIMEOUT", "30")

	c, err := LoadArgs([]string{"--subscriptions", "feeds.txt", "--history=", "--debug", "--timeout", "5"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "feeds.txt"), c.SubscriptionsPath)
	assert.Equal(t, "/var/lib/podcomb/seen", c.SeenPath)
	assert.Empty(t, c.HistoryPath)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.True(t, c.Debug)
}

func TestLoadConfigFile(t *testing.T) {
	home := isolateEnv(t)

	path := filepath.Join(home, "podcomb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download-dir: /srv/podcasts\ntimeout: 60\nuser-agent: custom/1.0\n"), 0o600))
	t.Setenv("PODCOMB_TIMEOUT", "10")

	c, err := LoadArgs([]string{"--config", path, "--user-agent", "flag/2.0"})
	require.NoError(t, err)

	assert.Equal(t, path, c.ConfigFile)
	assert.Equal(t, "/srv/podcasts", c.DownloadDir)
	assert.Equal(t, 10*time.Second, c.Timeout, "environment beats the config file")
	assert.Equal(t, "flag/2.0", c.UserAgent, "command line beats the config file")
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	home := isolateEnv(t)

	path := filepath.Join(home, "podcomb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seen: seen-list\n"), 0o600))
	t.Setenv("PODCOMB_CONFIG", path)

	c, err := LoadArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "seen-list"), c.SeenPath)
}

func TestLoadConfigFileErrors(t *testing.T) {
	home := isolateEnv(t)

	unknown := filepath.Join(home, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("colour: blue\n"), 0o600))
	_, err := LoadArgs([]string{"--config", unknown})
	assert.ErrorContains(t, err, "unknown option")

	broken := filepath.Join(home, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("timeout: [\n"), 0o600))
	_, err = LoadArgs([]string{"--config", broken})
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadArgs([]string{"--config", filepath.Join(home, "missing.yaml")})
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	isolateEnv(t)

	_, err := LoadArgs([]string{"--timeout=-1"})
	assert.Error(t, err)
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())

	old := Version
	t.Cleanup(func() { Version = old })
	Version = ""
	assert.Equal(t, "unknown", GetVersion())
}
