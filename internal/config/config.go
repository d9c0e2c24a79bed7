package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/engine"
	"github.com/qubitlabs/mediakeeper/internal/feed"
	"github.com/qubitlabs/mediakeeper/internal/poller"
)

// Config holds runtime settings for the mediakeeper CLI.
//
// Units: PollInterval, PollCooldown, ReadTimeout and TokenTTL are
// time.Durations (e.g., 15*time.Second).
type Config struct {
	// DataDir is the root directory for all durable state. Derived paths
	// (backends, markers) are resolved against it when left empty.
	DataDir string

	// BackendDSNs lists the storage backends in "scheme:rest" form, in
	// read-preference order. Empty means the standard trio derived from
	// DataDir: a file store, a session memory store and the sqlite store.
	BackendDSNs []string

	// MarkersDir is the directory watched for cross-process change
	// markers. Empty derives it from DataDir.
	MarkersDir string

	PollInterval time.Duration
	PollCooldown time.Duration
	ReadTimeout  time.Duration

	// FeedLimit bounds the recent-updates feed.
	FeedLimit int

	// SessionSecret signs session tokens. The default is only suitable
	// for local single-user use.
	SessionSecret string
	TokenTTL      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.PollInterval = poller.DefaultInterval
	c.PollCooldown = poller.DefaultCooldown
	c.ReadTimeout = engine.DefaultReadTimeout
	c.FeedLimit = feed.DefaultLimit
	c.SessionSecret = "mediakeeper-local-secret"
	c.TokenTTL = 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones. Paths left empty by every
// source are derived from DataDir last.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	cfg.finalize()
	return cfg
}

// finalize resolves derived settings that depend on DataDir.
func (c *Config) finalize() {
	if len(c.BackendDSNs) == 0 {
		c.BackendDSNs = []string{
			"file:" + filepath.Join(c.DataDir, "local"),
			"memory:session",
			"sqlite:" + filepath.Join(c.DataDir, "catalog.db"),
		}
	}
	if c.MarkersDir == "" {
		c.MarkersDir = filepath.Join(c.DataDir, "markers")
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mediakeeper"
	}
	return filepath.Join(home, ".mediakeeper")
}
