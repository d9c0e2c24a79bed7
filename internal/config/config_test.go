package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.NotEmpty(t, c.DataDir)
	assert.Equal(t, 15*time.Second, c.PollInterval)
	assert.Equal(t, 5*time.Second, c.PollCooldown)
	assert.Equal(t, 2*time.Second, c.ReadTimeout)
	assert.Equal(t, 3, c.FeedLimit)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
}

func TestLoadConfig_DerivesPathsFromDataDir(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-d", "/tmp/mkstate"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "/tmp/mkstate", cfg.DataDir)
	assert.Equal(t, filepath.Join("/tmp/mkstate", "markers"), cfg.MarkersDir)
	require.Len(t, cfg.BackendDSNs, 3)
	assert.Equal(t, "file:"+filepath.Join("/tmp/mkstate", "local"), cfg.BackendDSNs[0])
	assert.Equal(t, "memory:session", cfg.BackendDSNs[1])
	assert.Equal(t, "sqlite:"+filepath.Join("/tmp/mkstate", "catalog.db"), cfg.BackendDSNs[2])
}

func TestLoadConfig_ExplicitDSNsWin(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-b", "memory:a,memory:b", "-p", "30"}

	cfg := LoadConfig()

	assert.Equal(t, []string{"memory:a", "memory:b"}, cfg.BackendDSNs)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
}
