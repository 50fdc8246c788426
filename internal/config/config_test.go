package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "cache", cfg.CacheDir)
	assert.Equal(t, FeedNone, cfg.Feed.Kind)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Manifest)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradeterm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache_dir: /var/cache/tradeterm
feed:
  kind: router
  agent_url: ws://localhost:9000/ws
log:
  level: debug
manifest:
  - asset: eth
    interval: 1d
    path: Binance/eth_usdt-1day.csv
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/tradeterm", cfg.CacheDir)
	assert.Equal(t, FeedRouter, cfg.Feed.Kind)
	assert.Equal(t, "ws://localhost:9000/ws", cfg.Feed.AgentURL)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Len(t, cfg.Manifest, 1)
	assert.Equal(t, "eth", cfg.Manifest[0].Asset)
	assert.Equal(t, types.IntervalOneDay, cfg.Manifest[0].Interval)
}

func TestLoadInvalidFeedKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradeterm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  kind: carrier-pigeon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestLoadAgentKindRequiresURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradeterm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  kind: agent\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradeterm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_dir: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRADETERM_CACHE_DIR", "/tmp/override")
	t.Setenv("TRADETERM_AGENT_URL", "ws://agent:9000/ws")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override", cfg.CacheDir)
	assert.Equal(t, "ws://agent:9000/ws", cfg.Feed.AgentURL)
}
