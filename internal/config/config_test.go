package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "absent")
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "0.0.0.0:3001", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 20, cfg.DefaultCapacity)
	assert.True(t, cfg.HostReassignment)
	assert.Equal(t, 5*time.Minute, cfg.ReaperInterval)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, "kick", cfg.BackpressurePolicy)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
}

func TestLoadFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
mode: debug
port: 9000
default_capacity: 2
max_capacity: 8
host_reassignment: false
reaper_interval: 30s
ice_servers:
  - urls: ["turn:turn.example.com:3478"]
    username: u
    credential: p
`), 0o600))
	t.Setenv("PORT", "9100")
	t.Setenv("RENDEZVOUS_SIGNAL_BURST", "7")

	cfg, err := Load(nil, file)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9100, cfg.Port, "environment wins over file")
	assert.Equal(t, 7, cfg.SignalBurst)
	assert.Equal(t, 2, cfg.DefaultCapacity)
	assert.False(t, cfg.HostReassignment)
	assert.Equal(t, 30*time.Second, cfg.ReaperInterval)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, "u", cfg.ICEServers[0].Username)
}

func TestLoadHonoursFlagOverrides(t *testing.T) {
	v := viper.New()
	v.Set("port", 4242)
	t.Setenv("CONFIG_ENV", "absent")

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("default_capacity: 0\nbackpressure_policy: shrug\n"), 0o600))

	_, err := Load(nil, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_capacity")
	assert.Contains(t, err.Error(), "backpressure_policy")
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "typo.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadMalformedFileFails(t *testing.T) {
	t.Setenv("CONFIG_ENV", "broken")
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.broken.yaml"), []byte("port: [unterminated\n"), 0o600))
	t.Chdir(dir)

	_, err := Load(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
