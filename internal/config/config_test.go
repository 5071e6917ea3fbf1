package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "monday", cfg.Timecard.WeekStart)
	assert.Equal(t, 8.0, cfg.Timecard.RegularHours)
	assert.Equal(t, 12.0, cfg.Timecard.OvertimeHours)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 168*time.Hour, cfg.Retry.MaxAge)
	assert.Equal(t, "@every 1m", cfg.Retry.Schedule)
	assert.False(t, cfg.Server.Enabled)

	cal, err := cfg.Calendar()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, cal.WeekStart)
	assert.Equal(t, time.UTC, cal.Location)
}

func TestLoadConfig_YAMLAndEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `
env: production
storage_path: /tmp/tc.db
log:
  level: debug
  format: json
timecard:
  week_start: sunday
  timezone: America/Los_Angeles
backend:
  base_url: https://timekeeping.example.com
  timeout: 5
server:
  port: 9090
`)
	t.Setenv("TIMECLOCK_SERVER_PORT", "9191")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "/tmp/tc.db", cfg.StoragePath)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://timekeeping.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 8.0, cfg.Timecard.RegularHours)

	cal, err := cfg.Calendar()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, cal.WeekStart)
	assert.Equal(t, "America/Los_Angeles", cal.Location.String())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TIMECLOCK_DEVICE_NAME=front-desk\n"), 0o600))
	t.Setenv("TIMECLOCK_DEVICE_NAME", "")
	os.Unsetenv("TIMECLOCK_DEVICE_NAME")

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "front-desk", cfg.Device.Name)
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())
	tests := map[string]string{
		"week start": "timecard:\n  week_start: someday\n",
		"timezone":   "timecard:\n  timezone: Mars/Olympus\n",
		"tiers":      "timecard:\n  regular_hours: 10\n  overtime_hours: 9\n",
		"timeout":    "backend:\n  timeout: -1\n",
		"port":       "server:\n  enabled: true\n  port: 70000\n",
	}
	for name, body := range tests {
		_, err := LoadConfig(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
