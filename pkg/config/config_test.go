package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 1100*time.Millisecond, c.Loop.PollInterval)
	assert.Equal(t, 55*time.Second, c.Loop.SettleHold)
	assert.Equal(t, 2*time.Minute, c.Loop.StaleAfter)
	assert.Equal(t, 10*time.Minute, c.Feed.Window)
	assert.Equal(t, 5*time.Second, c.Feed.Timeout)
	assert.Equal(t, "Europe/Berlin", c.Loop.DisplayTimezone)
	assert.Equal(t, "console", c.Indicator.Driver)
	assert.Equal(t, "memory", c.Cache.Driver)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.Loop.Countdown)
	require.NoError(t, c.Validate())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
loop:
  settle_hold: 10s
  countdown: false
indicator:
  driver: gpio
  pins:
    red: GPIO5
server:
  port: 9090
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.Loop.SettleHold)
	assert.False(t, c.Loop.Countdown)
	assert.Equal(t, "gpio", c.Indicator.Driver)
	assert.Equal(t, "GPIO5", c.Indicator.Pins.Red)
	assert.Equal(t, "GPIO17", c.Indicator.Pins.Blue)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 2*time.Minute, c.Loop.StaleAfter)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("IPNT_CLIENT_ID", "id-from-env")
	t.Setenv("IPNT_CLIENT_SECRET", "secret-from-env")
	t.Setenv("TRAFFICLIGHT_BASE_URL", "http://localhost:9999/api")
	t.Setenv("STATUS_PORT", "7070")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "id-from-env", c.Identity.ClientID)
	assert.Equal(t, "secret-from-env", c.Identity.ClientSecret)
	assert.Equal(t, "http://localhost:9999/api", c.Feed.BaseURL)
	assert.Equal(t, 7070, c.Server.Port)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestValidateRejectsBadValues(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	c.Indicator.Driver = "hologram"
	assert.Error(t, c.Validate())

	c.Indicator.Driver = "console"
	c.Kafka.Enabled = true
	assert.Error(t, c.Validate(), "kafka enabled without brokers")

	c.Kafka.Brokers = []string{"localhost:9092"}
	assert.NoError(t, c.Validate())

	c.Loop.DisplayTimezone = "Mars/Olympus"
	assert.Error(t, c.Validate())
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("IPNT_CLIENT_ID=from-file\nTL_TEST_ONLY=yes\n"), 0o600))

	t.Setenv("IPNT_CLIENT_ID", "from-env")
	t.Setenv("TL_TEST_ONLY", "")
	os.Unsetenv("TL_TEST_ONLY")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-env", os.Getenv("IPNT_CLIENT_ID"))
	assert.Equal(t, "yes", os.Getenv("TL_TEST_ONLY"))
}
