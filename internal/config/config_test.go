package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG_FILE", "APP_TIMEZONE", "HTTP_ADDR", "MARKET_DATA__VENDOR_URL",
		"TELEGRAM__BOT_TOKEN", "TELEGRAM__CHAT_ID",
		"SMTP__SERVER", "SMTP__USER", "SMTP__PASSWORD", "SMTP__FROM_EMAIL", "SMTP__TO_EMAIL",
		"SMTP__PORT", "SMTP__USE_SSL",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT",
		"SCANNER__SCAN_INTERVAL_SECONDS", "SCANNER__HEARTBEAT_INTERVAL_MINUTES",
		"SCANNER__EMAIL_SUMMARY_INTERVAL_HOURS", "SCANNER__RISK_PERCENTAGE",
		"SCANNER__DEFAULT_EQUITY", "SCANNER__PARALLELISM", "SCANNER__SYMBOLS__EURUSD",
	}
	for _, k := range keys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("TELEGRAM__BOT_TOKEN", "tok")
	os.Setenv("TELEGRAM__CHAT_ID", "chat")
	os.Setenv("SMTP__SERVER", "smtp.example.com")
	os.Setenv("SMTP__USER", "user")
	os.Setenv("SMTP__PASSWORD", "pass")
	os.Setenv("SMTP__PORT", "587")
	os.Setenv("POSTGRES_USER", "pguser")
	os.Setenv("POSTGRES_PASSWORD", "pgpass")
	os.Setenv("POSTGRES_DB", "pgdb")
	os.Setenv("POSTGRES_HOST", "localhost")
	os.Setenv("SCANNER__SYMBOLS__EURUSD", "EURUSD")
}

func TestLoad_MissingRequiredEnvReturnsError(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DefaultsAppliedWhenOptionalEnvAbsent(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Johannesburg", c.Timezone)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "https://api.marketdata.vendor", c.VendorBaseURL)
	assert.Equal(t, 5432, c.Database.Port)
	assert.Equal(t, map[string]string{"EURUSD": "EURUSD"}, c.Scanner.Symbols)
}

func TestLoad_YAMLOverlayFillsUnsetEnvOnly(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	// explicit env var must win over the overlay
	os.Setenv("APP_TIMEZONE", "UTC")

	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	yamlBody := "app_timezone: \"Europe/London\"\nhttp_addr: \":9090\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	os.Setenv("CONFIG_FILE", path)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "UTC", c.Timezone, "explicit env var must take precedence over the YAML overlay")
	assert.Equal(t, ":9090", c.HTTPAddr, "YAML overlay fills in values with no explicit env var")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Pass: "p", DB: "d", Host: "h", Port: 5432}
	assert.Equal(t, "postgres://u:p@h:5432/d", d.DSN())
}
