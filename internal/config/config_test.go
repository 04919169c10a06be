package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddr = "0x1111111111111111111111111111111111111111"
	splitAddr = "0x2222222222222222222222222222222222222222"
)

// validConfig returns defaults patched with the fields Validate requires.
func validConfig() Config {
	cfg := Defaults()
	cfg.House.Owner = ownerAddr
	cfg.House.SplitRecipient = splitAddr
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 5*time.Minute, cfg.House.TimeBuffer.Duration)
	assert.Equal(t, "100", cfg.House.ReservePrice)
	assert.Equal(t, uint64(5), cfg.House.MinBidIncrementPercentage)
	assert.Equal(t, 24*time.Hour, cfg.House.Duration.Duration)
	assert.Equal(t, uint64(95), cfg.House.SplitPercentage)
	assert.Equal(t, uint64(1), cfg.House.MaxWLWins)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Postgres.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.S3.Enabled)
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing owner", func(c *Config) { c.House.Owner = "" }},
		{"bad owner", func(c *Config) { c.House.Owner = "not-an-address" }},
		{"missing split recipient", func(c *Config) { c.House.SplitRecipient = "" }},
		{"bad house address", func(c *Config) { c.House.Address = "0xzz" }},
		{"split over 100", func(c *Config) { c.House.SplitPercentage = 101 }},
		{"bad reserve price", func(c *Config) { c.House.ReservePrice = "1.5" }},
		{"negative reserve price", func(c *Config) { c.House.ReservePrice = "-1" }},
		{"bad allowlist price", func(c *Config) { c.Token.AllowlistPrice = "abc" }},
		{"bad premint entry", func(c *Config) { c.Token.Premint = []string{"nope"} }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateEmptyHouseAddressAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.House.Address = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[house]
owner = "`+ownerAddr+`"
split_recipient = "`+splitAddr+`"
time_buffer = "90s"
duration = "2h"
reserve_price = "250"

[server]
port = 9999
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ownerAddr, cfg.House.Owner)
	assert.Equal(t, 90*time.Second, cfg.House.TimeBuffer.Duration)
	assert.Equal(t, 2*time.Hour, cfg.House.Duration.Duration)
	assert.Equal(t, "250", cfg.House.ReservePrice)
	assert.Equal(t, 9999, cfg.Server.Port)

	// Untouched sections keep their defaults.
	assert.Equal(t, uint64(5), cfg.House.MinBidIncrementPercentage)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[house]
owner = "`+ownerAddr+`"
split_recipient = "`+splitAddr+`"
`), 0o600))

	t.Setenv("HAUS_HOUSE_RESERVE_PRICE", "777")
	t.Setenv("HAUS_HOUSE_TIME_BUFFER", "45s")
	t.Setenv("HAUS_HOUSE_WL_ENABLED", "true")
	t.Setenv("HAUS_SERVER_PORT", "3000")
	t.Setenv("HAUS_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("HAUS_POSTGRES_ENABLED", "true")
	t.Setenv("HAUS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "777", cfg.House.ReservePrice)
	assert.Equal(t, 45*time.Second, cfg.House.TimeBuffer.Duration)
	assert.True(t, cfg.House.WLEnabled)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Postgres.Enabled)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestEnvOverrideBadValuesIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[house]
owner = "`+ownerAddr+`"
split_recipient = "`+splitAddr+`"
`), 0o600))

	t.Setenv("HAUS_SERVER_PORT", "not-a-number")
	t.Setenv("HAUS_HOUSE_TIME_BUFFER", "not-a-duration")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.House.TimeBuffer.Duration)
}

func TestParseWei(t *testing.T) {
	v, err := ParseWei("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int64())

	v, err = ParseWei("1000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", v.String())

	_, err = ParseWei("-5")
	assert.Error(t, err)
	_, err = ParseWei("1.5")
	assert.Error(t, err)
	_, err = ParseWei("0x10")
	assert.Error(t, err)
}
