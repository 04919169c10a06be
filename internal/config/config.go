// Package config defines the top-level configuration for the auction house
// daemon and provides validation helpers.
package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by HAUS_* environment variables.
type Config struct {
	House    HouseConfig    `toml:"house"`
	Token    TokenConfig    `toml:"token"`
	Signer   SignerConfig   `toml:"signer"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	LogLevel string         `toml:"log_level"`
}

// HouseConfig holds the auction house deployment parameters. Amounts are
// decimal wei strings so precision survives the TOML boundary.
type HouseConfig struct {
	Address                   string   `toml:"address"`
	Owner                     string   `toml:"owner"`
	TimeBuffer                duration `toml:"time_buffer"`
	ReservePrice              string   `toml:"reserve_price"`
	MinBidIncrementPercentage uint64   `toml:"min_bid_increment_percentage"`
	Duration                  duration `toml:"duration"`
	SplitRecipient            string   `toml:"split_recipient"`
	SplitPercentage           uint64   `toml:"split_percentage"`
	WLEnabled                 bool     `toml:"wl_enabled"`
	MaxWLWins                 uint64   `toml:"max_wl_wins"`
	BidRateLimit              int      `toml:"bid_rate_limit"`
}

// TokenConfig holds the companion collection parameters.
type TokenConfig struct {
	Name           string   `toml:"name"`
	Symbol         string   `toml:"symbol"`
	MaxSupply      uint64   `toml:"max_supply"`
	Premint        []string `toml:"premint"`
	AllowlistRoot  string   `toml:"allowlist_root"`
	WhitelistRoot  string   `toml:"whitelist_root"`
	AllowlistPrice string   `toml:"allowlist_price"`
	WhitelistPrice string   `toml:"whitelist_price"`
	AllowlistCap   uint64   `toml:"allowlist_cap"`
	WhitelistCap   uint64   `toml:"whitelist_cap"`
}

// SignerConfig holds the allowlist signer key material. Either the raw key or
// an encrypted key file; the derived address becomes the house's wl_signer.
type SignerConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// PostgresConfig holds PostgreSQL connection parameters for the archive.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the cold
// settlement archive.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration, matching the canonical
// deployment parameters of the collection.
func Defaults() Config {
	return Config{
		House: HouseConfig{
			TimeBuffer:                duration{5 * time.Minute},
			ReservePrice:              "100",
			MinBidIncrementPercentage: 5,
			Duration:                  duration{24 * time.Hour},
			SplitPercentage:           95,
			MaxWLWins:                 1,
			BidRateLimit:              10,
		},
		Token: TokenConfig{
			Name:      "LARP Collective",
			Symbol:    "LARP",
			MaxSupply: 420,
		},
		Postgres: PostgresConfig{
			SSLMode:      "disable",
			PoolMaxConns: 8,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for internal consistency. It should be
// called once after Load.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.House.Owner) {
		return fmt.Errorf("config: house.owner %q is not a valid address", c.House.Owner)
	}
	if !common.IsHexAddress(c.House.SplitRecipient) {
		return fmt.Errorf("config: house.split_recipient %q is not a valid address", c.House.SplitRecipient)
	}
	if c.House.Address != "" && !common.IsHexAddress(c.House.Address) {
		return fmt.Errorf("config: house.address %q is not a valid address", c.House.Address)
	}
	if c.House.SplitPercentage > 100 {
		return fmt.Errorf("config: house.split_percentage %d exceeds 100", c.House.SplitPercentage)
	}
	if _, err := ParseWei(c.House.ReservePrice); err != nil {
		return fmt.Errorf("config: house.reserve_price: %w", err)
	}
	for _, field := range []struct{ name, value string }{
		{"token.allowlist_price", c.Token.AllowlistPrice},
		{"token.whitelist_price", c.Token.WhitelistPrice},
	} {
		if field.value == "" {
			continue
		}
		if _, err := ParseWei(field.value); err != nil {
			return fmt.Errorf("config: %s: %w", field.name, err)
		}
	}
	for _, addr := range c.Token.Premint {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("config: token.premint entry %q is not a valid address", addr)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// ParseWei parses a decimal wei string into a big.Int. Empty strings parse
// as zero.
func ParseWei(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid wei amount %q", s)
	}
	return v, nil
}
