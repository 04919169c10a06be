package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies HAUS_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known HAUS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── House ──
	setStr(&cfg.House.Address, "HAUS_HOUSE_ADDRESS")
	setStr(&cfg.House.Owner, "HAUS_HOUSE_OWNER")
	setDuration(&cfg.House.TimeBuffer, "HAUS_HOUSE_TIME_BUFFER")
	setStr(&cfg.House.ReservePrice, "HAUS_HOUSE_RESERVE_PRICE")
	setUint64(&cfg.House.MinBidIncrementPercentage, "HAUS_HOUSE_MIN_BID_INCREMENT_PERCENTAGE")
	setDuration(&cfg.House.Duration, "HAUS_HOUSE_DURATION")
	setStr(&cfg.House.SplitRecipient, "HAUS_HOUSE_SPLIT_RECIPIENT")
	setUint64(&cfg.House.SplitPercentage, "HAUS_HOUSE_SPLIT_PERCENTAGE")
	setBool(&cfg.House.WLEnabled, "HAUS_HOUSE_WL_ENABLED")
	setUint64(&cfg.House.MaxWLWins, "HAUS_HOUSE_MAX_WL_WINS")
	setInt(&cfg.House.BidRateLimit, "HAUS_HOUSE_BID_RATE_LIMIT")

	// ── Signer ──
	setStr(&cfg.Signer.PrivateKey, "HAUS_SIGNER_PRIVATE_KEY")
	setStr(&cfg.Signer.EncryptedKeyPath, "HAUS_SIGNER_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Signer.KeyPassword, "HAUS_SIGNER_KEY_PASSWORD")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "HAUS_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "HAUS_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "HAUS_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "HAUS_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "HAUS_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "HAUS_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "HAUS_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "HAUS_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "HAUS_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "HAUS_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "HAUS_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "HAUS_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "HAUS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "HAUS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "HAUS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "HAUS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "HAUS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "HAUS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "HAUS_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "HAUS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "HAUS_S3_REGION")
	setStr(&cfg.S3.Bucket, "HAUS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "HAUS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "HAUS_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "HAUS_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setInt(&cfg.Server.Port, "HAUS_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "HAUS_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "HAUS_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "HAUS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "HAUS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "HAUS_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "HAUS_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "HAUS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
