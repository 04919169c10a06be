package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/llamadao/auctionhaus/internal/blob/s3"
	"github.com/llamadao/auctionhaus/internal/cache/redis"
	"github.com/llamadao/auctionhaus/internal/config"
	"github.com/llamadao/auctionhaus/internal/domain"
	"github.com/llamadao/auctionhaus/internal/notify"
	"github.com/llamadao/auctionhaus/internal/store/postgres"
)

// Infrastructure bundles the optional backends wired from configuration.
// Disabled backends stay nil and the service degrades gracefully.
type Infrastructure struct {
	// Archive stores.
	Settlements domain.AuctionStore
	Bids        domain.BidStore
	Withdrawals domain.WithdrawalStore

	// Bus and throttling.
	SignalBus   domain.SignalBus
	RateLimiter domain.RateLimiter

	// Cold storage.
	BlobWriter domain.BlobWriter
	Archiver   domain.Archiver

	// Operator channels.
	Notifier *notify.Notifier
}

// WireInfrastructure constructs the enabled backends from configuration and
// returns them with a cleanup function releasing resources in reverse order.
func WireInfrastructure(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infrastructure, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	infra := &Infrastructure{}

	// --- PostgreSQL archive ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		infra.Settlements = postgres.NewAuctionStore(pool)
		infra.Bids = postgres.NewBidStore(pool)
		infra.Withdrawals = postgres.NewWithdrawalStore(pool)
	}

	// --- Redis bus and rate limiter ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		infra.SignalBus = redis.NewSignalBus(redisClient)
		infra.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- S3 cold storage ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         true,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		infra.BlobWriter = s3blob.NewWriter(s3Client)
		infra.Archiver = s3blob.NewSettlementArchiver(infra.BlobWriter)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		infra.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	return infra, cleanup, nil
}
