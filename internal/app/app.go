// Package app owns the top-level application lifecycle: it wires the auction
// core (bank, token registry, house), the optional infrastructure backends,
// and the HTTP/WebSocket server, then runs everything under one errgroup
// until the context is cancelled.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/llamadao/auctionhaus/internal/bank"
	"github.com/llamadao/auctionhaus/internal/config"
	"github.com/llamadao/auctionhaus/internal/crypto"
	"github.com/llamadao/auctionhaus/internal/domain"
	"github.com/llamadao/auctionhaus/internal/house"
	"github.com/llamadao/auctionhaus/internal/server"
	"github.com/llamadao/auctionhaus/internal/server/handler"
	"github.com/llamadao/auctionhaus/internal/server/ws"
	"github.com/llamadao/auctionhaus/internal/service"
	"github.com/llamadao/auctionhaus/internal/token"
)

// shutdownGrace bounds how long in-flight HTTP requests may run after a
// shutdown signal.
const shutdownGrace = 10 * time.Second

// houseEscrowSlot derives the escrow identity when none is configured.
var houseEscrowSlot = common.HexToAddress("0x00000000000000000000000000000000000Ha05e")

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the server and the WebSocket hub, and
// blocks until the context is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting auction house",
		slog.String("log_level", a.cfg.LogLevel),
	)

	infra, cleanup, err := WireInfrastructure(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire infrastructure: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	svc, registry, err := a.buildCore(infra)
	if err != nil {
		return fmt.Errorf("app: build core: %w", err)
	}

	// WebSocket hub, only meaningful with a bus behind it.
	var hub *ws.Hub
	if infra.SignalBus != nil {
		hub = ws.NewHub(infra.SignalBus, func() (domain.Auction, domain.HouseParams) {
			return svc.CurrentAuction(), svc.Params()
		}, a.logger)
	}

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
		},
		server.Handlers{
			Health:  handler.NewHealthHandler(),
			Auction: handler.NewAuctionHandler(svc, a.logger),
			Bids:    handler.NewBidHandler(svc, a.logger),
			Returns: handler.NewReturnsHandler(svc, a.logger),
			Admin:   handler.NewAdminHandler(svc.House(), svc, a.logger),
			Token:   handler.NewTokenHandler(registry, a.logger),
		},
		hub,
		a.logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	if hub != nil {
		g.Go(func() error {
			if err := hub.Run(gctx); err != nil && err != context.Canceled {
				return fmt.Errorf("app: ws hub: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return ctx.Err()
}

// buildCore constructs the bank, token registry, claim verifier, house, and
// service from the validated configuration.
func (a *App) buildCore(infra *Infrastructure) (*service.AuctionService, *token.Registry, error) {
	owner := common.HexToAddress(a.cfg.House.Owner)

	escrow := houseEscrowSlot
	if a.cfg.House.Address != "" {
		escrow = common.HexToAddress(a.cfg.House.Address)
	}

	ledger := bank.New()

	registry, err := token.New(a.tokenConfig(owner), ledger, a.logger)
	if err != nil {
		return nil, nil, err
	}
	if err := registry.SetMinter(owner, escrow); err != nil {
		return nil, nil, err
	}

	wlSigner, err := a.wlSigner()
	if err != nil {
		return nil, nil, err
	}

	reserve, err := config.ParseWei(a.cfg.House.ReservePrice)
	if err != nil {
		return nil, nil, err
	}

	h := house.New(house.Config{
		Address:                   escrow,
		Owner:                     owner,
		TimeBuffer:                a.cfg.House.TimeBuffer.Duration,
		ReservePrice:              reserve,
		MinBidIncrementPercentage: a.cfg.House.MinBidIncrementPercentage,
		Duration:                  a.cfg.House.Duration.Duration,
		SplitRecipient:            common.HexToAddress(a.cfg.House.SplitRecipient),
		SplitPercentage:           a.cfg.House.SplitPercentage,
		WLEnabled:                 a.cfg.House.WLEnabled,
		WLSigner:                  wlSigner,
		MaxWLWins:                 a.cfg.House.MaxWLWins,
	}, ledger, registry, a.logger).WithVerifier(crypto.Verifier{})

	svc := service.NewAuctionService(h, service.Options{
		Settlements:  infra.Settlements,
		Bids:         infra.Bids,
		Withdrawals:  infra.Withdrawals,
		Bus:          infra.SignalBus,
		Limiter:      infra.RateLimiter,
		Archiver:     infra.Archiver,
		Notifier:     infra.Notifier,
		BidRateLimit: a.cfg.House.BidRateLimit,
	}, a.logger)

	return svc, registry, nil
}

// wlSigner resolves the allowlist signer address from the configured key
// material. Without key material the zero address disables signature
// admission until the owner designates a signer.
func (a *App) wlSigner() (common.Address, error) {
	kc := crypto.KeyConfig{
		RawPrivateKey:    a.cfg.Signer.PrivateKey,
		EncryptedKeyPath: a.cfg.Signer.EncryptedKeyPath,
		KeyPassword:      a.cfg.Signer.KeyPassword,
	}
	if kc.RawPrivateKey == "" && kc.EncryptedKeyPath == "" {
		return common.Address{}, nil
	}

	keyHex, err := crypto.LoadKey(kc)
	if err != nil {
		return common.Address{}, fmt.Errorf("load signer key: %w", err)
	}
	signer, err := crypto.NewSigner(keyHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("parse signer key: %w", err)
	}
	return signer.Address(), nil
}

func (a *App) tokenConfig(owner common.Address) token.Config {
	tc := token.Config{
		Name:      a.cfg.Token.Name,
		Symbol:    a.cfg.Token.Symbol,
		Owner:     owner,
		MaxSupply: a.cfg.Token.MaxSupply,
	}
	for _, addr := range a.cfg.Token.Premint {
		tc.Premint = append(tc.Premint, common.HexToAddress(addr))
	}
	if a.cfg.Token.AllowlistRoot != "" {
		tc.AllowlistRoot = common.HexToHash(a.cfg.Token.AllowlistRoot)
	}
	if a.cfg.Token.WhitelistRoot != "" {
		tc.WhitelistRoot = common.HexToHash(a.cfg.Token.WhitelistRoot)
	}
	// Prices were validated by config.Validate; parse errors cannot occur
	// here.
	tc.AllowlistPrice, _ = config.ParseWei(a.cfg.Token.AllowlistPrice)
	tc.WhitelistPrice, _ = config.ParseWei(a.cfg.Token.WhitelistPrice)
	tc.AllowlistCap = a.cfg.Token.AllowlistCap
	tc.WhitelistCap = a.cfg.Token.WhitelistCap
	return tc
}

// Close tears down all resources in reverse registration order. Safe to call
// multiple times.
func (a *App) Close() {
	a.logger.Info("shutting down auction house")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
