// Package server hosts the HTTP + WebSocket API for the auction house.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/llamadao/auctionhaus/internal/server/handler"
	"github.com/llamadao/auctionhaus/internal/server/middleware"
	"github.com/llamadao/auctionhaus/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Auction *handler.AuctionHandler
	Bids    *handler.BidHandler
	Returns *handler.ReturnsHandler
	Admin   *handler.AdminHandler
	Token   *handler.TokenHandler
}

// Server is the headless HTTP + WebSocket API server for the auction house.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the ServeMux and
// the middleware chain (logging, CORS, auth) wired up.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Auction state and archive.
	mux.HandleFunc("GET /api/auction", handlers.Auction.GetAuction)
	mux.HandleFunc("GET /api/auction/{token_id}/bids", handlers.Auction.ListBids)
	mux.HandleFunc("GET /api/config", handlers.Auction.GetConfig)
	mux.HandleFunc("GET /api/settlements", handlers.Auction.ListSettlements)
	mux.HandleFunc("GET /api/settlements/{token_id}", handlers.Auction.GetSettlement)

	// Bidding and settlement.
	mux.HandleFunc("POST /api/auction/bid", handlers.Bids.PlaceBid)
	mux.HandleFunc("POST /api/auction/settle", handlers.Auction.Settle)
	mux.HandleFunc("POST /api/auction/settle-and-advance", handlers.Auction.SettleAndAdvance)

	// Pull-payment returns.
	mux.HandleFunc("POST /api/returns/withdraw", handlers.Returns.Withdraw)
	mux.HandleFunc("GET /api/returns/{address}", handlers.Returns.GetPendingReturns)
	mux.HandleFunc("GET /api/returns/{address}/history", handlers.Returns.ListWithdrawals)
	mux.HandleFunc("GET /api/wl-wins/{address}", handlers.Returns.GetWLWins)

	// Owner control surface.
	mux.HandleFunc("POST /api/admin/pause", handlers.Admin.Pause)
	mux.HandleFunc("POST /api/admin/unpause", handlers.Admin.Unpause)
	mux.HandleFunc("POST /api/admin/owner", handlers.Admin.SetOwner)
	mux.HandleFunc("POST /api/admin/time-buffer", handlers.Admin.SetTimeBuffer)
	mux.HandleFunc("POST /api/admin/reserve-price", handlers.Admin.SetReservePrice)
	mux.HandleFunc("POST /api/admin/min-increment", handlers.Admin.SetIncrement)
	mux.HandleFunc("POST /api/admin/duration", handlers.Admin.SetDuration)
	mux.HandleFunc("POST /api/admin/wl/enable", handlers.Admin.EnableWL)
	mux.HandleFunc("POST /api/admin/wl/disable", handlers.Admin.DisableWL)
	mux.HandleFunc("POST /api/admin/wl-signer", handlers.Admin.SetWLSigner)
	mux.HandleFunc("POST /api/admin/wl/max-wins", handlers.Admin.SetMaxWLWins)
	mux.HandleFunc("POST /api/admin/withdraw-stale", handlers.Admin.WithdrawStale)

	// Companion collection.
	mux.HandleFunc("GET /api/token/supply", handlers.Token.GetSupply)
	mux.HandleFunc("GET /api/token/{token_id}", handlers.Token.GetToken)
	mux.HandleFunc("POST /api/token/mint/allowlist", handlers.Token.AllowlistMint)
	mux.HandleFunc("POST /api/token/mint/whitelist", handlers.Token.WhitelistMint)
	mux.HandleFunc("POST /api/token/mint/allowlist/phase", handlers.Token.SetALMintPhase)
	mux.HandleFunc("POST /api/token/mint/whitelist/phase", handlers.Token.SetWLMintPhase)
	mux.HandleFunc("POST /api/token/airdrop", handlers.Token.Airdrop)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware returns middleware that sets CORS headers for the allowed
// origins. If no origins are specified, all origins are allowed.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			// Handle preflight requests.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
