// Package service orchestrates the auction core with the surrounding
// infrastructure: archival stores, the signal bus, the bid rate limiter,
// cold storage, and operator notifications. Every infrastructure dependency
// is optional; the house itself never needs any of them to stay correct.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/llamadao/auctionhaus/internal/domain"
	"github.com/llamadao/auctionhaus/internal/house"
	"github.com/llamadao/auctionhaus/internal/notify"
)

// sideEffectTimeout bounds each asynchronous archival or notification call so
// a stuck backend cannot pile up goroutines forever.
const sideEffectTimeout = 10 * time.Second

// rateLimitWindow is the sliding window applied to bid submissions per
// bidder address.
const rateLimitWindow = time.Minute

// AuctionService exposes the auction house operations to the transport layer
// and fans observable state changes out to the archive, the signal bus, cold
// storage, and operator channels.
type AuctionService struct {
	house *house.House

	settlements domain.AuctionStore
	bids        domain.BidStore
	withdrawals domain.WithdrawalStore

	bus      domain.SignalBus
	limiter  domain.RateLimiter
	archiver domain.Archiver
	notifier *notify.Notifier

	bidRateLimit int
	logger       *slog.Logger
}

// Options carries the optional infrastructure dependencies. Any nil field
// simply disables that side effect.
type Options struct {
	Settlements domain.AuctionStore
	Bids        domain.BidStore
	Withdrawals domain.WithdrawalStore

	Bus      domain.SignalBus
	Limiter  domain.RateLimiter
	Archiver domain.Archiver
	Notifier *notify.Notifier

	// BidRateLimit is the number of bids one address may submit per minute.
	// Zero disables throttling.
	BidRateLimit int
}

// NewAuctionService creates the service and registers itself as the house's
// event sink.
func NewAuctionService(h *house.House, opts Options, logger *slog.Logger) *AuctionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AuctionService{
		house:        h,
		settlements:  opts.Settlements,
		bids:         opts.Bids,
		withdrawals:  opts.Withdrawals,
		bus:          opts.Bus,
		limiter:      opts.Limiter,
		archiver:     opts.Archiver,
		notifier:     opts.Notifier,
		bidRateLimit: opts.BidRateLimit,
		logger:       logger.With(slog.String("component", "auction_service")),
	}
	h.WithSink(s.handleEvent)
	return s
}

// ---------------------------------------------------------------------------
// Bidding
// ---------------------------------------------------------------------------

// PlaceBid admits a public bid after the per-bidder rate limit check.
func (s *AuctionService) PlaceBid(ctx context.Context, bidder common.Address, tokenID uint64, amount, payment *big.Int) error {
	if err := s.allowBid(ctx, bidder); err != nil {
		return err
	}
	if err := s.house.CreateBid(bidder, tokenID, amount, payment); err != nil {
		return err
	}
	s.archiveBid(bidder, tokenID, amount, false)
	return nil
}

// PlaceWLBid admits an allowlist bid carrying the signer's claim over the
// bidder.
func (s *AuctionService) PlaceWLBid(ctx context.Context, bidder common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error {
	if err := s.allowBid(ctx, bidder); err != nil {
		return err
	}
	if err := s.house.CreateWLBid(bidder, tokenID, amount, payment, sig); err != nil {
		return err
	}
	s.archiveBid(bidder, tokenID, amount, true)
	return nil
}

// PlaceFriendBid admits a bid funded by caller on behalf of friend. During
// the allowlist phase sig must cover the friend.
func (s *AuctionService) PlaceFriendBid(ctx context.Context, caller, friend common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error {
	if err := s.allowBid(ctx, caller); err != nil {
		return err
	}
	wl := s.house.IsWLEnabled()
	if err := s.house.CreateFriendBid(caller, friend, tokenID, amount, payment, sig); err != nil {
		return err
	}
	s.archiveBid(friend, tokenID, amount, wl)
	return nil
}

// allowBid applies the sliding-window rate limit keyed on the submitting
// address. A limiter outage fails open: bids are correctness-critical,
// throttling is not.
func (s *AuctionService) allowBid(ctx context.Context, caller common.Address) error {
	if s.limiter == nil || s.bidRateLimit <= 0 {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, "bid:"+caller.Hex(), s.bidRateLimit, rateLimitWindow)
	if err != nil {
		s.logger.WarnContext(ctx, "rate limiter unavailable, allowing bid",
			slog.String("bidder", caller.Hex()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

func (s *AuctionService) archiveBid(bidder common.Address, tokenID uint64, amount *big.Int, wl bool) {
	if s.bids == nil {
		return
	}
	rec := domain.Bid{
		ID:        uuid.NewString(),
		TokenID:   tokenID,
		Bidder:    bidder,
		Amount:    new(big.Int).Set(amount),
		Allowlist: wl,
		EndTime:   s.house.Auction().EndTime,
		PlacedAt:  time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.bids.Insert(ctx, rec); err != nil {
			s.logger.Warn("bid archive failed",
				slog.Uint64("token_id", rec.TokenID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// ---------------------------------------------------------------------------
// Withdrawals
// ---------------------------------------------------------------------------

// Withdraw pays the caller their pending returns and archives the refund.
func (s *AuctionService) Withdraw(ctx context.Context, caller common.Address) (*big.Int, error) {
	amount, err := s.house.Withdraw(caller)
	if err != nil {
		return nil, err
	}
	if amount.Sign() > 0 {
		s.archiveWithdrawal(domain.Withdrawal{
			ID:          uuid.NewString(),
			Bidder:      caller,
			Amount:      new(big.Int).Set(amount),
			Fee:         new(big.Int),
			WithdrawnAt: time.Now().UTC(),
		})
	}
	return amount, nil
}

// WithdrawStale force-sweeps the given bidders' unclaimed pending returns.
// Owner only.
func (s *AuctionService) WithdrawStale(ctx context.Context, caller common.Address, bidders []common.Address) ([]house.StaleSweepResult, error) {
	results, err := s.house.WithdrawStale(caller, bidders)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for _, r := range results {
		s.archiveWithdrawal(domain.Withdrawal{
			ID:          uuid.NewString(),
			Bidder:      r.Bidder,
			Amount:      new(big.Int).Set(r.Amount),
			Fee:         new(big.Int).Set(r.Fee),
			Stale:       true,
			WithdrawnAt: now,
		})
	}
	return results, nil
}

func (s *AuctionService) archiveWithdrawal(w domain.Withdrawal) {
	if s.withdrawals == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.withdrawals.Insert(ctx, w); err != nil {
			s.logger.Warn("withdrawal archive failed",
				slog.String("bidder", w.Bidder.Hex()),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// ---------------------------------------------------------------------------
// Settlement
// ---------------------------------------------------------------------------

// Settle settles the current auction without advancing. The house must be
// paused.
func (s *AuctionService) Settle(ctx context.Context, caller common.Address) (domain.SettlementOutcome, error) {
	out, err := s.house.SettleAuction(caller)
	if err != nil {
		return domain.SettlementOutcome{}, err
	}
	s.archiveSettlement(out)
	return out, nil
}

// SettleAndAdvance settles the expired auction and opens the next one.
func (s *AuctionService) SettleAndAdvance(ctx context.Context, caller common.Address) (domain.SettlementOutcome, error) {
	out, err := s.house.SettleCurrentAndCreateNewAuction(caller)
	if err != nil {
		return domain.SettlementOutcome{}, err
	}
	s.archiveSettlement(out)
	return out, nil
}

func (s *AuctionService) archiveSettlement(out domain.SettlementOutcome) {
	if s.settlements == nil && s.archiver == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if s.settlements != nil {
			if err := s.settlements.InsertSettlement(ctx, out); err != nil {
				s.logger.Warn("settlement archive failed",
					slog.Uint64("token_id", out.TokenID),
					slog.String("error", err.Error()),
				)
			}
		}
		if s.archiver != nil {
			if err := s.archiver.ArchiveSettlement(ctx, out); err != nil {
				s.logger.Warn("settlement cold archive failed",
					slog.Uint64("token_id", out.TokenID),
					slog.String("error", err.Error()),
				)
			}
		}
	}()
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

// CurrentAuction returns a copy of the live auction record.
func (s *AuctionService) CurrentAuction() domain.Auction {
	return s.house.Auction()
}

// PendingReturns returns the bidder's refundable balance.
func (s *AuctionService) PendingReturns(bidder common.Address) *big.Int {
	return s.house.PendingReturns(bidder)
}

// WLAuctionsWon returns the bidder's allowlist win count.
func (s *AuctionService) WLAuctionsWon(bidder common.Address) uint64 {
	return s.house.WLAuctionsWon(bidder)
}

// Params returns the owner-mutable house configuration.
func (s *AuctionService) Params() domain.HouseParams {
	return s.house.Params()
}

// ListSettlements returns archived settlements, most recent first. Returns
// domain.ErrNotFound when no archive is configured.
func (s *AuctionService) ListSettlements(ctx context.Context, opts domain.ListOpts) ([]domain.SettlementOutcome, error) {
	if s.settlements == nil {
		return nil, domain.ErrNotFound
	}
	out, err := s.settlements.ListSettlements(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("auction_service: list settlements: %w", err)
	}
	return out, nil
}

// GetSettlement returns the archived outcome for one token.
func (s *AuctionService) GetSettlement(ctx context.Context, tokenID uint64) (domain.SettlementOutcome, error) {
	if s.settlements == nil {
		return domain.SettlementOutcome{}, domain.ErrNotFound
	}
	return s.settlements.GetSettlement(ctx, tokenID)
}

// ListBidsByToken returns archived bids for one token.
func (s *AuctionService) ListBidsByToken(ctx context.Context, tokenID uint64, opts domain.ListOpts) ([]domain.Bid, error) {
	if s.bids == nil {
		return nil, domain.ErrNotFound
	}
	out, err := s.bids.ListByToken(ctx, tokenID, opts)
	if err != nil {
		return nil, fmt.Errorf("auction_service: list bids: %w", err)
	}
	return out, nil
}

// ListWithdrawalsByBidder returns archived refunds for one address.
func (s *AuctionService) ListWithdrawalsByBidder(ctx context.Context, bidder common.Address, opts domain.ListOpts) ([]domain.Withdrawal, error) {
	if s.withdrawals == nil {
		return nil, domain.ErrNotFound
	}
	out, err := s.withdrawals.ListByBidder(ctx, bidder, opts)
	if err != nil {
		return nil, fmt.Errorf("auction_service: list withdrawals: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Admin passthrough
// ---------------------------------------------------------------------------

// House returns the underlying state machine for the admin control surface.
// Handlers call its owner-gated setters directly; wrapping each one here
// would add nothing but indirection.
func (s *AuctionService) House() *house.House {
	return s.house
}

// ---------------------------------------------------------------------------
// Event fan-out
// ---------------------------------------------------------------------------

// handleEvent is the house's event sink. The house delivers events
// synchronously after committing state, so everything with IO hands off to a
// bounded goroutine here.
func (s *AuctionService) handleEvent(ev domain.Event) {
	payload := ev.Marshal()
	if payload == nil {
		return
	}
	channel := ev.Channel()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if s.bus != nil {
			if err := s.bus.Publish(ctx, channel, payload); err != nil {
				s.logger.Warn("event publish failed",
					slog.String("channel", channel),
					slog.String("error", err.Error()),
				)
			}
			if err := s.bus.StreamAppend(ctx, channel, payload); err != nil {
				s.logger.Warn("event stream append failed",
					slog.String("channel", channel),
					slog.String("error", err.Error()),
				)
			}
		}

		if s.notifier != nil {
			if err := s.notifier.NotifyEvent(ctx, ev); err != nil {
				s.logger.Warn("event notification failed",
					slog.String("kind", string(ev.Kind)),
					slog.String("error", err.Error()),
				)
			}
		}
	}()
}
