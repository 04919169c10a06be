// Package house implements the auction state machine: one mutable auction
// record that progresses through bidding, anti-snipe extension, and
// settlement, custodying competing bidders' funds and refunding losers
// through a pull-payment ledger.
//
// Every public operation runs to completion as a single atomic unit under
// the house mutex, with caller identity passed explicitly. Outbound value
// transfers happen only after the house's own bookkeeping is committed.
package house

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// Bounds on the owner-mutable parameters. Setters reject values outside
// these ranges and leave state unchanged.
const (
	minIncrementPct = 2
	maxIncrementPct = 15

	minDuration = 3600 * time.Second   // 1 hour
	maxDuration = 259200 * time.Second // 3 days
)

// staleFeePct is the owner's cut when force-sweeping a bidder's unclaimed
// pending returns.
const staleFeePct = 5

// Config is the immutable deployment configuration plus the initial values of
// the owner-mutable parameters.
type Config struct {
	// Address is the escrow account the house custodies funds under.
	Address common.Address
	Owner   common.Address

	TimeBuffer                time.Duration
	ReservePrice              *big.Int
	MinBidIncrementPercentage uint64
	Duration                  time.Duration

	SplitRecipient  common.Address
	SplitPercentage uint64

	WLEnabled bool
	WLSigner  common.Address
	MaxWLWins uint64
}

// House owns the auction record, the pending-returns ledger, and the
// owner-mutable parameters. It is constructed paused; Unpause opens the
// first auction.
type House struct {
	mu sync.Mutex

	addr   common.Address
	owner  common.Address
	paused bool

	timeBuffer   time.Duration
	reservePrice *big.Int
	incrementPct uint64
	duration     time.Duration

	splitRecipient common.Address
	splitPct       uint64

	wlEnabled bool
	wlSigner  common.Address
	maxWLWins uint64
	wlWins    map[common.Address]uint64

	auction domain.Auction
	ledger  *Ledger

	bank     domain.Bank
	tokens   domain.TokenRegistry
	verifier ClaimVerifier

	now    func() time.Time
	sink   func(domain.Event)
	logger *slog.Logger
}

// New creates a paused House.
func New(cfg Config, bank domain.Bank, tokens domain.TokenRegistry, logger *slog.Logger) *House {
	if logger == nil {
		logger = slog.Default()
	}
	reserve := cfg.ReservePrice
	if reserve == nil {
		reserve = new(big.Int)
	}
	return &House{
		addr:           cfg.Address,
		owner:          cfg.Owner,
		paused:         true,
		timeBuffer:     cfg.TimeBuffer,
		reservePrice:   new(big.Int).Set(reserve),
		incrementPct:   cfg.MinBidIncrementPercentage,
		duration:       cfg.Duration,
		splitRecipient: cfg.SplitRecipient,
		splitPct:       cfg.SplitPercentage,
		wlEnabled:      cfg.WLEnabled,
		wlSigner:       cfg.WLSigner,
		maxWLWins:      cfg.MaxWLWins,
		wlWins:         make(map[common.Address]uint64),
		ledger:         NewLedger(),
		bank:           bank,
		tokens:         tokens,
		now:            time.Now,
		logger:         logger.With(slog.String("component", "house")),
	}
}

// WithClock overrides the clock. Tests drive expiry and the anti-snipe
// window through this.
func (h *House) WithClock(now func() time.Time) *House {
	h.now = now
	return h
}

// WithVerifier attaches the claim verifier used by the allowlist gate.
func (h *House) WithVerifier(v ClaimVerifier) *House {
	h.verifier = v
	return h
}

// WithSink attaches the observer for emitted events. Events are delivered
// synchronously after the operation's state change is committed; sinks that
// perform IO should hand off to their own goroutines.
func (h *House) WithSink(sink func(domain.Event)) *House {
	h.sink = sink
	return h
}

func (h *House) emit(events ...domain.Event) {
	if h.sink == nil {
		return
	}
	for _, ev := range events {
		h.sink(ev)
	}
}

func (h *House) event(kind domain.EventKind) domain.Event {
	return domain.Event{Kind: kind, Timestamp: h.now()}
}

// gate returns the active eligibility policy for the given bid flavor.
func (h *House) gate(wl bool) (EligibilityGate, error) {
	if wl {
		if !h.wlEnabled {
			return nil, domain.ErrWLNotEnabled
		}
		return allowlistGate{verifier: h.verifier, signer: h.wlSigner, maxWins: h.maxWLWins}, nil
	}
	if h.wlEnabled {
		// Exclusive phase: plain bids are shut out until the gate is
		// disabled.
		return nil, domain.ErrWLOnly
	}
	return publicGate{}, nil
}

// ---------------------------------------------------------------------------
// Bidding
// ---------------------------------------------------------------------------

// CreateBid admits a public bid. The caller is the bidder of record and funds
// the bid with payment plus, when payment < amount, their pending returns.
func (h *House) CreateBid(caller common.Address, tokenID uint64, amount, payment *big.Int) error {
	return h.placeBid(caller, caller, tokenID, amount, payment, nil, false)
}

// CreateWLBid admits a bid during the allowlist phase. The signature must be
// a claim over the phase tag and the bidder, produced by the designated
// signer.
func (h *House) CreateWLBid(caller common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error {
	return h.placeBid(caller, caller, tokenID, amount, payment, sig, true)
}

// CreateFriendBid admits a bid on behalf of another address: the caller
// supplies the funds (payment plus the caller's own pending returns) while
// the friend becomes the bidder of record and, on settlement, receives the
// token. During the allowlist phase the signature must cover the friend.
func (h *House) CreateFriendBid(caller, friend common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error {
	wl := h.IsWLEnabled()
	return h.placeBid(caller, friend, tokenID, amount, payment, sig, wl)
}

func (h *House) placeBid(payer, bidder common.Address, tokenID uint64, amount, payment *big.Int, sig []byte, wl bool) error {
	if amount == nil || payment == nil {
		return domain.ErrIncorrectPayment
	}

	h.mu.Lock()
	ev, err := h.placeBidLocked(payer, bidder, tokenID, amount, payment, sig, wl)
	h.mu.Unlock()

	if err != nil {
		return err
	}
	h.emit(ev)
	return nil
}

func (h *House) placeBidLocked(payer, bidder common.Address, tokenID uint64, amount, payment *big.Int, sig []byte, wl bool) (domain.Event, error) {
	if !h.auction.Live() {
		return domain.Event{}, domain.ErrNoAuction
	}
	if tokenID != h.auction.TokenID {
		return domain.Event{}, domain.ErrWrongToken
	}

	now := h.now()
	if !now.Before(h.auction.EndTime) {
		return domain.Event{}, domain.ErrAuctionExpired
	}

	gate, err := h.gate(wl)
	if err != nil {
		return domain.Event{}, err
	}
	if err := gate.Admit(bidder, sig, h.wlWins[bidder]); err != nil {
		return domain.Event{}, err
	}

	if h.auction.HasBid() {
		// new >= old + old*pct/100, integer arithmetic.
		min := new(big.Int).Mul(h.auction.Amount, new(big.Int).SetUint64(h.incrementPct))
		min.Div(min, big.NewInt(100))
		min.Add(min, h.auction.Amount)
		if amount.Cmp(min) < 0 {
			return domain.Event{}, domain.ErrBidTooLow
		}
	} else if amount.Cmp(h.reservePrice) < 0 {
		return domain.Event{}, domain.ErrReserveNotMet
	}

	// Funding: the shortfall between the bid and the freshly supplied value
	// must be covered by the payer's pending returns.
	if payment.Cmp(amount) > 0 {
		return domain.Event{}, domain.ErrIncorrectPayment
	}
	missing := new(big.Int).Sub(amount, payment)
	if missing.Cmp(h.ledger.Balance(payer)) > 0 {
		return domain.Event{}, domain.ErrInsufficientPendingReturns
	}

	// Single external interaction: pull the new value into escrow. Everything
	// after this point is in-memory and cannot fail, so the operation stays
	// atomic.
	if payment.Sign() > 0 {
		if err := h.bank.Transfer(payer, h.addr, payment); err != nil {
			return domain.Event{}, fmt.Errorf("house: collect payment: %w", err)
		}
	}
	if err := h.ledger.Debit(payer, missing); err != nil {
		// Unreachable: balance was checked above and the ledger is only
		// mutated under the house lock.
		return domain.Event{}, err
	}

	if h.auction.HasBid() {
		h.ledger.Credit(h.auction.Bidder, h.auction.Amount)
	}
	h.auction.Bidder = bidder
	h.auction.Amount = new(big.Int).Set(amount)

	extended := h.auction.EndTime.Sub(now) < h.timeBuffer
	if extended {
		h.auction.EndTime = now.Add(h.timeBuffer)
	}

	h.logger.Info("bid placed",
		slog.Uint64("token_id", tokenID),
		slog.String("bidder", bidder.Hex()),
		slog.String("amount", amount.String()),
		slog.Bool("extended", extended),
	)

	ev := h.event(domain.EventBidPlaced)
	ev.TokenID = tokenID
	ev.Address = bidder
	ev.Amount = new(big.Int).Set(amount)
	ev.EndTime = h.auction.EndTime
	return ev, nil
}

// ---------------------------------------------------------------------------
// Withdrawals
// ---------------------------------------------------------------------------

// Withdraw pays the caller their full pending-returns balance. A zero balance
// is a no-op, not an error. On transfer failure the balance is restored and
// ErrTransferFailed surfaced.
func (h *House) Withdraw(caller common.Address) (*big.Int, error) {
	h.mu.Lock()
	amount, err := h.ledger.Withdraw(h.bank, h.addr, caller)
	h.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if amount.Sign() > 0 {
		ev := h.event(domain.EventWithdrawal)
		ev.Address = caller
		ev.Amount = new(big.Int).Set(amount)
		h.emit(ev)
	}
	return amount, nil
}

// StaleSweepResult reports one bidder's share of a forced sweep.
type StaleSweepResult struct {
	Bidder common.Address
	Amount *big.Int // paid to the bidder, after the fee
	Fee    *big.Int // paid to the owner
}

// WithdrawStale is the owner-only sweep of long-unclaimed pending returns.
// Each nonzero entry is zeroed and paid out minus a 5% fee kept by the owner;
// zero entries are silently skipped. Individual transfer failures are logged
// and skipped rather than aborting the sweep, and the entry stays zeroed
// either way.
func (h *House) WithdrawStale(caller common.Address, bidders []common.Address) ([]StaleSweepResult, error) {
	h.mu.Lock()
	results, events, err := h.withdrawStaleLocked(caller, bidders)
	h.mu.Unlock()

	if err != nil {
		return nil, err
	}
	h.emit(events...)
	return results, nil
}

func (h *House) withdrawStaleLocked(caller common.Address, bidders []common.Address) ([]StaleSweepResult, []domain.Event, error) {
	if caller != h.owner {
		return nil, nil, domain.ErrNotOwner
	}

	var (
		results []StaleSweepResult
		events  []domain.Event
	)
	for _, bidder := range bidders {
		bal := h.ledger.Balance(bidder)
		if bal.Sign() == 0 {
			continue
		}

		// The entry is cleared up front: the sweep exists to retire stale
		// liabilities, so it does not come back even if the payout bounces.
		if err := h.ledger.Debit(bidder, bal); err != nil {
			return nil, nil, err
		}

		fee := new(big.Int).Mul(bal, big.NewInt(staleFeePct))
		fee.Div(fee, big.NewInt(100))
		payout := new(big.Int).Sub(bal, fee)

		if err := h.bank.Transfer(h.addr, bidder, payout); err != nil {
			h.logger.Warn("stale sweep payout failed, skipping bidder",
				slog.String("bidder", bidder.Hex()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := h.bank.Transfer(h.addr, h.owner, fee); err != nil {
			h.logger.Warn("stale sweep fee transfer failed",
				slog.String("error", err.Error()),
			)
		}

		results = append(results, StaleSweepResult{Bidder: bidder, Amount: payout, Fee: fee})

		ev := h.event(domain.EventWithdrawal)
		ev.Address = bidder
		ev.Amount = new(big.Int).Set(payout)
		events = append(events, ev)
	}
	return results, events, nil
}

// ---------------------------------------------------------------------------
// Settlement
// ---------------------------------------------------------------------------

// SettleAuction settles the current auction without opening a new one. It is
// only permitted while the house is paused, so the owner cannot silently cut
// an active auction short for bidders.
func (h *House) SettleAuction(caller common.Address) (domain.SettlementOutcome, error) {
	h.mu.Lock()
	var (
		out domain.SettlementOutcome
		evs []domain.Event
		err error
	)
	if !h.paused {
		err = domain.ErrNotPaused
	} else {
		out, evs, err = h.settleLocked()
	}
	h.mu.Unlock()

	if err != nil {
		return domain.SettlementOutcome{}, err
	}
	h.emit(evs...)
	return out, nil
}

// SettleCurrentAndCreateNewAuction settles the expired auction and advances
// to the next token with a fresh end time. It refuses to run while paused;
// settlement still happens through SettleAuction in that case, it just does
// not auto-advance.
func (h *House) SettleCurrentAndCreateNewAuction(caller common.Address) (domain.SettlementOutcome, error) {
	h.mu.Lock()
	var (
		out domain.SettlementOutcome
		evs []domain.Event
		err error
	)
	switch {
	case h.paused:
		err = domain.ErrPaused
	case h.auction.Live() && h.now().Before(h.auction.EndTime):
		err = domain.ErrNotExpired
	default:
		out, evs, err = h.settleLocked()
		if err == nil {
			var createEv domain.Event
			createEv, err = h.createAuctionLocked()
			if err == nil {
				evs = append(evs, createEv)
			}
		}
	}
	h.mu.Unlock()

	if err != nil {
		return domain.SettlementOutcome{}, err
	}
	h.emit(evs...)
	return out, nil
}

// settleLocked marks the auction settled, transfers the token, and splits the
// proceeds. Payouts are atomic: if any outbound transfer fails the whole
// settlement is rolled back, since a transferred token with an unpaid owner
// is an inconsistent end state.
func (h *House) settleLocked() (domain.SettlementOutcome, []domain.Event, error) {
	if !h.auction.Live() {
		return domain.SettlementOutcome{}, nil, domain.ErrNoAuction
	}
	if h.auction.Settled {
		return domain.SettlementOutcome{}, nil, domain.ErrAlreadySettled
	}

	h.auction.Settled = true

	out := domain.SettlementOutcome{
		TokenID:     h.auction.TokenID,
		Winner:      h.auction.Bidder,
		Amount:      new(big.Int),
		OwnerPayout: new(big.Int),
		SplitPayout: new(big.Int),
		SettledAt:   h.now(),
	}

	if !h.auction.HasBid() {
		// Unsold: reclaim the token, no funds move.
		if err := h.tokens.Transfer(h.addr, h.auction.TokenID, h.owner); err != nil {
			h.auction.Settled = false
			return domain.SettlementOutcome{}, nil, fmt.Errorf("house: reclaim token %d: %w", h.auction.TokenID, err)
		}
	} else {
		out.Amount.Set(h.auction.Amount)
		out.SplitPayout.Mul(h.auction.Amount, new(big.Int).SetUint64(h.splitPct))
		out.SplitPayout.Div(out.SplitPayout, big.NewInt(100))
		out.OwnerPayout.Sub(h.auction.Amount, out.SplitPayout)

		if err := h.tokens.Transfer(h.addr, h.auction.TokenID, h.auction.Bidder); err != nil {
			h.auction.Settled = false
			return domain.SettlementOutcome{}, nil, fmt.Errorf("house: transfer token %d: %w", h.auction.TokenID, err)
		}
		if err := h.payoutLocked(out); err != nil {
			// Undo the token transfer so the record stays consistent.
			_ = h.tokens.Transfer(h.auction.Bidder, h.auction.TokenID, h.addr)
			h.auction.Settled = false
			return domain.SettlementOutcome{}, nil, err
		}

		if h.wlEnabled {
			h.wlWins[h.auction.Bidder]++
		}
	}

	h.logger.Info("auction settled",
		slog.Uint64("token_id", out.TokenID),
		slog.String("winner", out.Winner.Hex()),
		slog.String("amount", out.Amount.String()),
	)

	ev := h.event(domain.EventAuctionSettled)
	ev.TokenID = out.TokenID
	ev.Address = out.Winner
	ev.Amount = new(big.Int).Set(out.Amount)
	return out, []domain.Event{ev}, nil
}

// payoutLocked performs the two proceeds transfers atomically: if the second
// fails, the first is compensated before returning.
func (h *House) payoutLocked(out domain.SettlementOutcome) error {
	if err := h.bank.Transfer(h.addr, h.splitRecipient, out.SplitPayout); err != nil {
		return fmt.Errorf("house: split payout: %w", err)
	}
	if err := h.bank.Transfer(h.addr, h.owner, out.OwnerPayout); err != nil {
		if cErr := h.bank.Transfer(h.splitRecipient, h.addr, out.SplitPayout); cErr != nil {
			h.logger.Error("payout compensation failed, escrow inconsistent",
				slog.String("error", cErr.Error()),
			)
		}
		return fmt.Errorf("house: owner payout: %w", err)
	}
	return nil
}

// createAuctionLocked mints the next token into escrow and opens a fresh
// auction for it.
func (h *House) createAuctionLocked() (domain.Event, error) {
	tokenID, err := h.tokens.MintNext(h.addr, h.addr)
	if err != nil {
		// Supply exhausted or minter misconfigured: park the house so a
		// human can intervene.
		h.paused = true
		return domain.Event{}, fmt.Errorf("house: mint next token: %w", err)
	}

	now := h.now()
	h.auction = domain.Auction{
		TokenID:   tokenID,
		Amount:    new(big.Int),
		StartTime: now,
		EndTime:   now.Add(h.duration),
	}

	h.logger.Info("auction created",
		slog.Uint64("token_id", tokenID),
		slog.Time("end_time", h.auction.EndTime),
	)

	ev := h.event(domain.EventAuctionCreated)
	ev.TokenID = tokenID
	ev.EndTime = h.auction.EndTime
	return ev, nil
}

// ---------------------------------------------------------------------------
// Admin control surface
// ---------------------------------------------------------------------------

func (h *House) requireOwner(caller common.Address) error {
	if caller != h.owner {
		return domain.ErrNotOwner
	}
	return nil
}

// Pause stops auction creation and the settle-and-advance path. The live
// auction keeps accepting bids until it expires.
func (h *House) Pause(caller common.Address) error {
	h.mu.Lock()
	err := h.requireOwner(caller)
	if err == nil {
		h.paused = true
	}
	h.mu.Unlock()

	if err != nil {
		return err
	}
	h.emitParam("paused")
	return nil
}

// Unpause resumes operation. If no auction is live, or the previous one has
// settled, the next auction is opened immediately.
func (h *House) Unpause(caller common.Address) error {
	h.mu.Lock()
	var evs []domain.Event
	err := h.requireOwner(caller)
	if err == nil {
		h.paused = false
		if !h.auction.Live() || h.auction.Settled {
			var createEv domain.Event
			createEv, err = h.createAuctionLocked()
			if err == nil {
				evs = append(evs, createEv)
			}
		}
	}
	h.mu.Unlock()

	if err != nil {
		return err
	}
	h.emitParam("paused")
	h.emit(evs...)
	return nil
}

// SetOwner transfers ownership immediately and atomically. The zero address
// is rejected.
func (h *House) SetOwner(caller, newOwner common.Address) error {
	h.mu.Lock()
	err := h.requireOwner(caller)
	if err == nil && newOwner == domain.ZeroAddress {
		err = domain.ErrInvalidOwner
	}
	if err == nil {
		h.owner = newOwner
	}
	h.mu.Unlock()

	if err != nil {
		return err
	}
	ev := h.event(domain.EventOwnerChanged)
	ev.Address = newOwner
	h.emit(ev)
	return nil
}

// SetTimeBuffer updates the anti-snipe window.
func (h *House) SetTimeBuffer(caller common.Address, d time.Duration) error {
	return h.setParam(caller, "time_buffer", func() error {
		h.timeBuffer = d
		return nil
	})
}

// SetReservePrice updates the minimum first bid.
func (h *House) SetReservePrice(caller common.Address, price *big.Int) error {
	return h.setParam(caller, "reserve_price", func() error {
		if price == nil || price.Sign() < 0 {
			return domain.ErrOutOfRange
		}
		h.reservePrice = new(big.Int).Set(price)
		return nil
	})
}

// SetMinBidIncrementPercentage updates the outbid increment. Bounded to
// [2, 15].
func (h *House) SetMinBidIncrementPercentage(caller common.Address, pct uint64) error {
	return h.setParam(caller, "min_bid_increment_percentage", func() error {
		if pct < minIncrementPct || pct > maxIncrementPct {
			return domain.ErrOutOfRange
		}
		h.incrementPct = pct
		return nil
	})
}

// SetDuration updates the length of future auctions. Bounded to
// [1 hour, 3 days]. The live auction's end time is unaffected.
func (h *House) SetDuration(caller common.Address, d time.Duration) error {
	return h.setParam(caller, "duration", func() error {
		if d < minDuration || d > maxDuration {
			return domain.ErrOutOfRange
		}
		h.duration = d
		return nil
	})
}

// EnableWL switches bidding to the allowlist gate for subsequent bids.
func (h *House) EnableWL(caller common.Address) error {
	return h.setParam(caller, "wl_enabled", func() error {
		h.wlEnabled = true
		return nil
	})
}

// DisableWL returns bidding to the public gate. An already-admitted high bid
// is not invalidated.
func (h *House) DisableWL(caller common.Address) error {
	return h.setParam(caller, "wl_enabled", func() error {
		h.wlEnabled = false
		return nil
	})
}

// SetWLSigner designates the address whose signatures admit allowlist bids.
func (h *House) SetWLSigner(caller, signer common.Address) error {
	return h.setParam(caller, "wl_signer", func() error {
		if signer == domain.ZeroAddress {
			return domain.ErrOutOfRange
		}
		h.wlSigner = signer
		return nil
	})
}

// SetMaxWLWins caps how many allowlist auctions one bidder may win. Zero
// disables the cap.
func (h *House) SetMaxWLWins(caller common.Address, max uint64) error {
	return h.setParam(caller, "max_wl_wins", func() error {
		h.maxWLWins = max
		return nil
	})
}

func (h *House) setParam(caller common.Address, name string, apply func() error) error {
	h.mu.Lock()
	err := h.requireOwner(caller)
	if err == nil {
		err = apply()
	}
	h.mu.Unlock()

	if err != nil {
		return err
	}
	h.emitParam(name)
	return nil
}

func (h *House) emitParam(name string) {
	ev := h.event(domain.EventParamChanged)
	ev.Param = name
	h.emit(ev)
}

// ---------------------------------------------------------------------------
// Read views
// ---------------------------------------------------------------------------

// Auction returns a copy of the current auction record.
func (h *House) Auction() domain.Auction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.auction.Clone()
}

// PendingReturns returns the bidder's refundable balance.
func (h *House) PendingReturns(bidder common.Address) *big.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ledger.Balance(bidder)
}

// WLAuctionsWon returns the bidder's allowlist win count.
func (h *House) WLAuctionsWon(bidder common.Address) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wlWins[bidder]
}

// Paused reports whether the house is paused.
func (h *House) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

// IsWLEnabled reports whether the allowlist gate is active.
func (h *House) IsWLEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wlEnabled
}

// Owner returns the current owner.
func (h *House) Owner() common.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.owner
}

// Params returns a snapshot of the owner-mutable configuration.
func (h *House) Params() domain.HouseParams {
	h.mu.Lock()
	defer h.mu.Unlock()
	return domain.HouseParams{
		Owner:                     h.owner,
		TimeBuffer:                h.timeBuffer,
		ReservePrice:              new(big.Int).Set(h.reservePrice),
		MinBidIncrementPercentage: h.incrementPct,
		Duration:                  h.duration,
		SplitRecipient:            h.splitRecipient,
		SplitPercentage:           h.splitPct,
		Paused:                    h.paused,
		WLEnabled:                 h.wlEnabled,
		WLSigner:                  h.wlSigner,
		MaxWLWins:                 h.maxWLWins,
	}
}

// PendingTotal returns the sum of all pending-returns entries plus the live
// escrowed high bid. Used by fund-conservation checks.
func (h *House) PendingTotal() *big.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := h.ledger.Total()
	if h.auction.Live() && !h.auction.Settled && h.auction.HasBid() {
		total.Add(total, h.auction.Amount)
	}
	return total
}
