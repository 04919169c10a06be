package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// ListOpts carries standard pagination parameters for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// AuctionStore archives settlement outcomes for indexers and the read API.
type AuctionStore interface {
	InsertSettlement(ctx context.Context, out SettlementOutcome) error
	ListSettlements(ctx context.Context, opts ListOpts) ([]SettlementOutcome, error)
	GetSettlement(ctx context.Context, tokenID uint64) (SettlementOutcome, error)
}

// BidStore archives every admitted bid.
type BidStore interface {
	Insert(ctx context.Context, bid Bid) error
	ListByToken(ctx context.Context, tokenID uint64, opts ListOpts) ([]Bid, error)
	ListByBidder(ctx context.Context, bidder common.Address, opts ListOpts) ([]Bid, error)
}

// WithdrawalStore archives pull-payment refunds, including stale sweeps.
type WithdrawalStore interface {
	Insert(ctx context.Context, w Withdrawal) error
	ListByBidder(ctx context.Context, bidder common.Address, opts ListOpts) ([]Withdrawal, error)
}
