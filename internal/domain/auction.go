// Package domain defines the core types, interfaces, and sentinel errors
// shared across the auction house. It has no dependencies on concrete
// infrastructure so every other package can import it freely.
package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the null identity. An auction with Bidder == ZeroAddress has
// received no bids yet.
var ZeroAddress = common.Address{}

// Auction is the single mutable auction record. While Settled is false and
// the clock is before EndTime, Bidder/Amount reflect the best active bid (or
// no bid yet). Once Settled flips true the record is terminal until the house
// advances to the next token.
type Auction struct {
	TokenID   uint64         `json:"token_id"`
	Bidder    common.Address `json:"bidder"`
	Amount    *big.Int       `json:"amount"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Settled   bool           `json:"settled"`
}

// Live reports whether an auction has been opened for this record. The house
// starts with a zero record before the first unpause.
func (a Auction) Live() bool {
	return !a.StartTime.IsZero()
}

// HasBid reports whether at least one bid has been admitted.
func (a Auction) HasBid() bool {
	return a.Bidder != ZeroAddress
}

// Clone returns a deep copy so read views never alias the live record.
func (a Auction) Clone() Auction {
	out := a
	if a.Amount != nil {
		out.Amount = new(big.Int).Set(a.Amount)
	}
	return out
}

// HouseParams is the owner-mutable configuration of the house, exposed by the
// read-only config endpoint.
type HouseParams struct {
	Owner                     common.Address `json:"owner"`
	TimeBuffer                time.Duration  `json:"time_buffer"`
	ReservePrice              *big.Int       `json:"reserve_price"`
	MinBidIncrementPercentage uint64         `json:"min_bid_increment_percentage"`
	Duration                  time.Duration  `json:"duration"`
	SplitRecipient            common.Address `json:"split_recipient"`
	SplitPercentage           uint64         `json:"split_percentage"`
	Paused                    bool           `json:"paused"`
	WLEnabled                 bool           `json:"wl_enabled"`
	WLSigner                  common.Address `json:"wl_signer"`
	MaxWLWins                 uint64         `json:"max_wl_wins"`
}

// SettlementOutcome describes how one auction resolved. Unsold auctions have
// Winner == ZeroAddress and a zero Amount; the token goes back to the owner.
type SettlementOutcome struct {
	TokenID     uint64         `json:"token_id"`
	Winner      common.Address `json:"winner"`
	Amount      *big.Int       `json:"amount"`
	OwnerPayout *big.Int       `json:"owner_payout"`
	SplitPayout *big.Int       `json:"split_payout"`
	SettledAt   time.Time      `json:"settled_at"`
}

// Bid is the archival record of one admitted bid.
type Bid struct {
	ID        string         `json:"id"`
	TokenID   uint64         `json:"token_id"`
	Bidder    common.Address `json:"bidder"`
	Amount    *big.Int       `json:"amount"`
	Allowlist bool           `json:"allowlist"`
	EndTime   time.Time      `json:"end_time"`
	PlacedAt  time.Time      `json:"placed_at"`
}

// Withdrawal is the archival record of a pull-payment refund. Stale marks
// owner-forced sweeps, which carry a fee.
type Withdrawal struct {
	ID          string         `json:"id"`
	Bidder      common.Address `json:"bidder"`
	Amount      *big.Int       `json:"amount"`
	Fee         *big.Int       `json:"fee"`
	Stale       bool           `json:"stale"`
	WithdrawnAt time.Time      `json:"withdrawn_at"`
}
