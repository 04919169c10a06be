package domain

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Event channels published on the signal bus and mirrored to WebSocket
// clients. External indexers subscribe to these; they are observability
// only and never correctness-bearing.
const (
	ChannelBid        = "auction:bid"
	ChannelSettled    = "auction:settled"
	ChannelCreated    = "auction:created"
	ChannelWithdrawal = "returns:withdrawn"
	ChannelParam      = "house:param"
	ChannelOwner      = "house:owner"
)

// EventKind discriminates event payloads.
type EventKind string

const (
	EventBidPlaced      EventKind = "bid_placed"
	EventAuctionSettled EventKind = "auction_settled"
	EventAuctionCreated EventKind = "auction_created"
	EventWithdrawal     EventKind = "withdrawal"
	EventParamChanged   EventKind = "param_changed"
	EventOwnerChanged   EventKind = "owner_changed"
)

// Event is the envelope published for every observable state change.
type Event struct {
	Kind      EventKind      `json:"kind"`
	TokenID   uint64         `json:"token_id,omitempty"`
	Address   common.Address `json:"address,omitempty"`
	Amount    *big.Int       `json:"amount,omitempty"`
	EndTime   time.Time      `json:"end_time,omitzero"`
	Param     string         `json:"param,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Channel returns the bus channel this event belongs on.
func (e Event) Channel() string {
	switch e.Kind {
	case EventBidPlaced:
		return ChannelBid
	case EventAuctionSettled:
		return ChannelSettled
	case EventAuctionCreated:
		return ChannelCreated
	case EventWithdrawal:
		return ChannelWithdrawal
	case EventOwnerChanged:
		return ChannelOwner
	default:
		return ChannelParam
	}
}

// Marshal encodes the event as the JSON payload placed on the bus.
func (e Event) Marshal() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return b
}
