package notify

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// NotifyEvent renders a domain event into a human-readable title and message
// and dispatches it through the event filter. Unknown kinds are dropped.
func (n *Notifier) NotifyEvent(ctx context.Context, e domain.Event) error {
	title, message, ok := formatEvent(e)
	if !ok {
		return nil
	}
	return n.Notify(ctx, string(e.Kind), title, message)
}

func formatEvent(e domain.Event) (title, message string, ok bool) {
	switch e.Kind {
	case domain.EventAuctionCreated:
		return fmt.Sprintf("Auction #%d is live", e.TokenID),
			fmt.Sprintf("Bidding closes at %s.", e.EndTime.UTC().Format(time.RFC1123)),
			true
	case domain.EventBidPlaced:
		return fmt.Sprintf("New bid on #%d", e.TokenID),
			fmt.Sprintf("%s bid %s wei. Auction ends %s.",
				e.Address.Hex(), weiText(e.Amount), e.EndTime.UTC().Format(time.RFC1123)),
			true
	case domain.EventAuctionSettled:
		if e.Address == domain.ZeroAddress {
			return fmt.Sprintf("Auction #%d settled with no bids", e.TokenID),
				"The token was returned to the house owner.",
				true
		}
		return fmt.Sprintf("Auction #%d settled", e.TokenID),
			fmt.Sprintf("Won by %s for %s wei.", e.Address.Hex(), weiText(e.Amount)),
			true
	case domain.EventWithdrawal:
		return "Pending returns withdrawn",
			fmt.Sprintf("%s withdrew %s wei.", e.Address.Hex(), weiText(e.Amount)),
			true
	case domain.EventOwnerChanged:
		return "House owner changed",
			fmt.Sprintf("New owner: %s.", e.Address.Hex()),
			true
	case domain.EventParamChanged:
		return "House parameter changed",
			fmt.Sprintf("Parameter %q was updated.", e.Param),
			true
	default:
		return "", "", false
	}
}

func weiText(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
