package house

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// Ledger is the pending-returns ledger: refundable balances owed to outbid
// bidders, claimable via pull payment. It is not safe for concurrent use on
// its own; the house serializes access.
type Ledger struct {
	balances map[common.Address]*big.Int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[common.Address]*big.Int)}
}

// Credit adds to a bidder's refundable balance. Never fails; a zero amount is
// a no-op.
func (l *Ledger) Credit(bidder common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	if bal, ok := l.balances[bidder]; ok {
		bal.Add(bal, amount)
		return
	}
	l.balances[bidder] = new(big.Int).Set(amount)
}

// Debit consumes amount from a bidder's balance, used when a bid is funded
// partly from pending returns. Fails with ErrInsufficientPendingReturns and
// leaves the balance untouched when it cannot cover the amount.
func (l *Ledger) Debit(bidder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	bal, ok := l.balances[bidder]
	if !ok || bal.Cmp(amount) < 0 {
		return domain.ErrInsufficientPendingReturns
	}
	bal.Sub(bal, amount)
	return nil
}

// Balance returns a copy of the bidder's refundable balance.
func (l *Ledger) Balance(bidder common.Address) *big.Int {
	if bal, ok := l.balances[bidder]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Total returns the sum of all entries. Used by the fund-conservation checks.
func (l *Ledger) Total() *big.Int {
	total := new(big.Int)
	for _, bal := range l.balances {
		total.Add(total, bal)
	}
	return total
}

// Withdraw pays out the bidder's full balance from the escrow account. The
// entry is zeroed before the outbound transfer so a payee re-entering during
// delivery sees an empty balance; if the transfer fails the entry is restored
// and ErrTransferFailed surfaced. A zero balance is a silent no-op returning
// a zero amount.
func (l *Ledger) Withdraw(bank domain.Bank, escrow, bidder common.Address) (*big.Int, error) {
	bal, ok := l.balances[bidder]
	if !ok || bal.Sign() == 0 {
		return new(big.Int), nil
	}

	amount := new(big.Int).Set(bal)
	bal.SetInt64(0)

	if err := bank.Transfer(escrow, bidder, amount); err != nil {
		bal.Set(amount)
		return new(big.Int), fmt.Errorf("ledger: withdraw %s: %w", bidder.Hex(), err)
	}
	return amount, nil
}
