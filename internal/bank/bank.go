// Package bank is the in-process model of native value custody. Every
// account is a big.Int balance keyed by address; transfers are atomic and
// payees may register a hook that runs while value is being delivered, which
// is how tests simulate rejecting and reentrant recipients.
package bank

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// TransferHook observes an inbound transfer to the account it is registered
// for. Returning an error rejects the transfer; the bank rolls both balances
// back. The hook runs after the recipient balance has been credited, mirroring
// a payee's fallback executing mid-transfer.
type TransferHook func(from, to common.Address, amount *big.Int) error

// Bank implements domain.Bank with in-memory accounts.
type Bank struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
	hooks    map[common.Address]TransferHook
}

// New creates an empty Bank.
func New() *Bank {
	return &Bank{
		balances: make(map[common.Address]*big.Int),
		hooks:    make(map[common.Address]TransferHook),
	}
}

// Mint credits an account out of thin air. Test and bootstrap helper.
func (b *Bank) Mint(addr common.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(addr, amount)
}

// SetHook registers a transfer hook for addr. Passing nil removes it.
func (b *Bank) SetHook(addr common.Address, hook TransferHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hook == nil {
		delete(b.hooks, addr)
		return
	}
	b.hooks[addr] = hook
}

// Transfer moves amount from one account to another. A zero amount is a
// no-op. The payee hook, if any, runs with the hook's own reentrant calls
// free to touch the bank again: the bank lock is released around it.
func (b *Bank) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("bank: negative transfer amount %s", amount)
	}

	b.mu.Lock()
	bal, ok := b.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		b.mu.Unlock()
		return fmt.Errorf("bank: %s sending %s: %w", from.Hex(), amount, domain.ErrInsufficientFunds)
	}
	bal.Sub(bal, amount)
	b.credit(to, amount)
	hook := b.hooks[to]
	b.mu.Unlock()

	if hook != nil {
		if err := hook(from, to, amount); err != nil {
			// Payee rejected the value; undo both sides.
			b.mu.Lock()
			b.balances[to].Sub(b.balances[to], amount)
			b.credit(from, amount)
			b.mu.Unlock()
			return fmt.Errorf("bank: payee %s rejected transfer: %w", to.Hex(), domain.ErrTransferFailed)
		}
	}
	return nil
}

// BalanceOf returns a copy of the account balance.
func (b *Bank) BalanceOf(addr common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bal, ok := b.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// credit must be called with the lock held.
func (b *Bank) credit(addr common.Address, amount *big.Int) {
	if bal, ok := b.balances[addr]; ok {
		bal.Add(bal, amount)
		return
	}
	b.balances[addr] = new(big.Int).Set(amount)
}

var _ domain.Bank = (*Bank)(nil)
