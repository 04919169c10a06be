package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Bank models native value custody for the house. Transfers are atomic: on
// any failure the balances are unchanged and the caller sees the error. The
// in-memory implementation lets tests register payee hooks that fail or
// re-enter, which is how the reentrancy and TransferFailed paths are
// exercised.
type Bank interface {
	// Transfer moves amount from one account to another. It fails with
	// ErrInsufficientFunds when the source cannot cover the amount, and
	// surfaces any payee rejection as a wrapped error with balances
	// restored.
	Transfer(from, to common.Address, amount *big.Int) error

	// BalanceOf returns the current balance of an account. The returned
	// value is a copy.
	BalanceOf(addr common.Address) *big.Int
}

// TokenRegistry is the minimal surface the auction house needs from the token
// collaborator: mint the next token into custody, transfer on settlement, and
// resolve ownership.
type TokenRegistry interface {
	// MintNext mints the next sequential token to the given address and
	// returns its id. Fails with ErrNotMinter for unauthorized callers and
	// ErrSoldOut once max supply is reached.
	MintNext(caller, to common.Address) (uint64, error)

	// Transfer moves a token between addresses. The caller must be the
	// current owner of the token.
	Transfer(caller common.Address, tokenID uint64, to common.Address) error

	// OwnerOf returns the current owner of a token, or ErrNotFound.
	OwnerOf(tokenID uint64) (common.Address, error)
}
