package bank

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamadao/auctionhaus/internal/domain"
)

var (
	alice = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func TestMintAndTransfer(t *testing.T) {
	b := New()
	b.Mint(alice, big.NewInt(100))

	require.NoError(t, b.Transfer(alice, bob, big.NewInt(40)))
	assert.Equal(t, int64(60), b.BalanceOf(alice).Int64())
	assert.Equal(t, int64(40), b.BalanceOf(bob).Int64())
}

func TestTransferInsufficientFunds(t *testing.T) {
	b := New()
	b.Mint(alice, big.NewInt(10))

	err := b.Transfer(alice, bob, big.NewInt(11))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, int64(10), b.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), b.BalanceOf(bob).Int64())

	// Unknown sender account.
	err = b.Transfer(bob, alice, big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestTransferZeroAndNil(t *testing.T) {
	b := New()
	require.NoError(t, b.Transfer(alice, bob, nil))
	require.NoError(t, b.Transfer(alice, bob, new(big.Int)))
	assert.Error(t, b.Transfer(alice, bob, big.NewInt(-1)))
}

func TestHookRejectionRollsBack(t *testing.T) {
	b := New()
	b.Mint(alice, big.NewInt(100))
	b.SetHook(bob, func(from, to common.Address, amount *big.Int) error {
		return errors.New("no thanks")
	})

	err := b.Transfer(alice, bob, big.NewInt(100))
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.Equal(t, int64(100), b.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), b.BalanceOf(bob).Int64())
}

func TestHookSeesCreditedBalance(t *testing.T) {
	b := New()
	b.Mint(alice, big.NewInt(100))

	var seen int64
	b.SetHook(bob, func(from, to common.Address, amount *big.Int) error {
		seen = b.BalanceOf(bob).Int64()
		return nil
	})

	require.NoError(t, b.Transfer(alice, bob, big.NewInt(70)))
	assert.Equal(t, int64(70), seen)
}

// The bank lock is released around the hook, so a payee forwarding value
// onward mid-delivery must not deadlock.
func TestHookReentrantTransfer(t *testing.T) {
	b := New()
	b.Mint(alice, big.NewInt(100))
	carol := common.HexToAddress("0x0000000000000000000000000000000000000ca0")

	b.SetHook(bob, func(from, to common.Address, amount *big.Int) error {
		return b.Transfer(bob, carol, amount)
	})

	require.NoError(t, b.Transfer(alice, bob, big.NewInt(100)))
	assert.Equal(t, int64(0), b.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), b.BalanceOf(bob).Int64())
	assert.Equal(t, int64(100), b.BalanceOf(carol).Int64())
}

func TestSetHookNilRemoves(t *testing.T) {
	b := New()
	b.Mint(alice, big.NewInt(100))
	b.SetHook(bob, func(from, to common.Address, amount *big.Int) error {
		return errors.New("no thanks")
	})
	b.SetHook(bob, nil)

	require.NoError(t, b.Transfer(alice, bob, big.NewInt(100)))
	assert.Equal(t, int64(100), b.BalanceOf(bob).Int64())
}

func TestBalanceOfIsCopy(t *testing.T) {
	b := New()
	b.Mint(alice, big.NewInt(100))
	b.BalanceOf(alice).SetInt64(0)
	assert.Equal(t, int64(100), b.BalanceOf(alice).Int64())
}
