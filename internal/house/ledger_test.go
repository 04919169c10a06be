package house

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamadao/auctionhaus/internal/bank"
	"github.com/llamadao/auctionhaus/internal/domain"
)

func TestLedgerCreditDebit(t *testing.T) {
	l := NewLedger()

	l.Credit(alice, big.NewInt(100))
	l.Credit(alice, big.NewInt(50))
	l.Credit(bob, big.NewInt(30))
	assert.Equal(t, int64(150), l.Balance(alice).Int64())
	assert.Equal(t, int64(30), l.Balance(bob).Int64())
	assert.Equal(t, int64(180), l.Total().Int64())

	require.NoError(t, l.Debit(alice, big.NewInt(40)))
	assert.Equal(t, int64(110), l.Balance(alice).Int64())
}

func TestLedgerDebitInsufficient(t *testing.T) {
	l := NewLedger()
	l.Credit(alice, big.NewInt(10))

	err := l.Debit(alice, big.NewInt(11))
	assert.ErrorIs(t, err, domain.ErrInsufficientPendingReturns)
	assert.Equal(t, int64(10), l.Balance(alice).Int64())

	err = l.Debit(bob, big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientPendingReturns)
}

func TestLedgerZeroAndNilAmounts(t *testing.T) {
	l := NewLedger()

	l.Credit(alice, nil)
	l.Credit(alice, new(big.Int))
	assert.Equal(t, int64(0), l.Balance(alice).Int64())

	require.NoError(t, l.Debit(alice, nil))
	require.NoError(t, l.Debit(alice, new(big.Int)))
}

func TestLedgerBalanceIsCopy(t *testing.T) {
	l := NewLedger()
	l.Credit(alice, big.NewInt(100))

	l.Balance(alice).SetInt64(0)
	assert.Equal(t, int64(100), l.Balance(alice).Int64())
}

func TestLedgerWithdraw(t *testing.T) {
	b := bank.New()
	b.Mint(escrow, big.NewInt(100))
	l := NewLedger()
	l.Credit(alice, big.NewInt(100))

	amount, err := l.Withdraw(b, escrow, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount.Int64())
	assert.Equal(t, int64(100), b.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), l.Balance(alice).Int64())

	// A second withdrawal finds nothing.
	amount, err = l.Withdraw(b, escrow, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount.Int64())
}

func TestLedgerWithdrawFailureRestores(t *testing.T) {
	b := bank.New()
	b.Mint(escrow, big.NewInt(100))
	l := NewLedger()
	l.Credit(alice, big.NewInt(100))

	b.SetHook(alice, func(from, to common.Address, amount *big.Int) error {
		return errors.New("payee reverted")
	})

	_, err := l.Withdraw(b, escrow, alice)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.Equal(t, int64(100), l.Balance(alice).Int64())
	assert.Equal(t, int64(100), b.BalanceOf(escrow).Int64())
}

// A payee whose hook re-enters the ledger mid-delivery must see an already
// empty balance, so the double claim nets nothing extra.
func TestLedgerWithdrawReentrantPayee(t *testing.T) {
	b := bank.New()
	b.Mint(escrow, big.NewInt(100))
	l := NewLedger()
	l.Credit(alice, big.NewInt(100))

	var reentrant *big.Int
	b.SetHook(alice, func(from, to common.Address, amount *big.Int) error {
		b.SetHook(alice, nil) // recurse once
		got, err := l.Withdraw(b, escrow, alice)
		require.NoError(t, err)
		reentrant = got
		return nil
	})

	amount, err := l.Withdraw(b, escrow, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount.Int64())
	assert.Equal(t, int64(0), reentrant.Int64())
	assert.Equal(t, int64(100), b.BalanceOf(alice).Int64())
}
