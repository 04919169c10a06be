package token

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamadao/auctionhaus/internal/bank"
	"github.com/llamadao/auctionhaus/internal/domain"
)

var (
	owner  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	minter = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	alice  = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	if cfg.Owner == domain.ZeroAddress {
		cfg.Owner = owner
	}
	r, err := New(cfg, bank.New(), testLogger())
	require.NoError(t, err)
	return r
}

func TestNewWithPremint(t *testing.T) {
	r := newRegistry(t, Config{
		Name:    "Llamas",
		Symbol:  "LLAMA",
		Premint: []common.Address{alice, alice, bob},
	})

	assert.Equal(t, "Llamas", r.Name())
	assert.Equal(t, "LLAMA", r.Symbol())
	assert.Equal(t, uint64(3), r.TokenCount())
	assert.Equal(t, uint64(2), r.BalanceOf(alice))
	assert.Equal(t, []uint64{0, 1}, r.TokensOf(alice))

	holder, err := r.OwnerOf(2)
	require.NoError(t, err)
	assert.Equal(t, bob, holder)
}

func TestPremintOverMaxSupply(t *testing.T) {
	_, err := New(Config{
		Owner:     owner,
		MaxSupply: 1,
		Premint:   []common.Address{alice, bob},
	}, bank.New(), testLogger())
	assert.ErrorIs(t, err, domain.ErrSoldOut)
}

func TestMintNextRequiresMinterRole(t *testing.T) {
	r := newRegistry(t, Config{})

	_, err := r.MintNext(alice, alice)
	assert.ErrorIs(t, err, domain.ErrNotMinter)

	// The owner can always mint.
	id, err := r.MintNext(owner, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	// So can a designated minter.
	require.NoError(t, r.SetMinter(owner, minter))
	id, err = r.MintNext(minter, minter)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestSetMinterRequiresOwner(t *testing.T) {
	r := newRegistry(t, Config{})
	assert.ErrorIs(t, r.SetMinter(alice, alice), domain.ErrNotOwner)
}

func TestMintNextSoldOut(t *testing.T) {
	r := newRegistry(t, Config{MaxSupply: 2})

	_, err := r.MintNext(owner, alice)
	require.NoError(t, err)
	_, err = r.MintNext(owner, alice)
	require.NoError(t, err)
	_, err = r.MintNext(owner, alice)
	assert.ErrorIs(t, err, domain.ErrSoldOut)
	assert.Equal(t, uint64(2), r.TokenCount())
}

func TestUncappedSupply(t *testing.T) {
	r := newRegistry(t, Config{})
	for i := 0; i < 25; i++ {
		_, err := r.MintNext(owner, alice)
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(25), r.TokenCount())
}

func TestAirdrop(t *testing.T) {
	r := newRegistry(t, Config{})

	require.NoError(t, r.Airdrop(owner, []common.Address{alice, bob, alice}))
	assert.Equal(t, uint64(2), r.BalanceOf(alice))
	assert.Equal(t, uint64(1), r.BalanceOf(bob))

	assert.ErrorIs(t, r.Airdrop(alice, []common.Address{alice}), domain.ErrNotOwner)
}

func TestTransfer(t *testing.T) {
	r := newRegistry(t, Config{Premint: []common.Address{alice}})

	// Only the holder may move a token.
	assert.Error(t, r.Transfer(bob, 0, bob))

	require.NoError(t, r.Transfer(alice, 0, bob))
	holder, err := r.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, bob, holder)
	assert.Equal(t, uint64(0), r.BalanceOf(alice))
	assert.Equal(t, uint64(1), r.BalanceOf(bob))
}

func TestTransferUnknownToken(t *testing.T) {
	r := newRegistry(t, Config{})
	assert.ErrorIs(t, r.Transfer(alice, 7, bob), domain.ErrNotFound)
}

func TestOwnerOfUnknownToken(t *testing.T) {
	r := newRegistry(t, Config{})
	_, err := r.OwnerOf(7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetOwner(t *testing.T) {
	r := newRegistry(t, Config{})

	assert.ErrorIs(t, r.SetOwner(alice, alice), domain.ErrNotOwner)
	assert.ErrorIs(t, r.SetOwner(owner, domain.ZeroAddress), domain.ErrInvalidOwner)

	require.NoError(t, r.SetOwner(owner, alice))
	assert.Equal(t, alice, r.Owner())
	assert.ErrorIs(t, r.SetMinter(owner, minter), domain.ErrNotOwner)
}
