package house

import (
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamadao/auctionhaus/internal/bank"
	"github.com/llamadao/auctionhaus/internal/crypto"
	"github.com/llamadao/auctionhaus/internal/domain"
	"github.com/llamadao/auctionhaus/internal/token"
)

var (
	owner  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	escrow = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	split  = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	alice  = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol  = common.HexToAddress("0x0000000000000000000000000000000000000ca0")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires a bank, a small collection, and a house with the deployment
// parameters the rest of the tests assume: reserve 100, increment 5%, 100s
// anti-snipe buffer, 95% split.
type fixture struct {
	t      *testing.T
	bank   *bank.Bank
	tokens *token.Registry
	house  *House
	signer *crypto.Signer
	now    time.Time
	events []domain.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := bank.New()
	reg, err := token.New(token.Config{
		Name:      "Llamas",
		Symbol:    "LLAMA",
		Owner:     owner,
		MaxSupply: 20,
	}, b, testLogger())
	require.NoError(t, err)
	require.NoError(t, reg.SetMinter(owner, escrow))

	signer, err := crypto.GenerateSigner()
	require.NoError(t, err)

	f := &fixture{
		t:      t,
		bank:   b,
		tokens: reg,
		signer: signer,
		now:    time.Unix(1_700_000_000, 0),
	}
	f.house = New(Config{
		Address:                   escrow,
		Owner:                     owner,
		TimeBuffer:                100 * time.Second,
		ReservePrice:              big.NewInt(100),
		MinBidIncrementPercentage: 5,
		Duration:                  2 * time.Hour,
		SplitRecipient:            split,
		SplitPercentage:           95,
		WLSigner:                  signer.Address(),
		MaxWLWins:                 1,
	}, b, reg, testLogger()).
		WithClock(func() time.Time { return f.now }).
		WithVerifier(crypto.Verifier{}).
		WithSink(func(ev domain.Event) { f.events = append(f.events, ev) })
	return f
}

func (f *fixture) open() {
	f.t.Helper()
	require.NoError(f.t, f.house.Unpause(owner))
}

func (f *fixture) fund(addr common.Address, amount int64) {
	f.bank.Mint(addr, big.NewInt(amount))
}

// bid places a fully self-funded bid on the live token.
func (f *fixture) bid(bidder common.Address, amount int64) error {
	f.fund(bidder, amount)
	return f.house.CreateBid(bidder, f.house.Auction().TokenID, big.NewInt(amount), big.NewInt(amount))
}

func (f *fixture) expire() {
	f.now = f.house.Auction().EndTime.Add(time.Second)
}

func (f *fixture) wlSig(bidder common.Address) []byte {
	f.t.Helper()
	sig, err := f.signer.SignBidClaim(WLPhaseTag, bidder)
	require.NoError(f.t, err)
	return sig
}

func (f *fixture) balance(addr common.Address) int64 {
	return f.bank.BalanceOf(addr).Int64()
}

func (f *fixture) pending(addr common.Address) int64 {
	return f.house.PendingReturns(addr).Int64()
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestHouseStartsPaused(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.house.Paused())
	assert.False(t, f.house.Auction().Live())

	f.fund(alice, 100)
	err := f.house.CreateBid(alice, 0, big.NewInt(100), big.NewInt(100))
	assert.ErrorIs(t, err, domain.ErrNoAuction)
}

func TestUnpauseOpensFirstAuction(t *testing.T) {
	f := newFixture(t)
	f.open()

	a := f.house.Auction()
	assert.False(t, f.house.Paused())
	assert.True(t, a.Live())
	assert.False(t, a.Settled)
	assert.Equal(t, uint64(0), a.TokenID)
	assert.Equal(t, f.now, a.StartTime)
	assert.Equal(t, f.now.Add(2*time.Hour), a.EndTime)

	holder, err := f.tokens.OwnerOf(a.TokenID)
	require.NoError(t, err)
	assert.Equal(t, escrow, holder)
}

func TestUnpauseNotOwner(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.house.Unpause(alice), domain.ErrNotOwner)
	assert.True(t, f.house.Paused())
}

func TestPauseKeepsLiveAuctionBiddable(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.Pause(owner))

	assert.True(t, f.house.Paused())
	require.NoError(t, f.bid(alice, 100))
	assert.Equal(t, alice, f.house.Auction().Bidder)
}

// ---------------------------------------------------------------------------
// Bidding
// ---------------------------------------------------------------------------

func TestCreateBid(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))

	a := f.house.Auction()
	assert.Equal(t, alice, a.Bidder)
	assert.Equal(t, int64(100), a.Amount.Int64())
	assert.Equal(t, int64(100), f.balance(escrow))
	assert.Equal(t, int64(0), f.balance(alice))
}

func TestCreateBidWrongToken(t *testing.T) {
	f := newFixture(t)
	f.open()

	f.fund(alice, 100)
	err := f.house.CreateBid(alice, 39, big.NewInt(100), big.NewInt(100))
	assert.ErrorIs(t, err, domain.ErrWrongToken)
}

func TestCreateBidExpired(t *testing.T) {
	f := newFixture(t)
	f.open()
	f.expire()

	err := f.bid(alice, 100)
	assert.ErrorIs(t, err, domain.ErrAuctionExpired)
}

func TestCreateBidBelowReserve(t *testing.T) {
	f := newFixture(t)
	f.open()

	err := f.bid(alice, 99)
	assert.ErrorIs(t, err, domain.ErrReserveNotMet)
	assert.False(t, f.house.Auction().HasBid())
}

func TestCreateBidBelowIncrement(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))

	// Floor for the next bid is 100 + 100*5/100 = 105.
	err := f.bid(bob, 104)
	assert.ErrorIs(t, err, domain.ErrBidTooLow)
	assert.Equal(t, alice, f.house.Auction().Bidder)

	f.fund(bob, 1)
	require.NoError(t, f.house.CreateBid(bob, 0, big.NewInt(105), big.NewInt(105)))
	assert.Equal(t, bob, f.house.Auction().Bidder)
}

func TestOutbidCreditsPendingReturns(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 1000))

	a := f.house.Auction()
	assert.Equal(t, bob, a.Bidder)
	assert.Equal(t, int64(1000), a.Amount.Int64())
	assert.Equal(t, int64(100), f.pending(alice))
	assert.Equal(t, int64(1100), f.balance(escrow))
}

func TestBidFundedFromPendingReturns(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 106))
	require.Equal(t, int64(100), f.pending(alice))

	// Alice returns with 25 fresh wei; the other 100 comes out of her
	// pending entry.
	f.fund(alice, 25)
	require.NoError(t, f.house.CreateBid(alice, 0, big.NewInt(125), big.NewInt(25)))

	a := f.house.Auction()
	assert.Equal(t, alice, a.Bidder)
	assert.Equal(t, int64(125), a.Amount.Int64())
	assert.Equal(t, int64(0), f.pending(alice))
	assert.Equal(t, int64(106), f.pending(bob))
}

func TestBidPartialPendingDebit(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 106))

	f.fund(alice, 50)
	require.NoError(t, f.house.CreateBid(alice, 0, big.NewInt(120), big.NewInt(50)))

	assert.Equal(t, int64(30), f.pending(alice))
}

func TestBidInsufficientPendingReturns(t *testing.T) {
	f := newFixture(t)
	f.open()

	f.fund(carol, 10)
	err := f.house.CreateBid(carol, 0, big.NewInt(110), big.NewInt(10))
	assert.ErrorIs(t, err, domain.ErrInsufficientPendingReturns)

	// Nothing was collected.
	assert.Equal(t, int64(10), f.balance(carol))
	assert.Equal(t, int64(0), f.balance(escrow))
}

func TestBidPaymentExceedsAmount(t *testing.T) {
	f := newFixture(t)
	f.open()

	f.fund(alice, 150)
	err := f.house.CreateBid(alice, 0, big.NewInt(100), big.NewInt(150))
	assert.ErrorIs(t, err, domain.ErrIncorrectPayment)
	assert.Equal(t, int64(150), f.balance(alice))
}

func TestBidNilAmounts(t *testing.T) {
	f := newFixture(t)
	f.open()

	assert.ErrorIs(t, f.house.CreateBid(alice, 0, nil, big.NewInt(1)), domain.ErrIncorrectPayment)
	assert.ErrorIs(t, f.house.CreateBid(alice, 0, big.NewInt(1), nil), domain.ErrIncorrectPayment)
}

func TestAntiSnipeExtension(t *testing.T) {
	f := newFixture(t)
	f.open()
	end := f.house.Auction().EndTime

	// Outside the buffer: the end time is untouched.
	f.now = end.Add(-101 * time.Second)
	require.NoError(t, f.bid(alice, 100))
	assert.Equal(t, end, f.house.Auction().EndTime)

	// Inside the buffer: the auction extends to now + buffer.
	f.now = end.Add(-89 * time.Second)
	require.NoError(t, f.bid(bob, 200))
	assert.Equal(t, f.now.Add(100*time.Second), f.house.Auction().EndTime)
}

func TestFriendBid(t *testing.T) {
	f := newFixture(t)
	f.open()

	// Alice pays, Bob is the bidder of record.
	f.fund(alice, 100)
	require.NoError(t, f.house.CreateFriendBid(alice, bob, 0, big.NewInt(100), big.NewInt(100), nil))

	a := f.house.Auction()
	assert.Equal(t, bob, a.Bidder)
	assert.Equal(t, int64(0), f.balance(alice))

	f.expire()
	out, err := f.house.SettleCurrentAndCreateNewAuction(carol)
	require.NoError(t, err)
	assert.Equal(t, bob, out.Winner)

	holder, err := f.tokens.OwnerOf(out.TokenID)
	require.NoError(t, err)
	assert.Equal(t, bob, holder)
}

func TestFriendBidFundedFromCallerPendingReturns(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 200))
	require.Equal(t, int64(100), f.pending(alice))

	// Alice's pending entry funds the shortfall even though Carol is the
	// bidder of record.
	f.fund(alice, 110)
	require.NoError(t, f.house.CreateFriendBid(alice, carol, 0, big.NewInt(210), big.NewInt(110), nil))

	assert.Equal(t, carol, f.house.Auction().Bidder)
	assert.Equal(t, int64(0), f.pending(alice))
	assert.Equal(t, int64(200), f.pending(bob))
}

// ---------------------------------------------------------------------------
// Withdrawals
// ---------------------------------------------------------------------------

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 200))

	amount, err := f.house.Withdraw(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount.Int64())
	assert.Equal(t, int64(100), f.balance(alice))
	assert.Equal(t, int64(0), f.pending(alice))
	assert.Equal(t, int64(200), f.balance(escrow))
}

func TestWithdrawZeroBalanceNoop(t *testing.T) {
	f := newFixture(t)
	f.open()

	amount, err := f.house.Withdraw(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount.Int64())
}

func TestWithdrawTransferFailureRestoresBalance(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 200))

	f.bank.SetHook(alice, func(from, to common.Address, amount *big.Int) error {
		return errors.New("payee reverted")
	})

	_, err := f.house.Withdraw(alice)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.Equal(t, int64(100), f.pending(alice))
	assert.Equal(t, int64(0), f.balance(alice))
}

func TestWithdrawStale(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 200))
	require.Equal(t, int64(100), f.pending(alice))

	// Carol has no pending entry and must be silently skipped.
	results, err := f.house.WithdrawStale(owner, []common.Address{alice, carol})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, alice, results[0].Bidder)
	assert.Equal(t, int64(95), results[0].Amount.Int64())
	assert.Equal(t, int64(5), results[0].Fee.Int64())

	assert.Equal(t, int64(95), f.balance(alice))
	assert.Equal(t, int64(5), f.balance(owner))
	assert.Equal(t, int64(0), f.pending(alice))
}

func TestWithdrawStaleLargeEntry(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 1000))
	require.NoError(t, f.bid(bob, 2000))

	results, err := f.house.WithdrawStale(owner, []common.Address{alice})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(950), results[0].Amount.Int64())
	assert.Equal(t, int64(50), results[0].Fee.Int64())
}

func TestWithdrawStaleNotOwner(t *testing.T) {
	f := newFixture(t)
	f.open()

	_, err := f.house.WithdrawStale(alice, []common.Address{alice})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestWithdrawStaleFailingPayeeSkipped(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 200))

	f.bank.SetHook(alice, func(from, to common.Address, amount *big.Int) error {
		return errors.New("payee reverted")
	})

	results, err := f.house.WithdrawStale(owner, []common.Address{alice})
	require.NoError(t, err)
	assert.Empty(t, results)

	// The liability is retired even though the payout bounced.
	assert.Equal(t, int64(0), f.pending(alice))
	assert.Equal(t, int64(0), f.balance(alice))
}

// ---------------------------------------------------------------------------
// Settlement
// ---------------------------------------------------------------------------

func TestSettleAndAdvance(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	f.expire()

	out, err := f.house.SettleCurrentAndCreateNewAuction(bob)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), out.TokenID)
	assert.Equal(t, alice, out.Winner)
	assert.Equal(t, int64(100), out.Amount.Int64())
	assert.Equal(t, int64(95), out.SplitPayout.Int64())
	assert.Equal(t, int64(5), out.OwnerPayout.Int64())

	assert.Equal(t, int64(95), f.balance(split))
	assert.Equal(t, int64(5), f.balance(owner))
	assert.Equal(t, int64(0), f.balance(escrow))

	holder, err := f.tokens.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, alice, holder)

	// A fresh auction opened for the next token.
	a := f.house.Auction()
	assert.Equal(t, uint64(1), a.TokenID)
	assert.False(t, a.Settled)
	assert.False(t, a.HasBid())
	assert.Equal(t, f.now.Add(2*time.Hour), a.EndTime)
}

func TestSettleAndAdvanceProceedsSplit(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 1000))
	f.expire()

	out, err := f.house.SettleCurrentAndCreateNewAuction(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(950), out.SplitPayout.Int64())
	assert.Equal(t, int64(50), out.OwnerPayout.Int64())
	assert.Equal(t, int64(950), f.balance(split))
	assert.Equal(t, int64(50), f.balance(owner))
}

func TestSettleAndAdvanceNotExpired(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))

	_, err := f.house.SettleCurrentAndCreateNewAuction(alice)
	assert.ErrorIs(t, err, domain.ErrNotExpired)
}

func TestSettleAndAdvanceWhilePaused(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))
	f.expire()
	require.NoError(t, f.house.Pause(owner))

	_, err := f.house.SettleCurrentAndCreateNewAuction(alice)
	assert.ErrorIs(t, err, domain.ErrPaused)
}

func TestSettleAuctionRequiresPaused(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))
	f.expire()

	_, err := f.house.SettleAuction(owner)
	assert.ErrorIs(t, err, domain.ErrNotPaused)
}

func TestSettleAuctionWhilePaused(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))
	f.expire()
	require.NoError(t, f.house.Pause(owner))

	out, err := f.house.SettleAuction(carol)
	require.NoError(t, err)
	assert.Equal(t, alice, out.Winner)

	// No new auction: the record is terminal.
	assert.True(t, f.house.Auction().Settled)
	assert.Equal(t, uint64(0), f.house.Auction().TokenID)
}

func TestSettleNoBidsReturnsTokenToOwner(t *testing.T) {
	f := newFixture(t)
	f.open()
	f.expire()

	out, err := f.house.SettleCurrentAndCreateNewAuction(alice)
	require.NoError(t, err)

	assert.Equal(t, domain.ZeroAddress, out.Winner)
	assert.Equal(t, int64(0), out.Amount.Int64())
	assert.Equal(t, int64(0), f.balance(owner))
	assert.Equal(t, int64(0), f.balance(split))

	holder, err := f.tokens.OwnerOf(out.TokenID)
	require.NoError(t, err)
	assert.Equal(t, owner, holder)
}

func TestSettleTwice(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))
	f.expire()
	require.NoError(t, f.house.Pause(owner))

	_, err := f.house.SettleAuction(owner)
	require.NoError(t, err)

	_, err = f.house.SettleAuction(owner)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
}

func TestUnpauseAfterPausedSettlementAdvances(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))
	f.expire()
	require.NoError(t, f.house.Pause(owner))
	_, err := f.house.SettleAuction(owner)
	require.NoError(t, err)

	require.NoError(t, f.house.Unpause(owner))
	a := f.house.Auction()
	assert.Equal(t, uint64(1), a.TokenID)
	assert.False(t, a.Settled)
}

func TestSettlePayoutFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))
	f.expire()

	f.bank.SetHook(split, func(from, to common.Address, amount *big.Int) error {
		return errors.New("recipient reverted")
	})

	_, err := f.house.SettleCurrentAndCreateNewAuction(alice)
	require.Error(t, err)

	// Everything rolled back: funds stay escrowed, the token stays with the
	// house, and the auction can be settled again later.
	assert.Equal(t, int64(100), f.balance(escrow))
	assert.False(t, f.house.Auction().Settled)
	holder, err := f.tokens.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, escrow, holder)

	f.bank.SetHook(split, nil)
	out, err := f.house.SettleCurrentAndCreateNewAuction(alice)
	require.NoError(t, err)
	assert.Equal(t, alice, out.Winner)
}

func TestSupplyExhaustionParksHouse(t *testing.T) {
	b := bank.New()
	reg, err := token.New(token.Config{Owner: owner, MaxSupply: 1}, b, testLogger())
	require.NoError(t, err)
	require.NoError(t, reg.SetMinter(owner, escrow))

	now := time.Unix(1_700_000_000, 0)
	h := New(Config{
		Address:                   escrow,
		Owner:                     owner,
		TimeBuffer:                100 * time.Second,
		ReservePrice:              big.NewInt(100),
		MinBidIncrementPercentage: 5,
		Duration:                  2 * time.Hour,
		SplitRecipient:            split,
		SplitPercentage:           95,
	}, b, reg, testLogger()).WithClock(func() time.Time { return now })

	require.NoError(t, h.Unpause(owner))
	b.Mint(alice, big.NewInt(100))
	require.NoError(t, h.CreateBid(alice, 0, big.NewInt(100), big.NewInt(100)))
	now = h.Auction().EndTime.Add(time.Second)

	_, err = h.SettleCurrentAndCreateNewAuction(alice)
	assert.ErrorIs(t, err, domain.ErrSoldOut)
	assert.True(t, h.Paused())

	// The settlement itself stood: the winner holds the token and the
	// proceeds were paid out.
	holder, err := reg.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, alice, holder)
	assert.Equal(t, int64(0), b.BalanceOf(escrow).Int64())
}

// ---------------------------------------------------------------------------
// Allowlist phase
// ---------------------------------------------------------------------------

func TestWLPlainBidShutOut(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.EnableWL(owner))

	err := f.bid(alice, 100)
	assert.ErrorIs(t, err, domain.ErrWLOnly)
}

func TestWLBidRequiresEnabledGate(t *testing.T) {
	f := newFixture(t)
	f.open()

	f.fund(alice, 100)
	err := f.house.CreateWLBid(alice, 0, big.NewInt(100), big.NewInt(100), f.wlSig(alice))
	assert.ErrorIs(t, err, domain.ErrWLNotEnabled)
}

func TestWLBidAdmitted(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.EnableWL(owner))

	f.fund(alice, 100)
	require.NoError(t, f.house.CreateWLBid(alice, 0, big.NewInt(100), big.NewInt(100), f.wlSig(alice)))
	assert.Equal(t, alice, f.house.Auction().Bidder)
}

func TestWLBidBadSignatures(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.EnableWL(owner))
	f.fund(alice, 400)

	// Missing signature.
	err := f.house.CreateWLBid(alice, 0, big.NewInt(100), big.NewInt(100), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	// Signature over a different bidder.
	err = f.house.CreateWLBid(alice, 0, big.NewInt(100), big.NewInt(100), f.wlSig(bob))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	// Signature from an undesignated signer.
	rogue, err := crypto.GenerateSigner()
	require.NoError(t, err)
	sig, err := rogue.SignBidClaim(WLPhaseTag, alice)
	require.NoError(t, err)
	err = f.house.CreateWLBid(alice, 0, big.NewInt(100), big.NewInt(100), sig)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	assert.False(t, f.house.Auction().HasBid())
}

func TestWLWinsRecordedAtSettlement(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.EnableWL(owner))

	f.fund(alice, 100)
	require.NoError(t, f.house.CreateWLBid(alice, 0, big.NewInt(100), big.NewInt(100), f.wlSig(alice)))
	assert.Equal(t, uint64(0), f.house.WLAuctionsWon(alice))

	f.expire()
	_, err := f.house.SettleCurrentAndCreateNewAuction(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.house.WLAuctionsWon(alice))
}

func TestWLWinsNotRecordedWhenGateDisabled(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	f.expire()
	_, err := f.house.SettleCurrentAndCreateNewAuction(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.house.WLAuctionsWon(alice))
}

func TestWLMaxWinsEnforced(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.EnableWL(owner))

	// Win the first allowlist auction.
	f.fund(alice, 100)
	require.NoError(t, f.house.CreateWLBid(alice, 0, big.NewInt(100), big.NewInt(100), f.wlSig(alice)))
	f.expire()
	_, err := f.house.SettleCurrentAndCreateNewAuction(bob)
	require.NoError(t, err)

	// The cap (1) now shuts alice out even with a valid signature.
	f.fund(alice, 100)
	err = f.house.CreateWLBid(alice, 1, big.NewInt(100), big.NewInt(100), f.wlSig(alice))
	assert.ErrorIs(t, err, domain.ErrMaxWLWins)

	// Raising the cap lets her back in.
	require.NoError(t, f.house.SetMaxWLWins(owner, 2))
	require.NoError(t, f.house.CreateWLBid(alice, 1, big.NewInt(100), big.NewInt(100), f.wlSig(alice)))
}

func TestWLFriendBidSignatureCoversFriend(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.EnableWL(owner))
	f.fund(alice, 200)

	// A signature over the payer does not admit the friend.
	err := f.house.CreateFriendBid(alice, bob, 0, big.NewInt(100), big.NewInt(100), f.wlSig(alice))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	require.NoError(t, f.house.CreateFriendBid(alice, bob, 0, big.NewInt(100), big.NewInt(100), f.wlSig(bob)))
	assert.Equal(t, bob, f.house.Auction().Bidder)
}

// ---------------------------------------------------------------------------
// Admin control surface
// ---------------------------------------------------------------------------

func TestAdminSettersRequireOwner(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.house.Pause(alice), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.SetOwner(alice, bob), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.SetTimeBuffer(alice, time.Minute), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.SetReservePrice(alice, big.NewInt(1)), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.SetMinBidIncrementPercentage(alice, 5), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.SetDuration(alice, time.Hour), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.EnableWL(alice), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.DisableWL(alice), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.SetWLSigner(alice, bob), domain.ErrNotOwner)
	assert.ErrorIs(t, f.house.SetMaxWLWins(alice, 3), domain.ErrNotOwner)
}

func TestSetOwner(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.house.SetOwner(owner, alice))
	assert.Equal(t, alice, f.house.Owner())

	// The old owner is immediately locked out; the new one is in charge.
	assert.ErrorIs(t, f.house.Unpause(owner), domain.ErrNotOwner)
	require.NoError(t, f.house.Unpause(alice))
}

func TestSetOwnerZeroAddress(t *testing.T) {
	f := newFixture(t)
	err := f.house.SetOwner(owner, domain.ZeroAddress)
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
	assert.Equal(t, owner, f.house.Owner())
}

func TestSetMinBidIncrementPercentageBounds(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.house.SetMinBidIncrementPercentage(owner, 1), domain.ErrOutOfRange)
	assert.ErrorIs(t, f.house.SetMinBidIncrementPercentage(owner, 16), domain.ErrOutOfRange)
	assert.Equal(t, uint64(5), f.house.Params().MinBidIncrementPercentage)

	require.NoError(t, f.house.SetMinBidIncrementPercentage(owner, 2))
	require.NoError(t, f.house.SetMinBidIncrementPercentage(owner, 15))
	assert.Equal(t, uint64(15), f.house.Params().MinBidIncrementPercentage)
}

func TestSetDurationBounds(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.house.SetDuration(owner, time.Hour-time.Second), domain.ErrOutOfRange)
	assert.ErrorIs(t, f.house.SetDuration(owner, 72*time.Hour+time.Second), domain.ErrOutOfRange)

	require.NoError(t, f.house.SetDuration(owner, time.Hour))
	require.NoError(t, f.house.SetDuration(owner, 72*time.Hour))
	assert.Equal(t, 72*time.Hour, f.house.Params().Duration)
}

func TestSetDurationOnlyAffectsFutureAuctions(t *testing.T) {
	f := newFixture(t)
	f.open()
	end := f.house.Auction().EndTime

	require.NoError(t, f.house.SetDuration(owner, time.Hour))
	assert.Equal(t, end, f.house.Auction().EndTime)

	f.expire()
	_, err := f.house.SettleCurrentAndCreateNewAuction(alice)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(time.Hour), f.house.Auction().EndTime)
}

func TestSetReservePrice(t *testing.T) {
	f := newFixture(t)
	f.open()

	assert.ErrorIs(t, f.house.SetReservePrice(owner, nil), domain.ErrOutOfRange)
	assert.ErrorIs(t, f.house.SetReservePrice(owner, big.NewInt(-1)), domain.ErrOutOfRange)

	require.NoError(t, f.house.SetReservePrice(owner, big.NewInt(500)))
	assert.ErrorIs(t, f.bid(alice, 499), domain.ErrReserveNotMet)
	require.NoError(t, f.bid(alice, 500))
}

func TestSetWLSignerZeroAddress(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.house.SetWLSigner(owner, domain.ZeroAddress), domain.ErrOutOfRange)
}

func TestSetTimeBuffer(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.house.SetTimeBuffer(owner, 10*time.Minute))
	end := f.house.Auction().EndTime

	f.now = end.Add(-5 * time.Minute)
	require.NoError(t, f.bid(alice, 100))
	assert.Equal(t, f.now.Add(10*time.Minute), f.house.Auction().EndTime)
}

func TestParamsSnapshot(t *testing.T) {
	f := newFixture(t)

	p := f.house.Params()
	assert.Equal(t, owner, p.Owner)
	assert.Equal(t, 100*time.Second, p.TimeBuffer)
	assert.Equal(t, int64(100), p.ReservePrice.Int64())
	assert.Equal(t, uint64(5), p.MinBidIncrementPercentage)
	assert.Equal(t, 2*time.Hour, p.Duration)
	assert.Equal(t, split, p.SplitRecipient)
	assert.Equal(t, uint64(95), p.SplitPercentage)
	assert.True(t, p.Paused)
	assert.False(t, p.WLEnabled)
	assert.Equal(t, uint64(1), p.MaxWLWins)

	// Mutating the snapshot must not touch the live configuration.
	p.ReservePrice.SetInt64(9999)
	assert.Equal(t, int64(100), f.house.Params().ReservePrice.Int64())
}

// ---------------------------------------------------------------------------
// Fund conservation and events
// ---------------------------------------------------------------------------

func TestEscrowMatchesLiabilities(t *testing.T) {
	f := newFixture(t)
	f.open()

	require.NoError(t, f.bid(alice, 100))
	require.NoError(t, f.bid(bob, 200))
	f.fund(alice, 150)
	require.NoError(t, f.house.CreateBid(alice, 0, big.NewInt(250), big.NewInt(150)))
	require.NoError(t, f.bid(carol, 300))

	assert.Equal(t, f.house.PendingTotal().Int64(), f.balance(escrow))

	_, err := f.house.Withdraw(alice)
	require.NoError(t, err)
	assert.Equal(t, f.house.PendingTotal().Int64(), f.balance(escrow))

	f.expire()
	_, err = f.house.SettleCurrentAndCreateNewAuction(carol)
	require.NoError(t, err)
	assert.Equal(t, f.house.PendingTotal().Int64(), f.balance(escrow))
}

func TestEventsEmitted(t *testing.T) {
	f := newFixture(t)
	f.open()
	require.NoError(t, f.bid(alice, 100))
	f.expire()
	_, err := f.house.SettleCurrentAndCreateNewAuction(bob)
	require.NoError(t, err)

	var kinds []domain.EventKind
	for _, ev := range f.events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []domain.EventKind{
		domain.EventParamChanged,   // unpause
		domain.EventAuctionCreated, // token 0
		domain.EventBidPlaced,
		domain.EventAuctionSettled,
		domain.EventAuctionCreated, // token 1
	}, kinds)

	settled := f.events[3]
	assert.Equal(t, uint64(0), settled.TokenID)
	assert.Equal(t, alice, settled.Address)
	assert.Equal(t, int64(100), settled.Amount.Int64())
}
