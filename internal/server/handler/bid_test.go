package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// fakeBidService records the admission call it received and returns a canned
// error.
type fakeBidService struct {
	err error

	kind   string // "plain", "wl", "friend"
	bidder common.Address
	friend common.Address
	amount *big.Int
	sig    []byte
}

func (f *fakeBidService) PlaceBid(_ context.Context, bidder common.Address, tokenID uint64, amount, payment *big.Int) error {
	f.kind, f.bidder, f.amount = "plain", bidder, amount
	return f.err
}

func (f *fakeBidService) PlaceWLBid(_ context.Context, bidder common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error {
	f.kind, f.bidder, f.amount, f.sig = "wl", bidder, amount, sig
	return f.err
}

func (f *fakeBidService) PlaceFriendBid(_ context.Context, caller, friend common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error {
	f.kind, f.bidder, f.friend, f.amount = "friend", caller, friend, amount
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postBid(t *testing.T, h *BidHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auction/bid", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.PlaceBid(rec, req)
	return rec
}

func TestPlaceBid(t *testing.T) {
	svc := &fakeBidService{}
	h := NewBidHandler(svc, discardLogger())

	rec := postBid(t, h, map[string]any{
		"bidder":   "0x1111111111111111111111111111111111111111",
		"token_id": 7,
		"amount":   "1000",
		"payment":  "1000",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "plain", svc.kind)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), svc.bidder)
	assert.Equal(t, "1000", svc.amount.String())
}

func TestPlaceBidWithSignatureRoutesToWL(t *testing.T) {
	svc := &fakeBidService{}
	h := NewBidHandler(svc, discardLogger())

	rec := postBid(t, h, map[string]any{
		"bidder":    "0x1111111111111111111111111111111111111111",
		"token_id":  7,
		"amount":    "1000",
		"payment":   "1000",
		"signature": "0xdeadbeef",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "wl", svc.kind)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, svc.sig)
}

func TestPlaceBidWithFriendRoutesToFriend(t *testing.T) {
	svc := &fakeBidService{}
	h := NewBidHandler(svc, discardLogger())

	rec := postBid(t, h, map[string]any{
		"bidder":   "0x1111111111111111111111111111111111111111",
		"friend":   "0x2222222222222222222222222222222222222222",
		"token_id": 7,
		"amount":   "1000",
		"payment":  "1000",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "friend", svc.kind)
	assert.Equal(t, common.HexToAddress("0x2222222222222222222222222222222222222222"), svc.friend)
}

func TestPlaceBidBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad bidder", map[string]any{"bidder": "nope", "amount": "1", "payment": "1"}},
		{"bad amount", map[string]any{"bidder": "0x1111111111111111111111111111111111111111", "amount": "-1", "payment": "1"}},
		{"bad payment", map[string]any{"bidder": "0x1111111111111111111111111111111111111111", "amount": "1", "payment": "x"}},
		{"bad signature", map[string]any{"bidder": "0x1111111111111111111111111111111111111111", "amount": "1", "payment": "1", "signature": "zz"}},
		{"bad friend", map[string]any{"bidder": "0x1111111111111111111111111111111111111111", "amount": "1", "payment": "1", "friend": "zz"}},
		{"unknown field", map[string]any{"bidder": "0x1111111111111111111111111111111111111111", "amount": "1", "payment": "1", "bogus": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeBidService{}
			rec := postBid(t, NewBidHandler(svc, discardLogger()), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.kind, "service must not be called")
		})
	}
}

func TestPlaceBidMalformedJSON(t *testing.T) {
	h := NewBidHandler(&fakeBidService{}, discardLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/auction/bid", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.PlaceBid(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceBidDomainErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrBidTooLow, http.StatusBadRequest},
		{domain.ErrReserveNotMet, http.StatusBadRequest},
		{domain.ErrWLOnly, http.StatusBadRequest},
		{domain.ErrInvalidSignature, http.StatusBadRequest},
		{domain.ErrAuctionExpired, http.StatusConflict},
		{domain.ErrNoAuction, http.StatusConflict},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrTransferFailed, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewBidHandler(&fakeBidService{err: tt.err}, discardLogger())
			rec := postBid(t, h, map[string]any{
				"bidder":  "0x1111111111111111111111111111111111111111",
				"amount":  "1000",
				"payment": "1000",
			})
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestUnknownErrorHidesDetails(t *testing.T) {
	h := NewBidHandler(&fakeBidService{err: assert.AnError}, discardLogger())
	rec := postBid(t, h, map[string]any{
		"bidder":  "0x1111111111111111111111111111111111111111",
		"amount":  "1000",
		"payment": "1000",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestDomainStatusOwnerErrors(t *testing.T) {
	status, ok := domainStatus(domain.ErrNotOwner)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, status)

	status, ok = domainStatus(domain.ErrNotFound)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)

	_, ok = domainStatus(assert.AnError)
	assert.False(t, ok)
}
