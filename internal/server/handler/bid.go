package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// BidService defines the bid admission methods the bid handler requires.
type BidService interface {
	PlaceBid(ctx context.Context, bidder common.Address, tokenID uint64, amount, payment *big.Int) error
	PlaceWLBid(ctx context.Context, bidder common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error
	PlaceFriendBid(ctx context.Context, caller, friend common.Address, tokenID uint64, amount, payment *big.Int, sig []byte) error
}

// BidHandler serves the bid submission endpoint.
type BidHandler struct {
	bids   BidService
	logger *slog.Logger
}

// NewBidHandler creates a BidHandler.
func NewBidHandler(bids BidService, logger *slog.Logger) *BidHandler {
	return &BidHandler{
		bids:   bids,
		logger: logger,
	}
}

// bidRequest is the submission body. Amount and Payment are decimal wei
// strings. A non-empty Signature marks an allowlist bid; a non-empty Friend
// places the bid on that address's behalf with Bidder supplying the funds.
type bidRequest struct {
	Bidder    string `json:"bidder"`
	TokenID   uint64 `json:"token_id"`
	Amount    string `json:"amount"`
	Payment   string `json:"payment"`
	Signature string `json:"signature,omitempty"`
	Friend    string `json:"friend,omitempty"`
}

// PlaceBid admits a bid on the live auction.
// POST /api/auction/bid
func (h *BidHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bidder, err := parseAddress("bidder", req.Bidder)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := parseAmount("payment", req.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sig []byte
	if req.Signature != "" {
		sig, err = hex.DecodeString(strings.TrimPrefix(req.Signature, "0x"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid signature encoding")
			return
		}
	}

	switch {
	case req.Friend != "":
		friend, err := parseAddress("friend", req.Friend)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		err = h.bids.PlaceFriendBid(r.Context(), bidder, friend, req.TokenID, amount, payment, sig)
		if err != nil {
			writeDomainError(w, h.logger, r, err)
			return
		}
	case sig != nil:
		if err := h.bids.PlaceWLBid(r.Context(), bidder, req.TokenID, amount, payment, sig); err != nil {
			writeDomainError(w, h.logger, r, err)
			return
		}
	default:
		if err := h.bids.PlaceBid(r.Context(), bidder, req.TokenID, amount, payment); err != nil {
			writeDomainError(w, h.logger, r, err)
			return
		}
	}

	h.logger.InfoContext(r.Context(), "handler: bid accepted",
		slog.Uint64("token_id", req.TokenID),
		slog.String("bidder", bidder.Hex()),
	)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
