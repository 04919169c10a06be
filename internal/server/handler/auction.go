package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// AuctionService defines the read and settlement methods the auction handler
// requires from the service layer.
type AuctionService interface {
	CurrentAuction() domain.Auction
	Params() domain.HouseParams
	Settle(ctx context.Context, caller common.Address) (domain.SettlementOutcome, error)
	SettleAndAdvance(ctx context.Context, caller common.Address) (domain.SettlementOutcome, error)
	ListSettlements(ctx context.Context, opts domain.ListOpts) ([]domain.SettlementOutcome, error)
	GetSettlement(ctx context.Context, tokenID uint64) (domain.SettlementOutcome, error)
	ListBidsByToken(ctx context.Context, tokenID uint64, opts domain.ListOpts) ([]domain.Bid, error)
}

// AuctionHandler serves the auction state, settlement, and archive endpoints.
type AuctionHandler struct {
	auctions AuctionService
	logger   *slog.Logger
}

// NewAuctionHandler creates an AuctionHandler.
func NewAuctionHandler(auctions AuctionService, logger *slog.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctions: auctions,
		logger:   logger,
	}
}

// GetAuction returns the live auction record.
// GET /api/auction
func (h *AuctionHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	a := h.auctions.CurrentAuction()
	if !a.Live() {
		writeError(w, http.StatusNotFound, "no auction in progress")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GetConfig returns the owner-mutable house parameters.
// GET /api/config
func (h *AuctionHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auctions.Params())
}

type settleRequest struct {
	Caller string `json:"caller"`
}

// Settle settles the current auction without advancing. The house must be
// paused.
// POST /api/auction/settle
func (h *AuctionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.auctions.Settle)
}

// SettleAndAdvance settles the expired auction and opens the next one.
// POST /api/auction/settle-and-advance
func (h *AuctionHandler) SettleAndAdvance(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.auctions.SettleAndAdvance)
}

func (h *AuctionHandler) settle(w http.ResponseWriter, r *http.Request, fn func(context.Context, common.Address) (domain.SettlementOutcome, error)) {
	var req settleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := fn(r.Context(), caller)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ListBids returns the archived bids for the given token.
// GET /api/auction/{token_id}/bids
func (h *AuctionHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseUint(r.PathValue("token_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	bids, err := h.auctions.ListBidsByToken(r.Context(), tokenID, parseListOpts(r))
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	if bids == nil {
		bids = []domain.Bid{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bids": bids})
}

// ListSettlements returns archived settlement outcomes.
// GET /api/settlements
func (h *AuctionHandler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	outs, err := h.auctions.ListSettlements(r.Context(), parseListOpts(r))
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	if outs == nil {
		outs = []domain.SettlementOutcome{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": outs})
}

// GetSettlement returns the archived outcome for one token.
// GET /api/settlements/{token_id}
func (h *AuctionHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseUint(r.PathValue("token_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	out, err := h.auctions.GetSettlement(r.Context(), tokenID)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
