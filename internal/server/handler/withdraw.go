package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// ReturnsService defines the pull-payment methods the returns handler
// requires.
type ReturnsService interface {
	Withdraw(ctx context.Context, caller common.Address) (*big.Int, error)
	PendingReturns(bidder common.Address) *big.Int
	WLAuctionsWon(bidder common.Address) uint64
	ListWithdrawalsByBidder(ctx context.Context, bidder common.Address, opts domain.ListOpts) ([]domain.Withdrawal, error)
}

// ReturnsHandler serves the pending-returns endpoints.
type ReturnsHandler struct {
	returns ReturnsService
	logger  *slog.Logger
}

// NewReturnsHandler creates a ReturnsHandler.
func NewReturnsHandler(returns ReturnsService, logger *slog.Logger) *ReturnsHandler {
	return &ReturnsHandler{
		returns: returns,
		logger:  logger,
	}
}

type withdrawRequest struct {
	Caller string `json:"caller"`
}

// Withdraw pays the caller their pending-returns balance. A zero balance is
// a successful no-op.
// POST /api/returns/withdraw
func (h *ReturnsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.returns.Withdraw(r.Context(), caller)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"withdrawn": amount.String()})
}

// GetPendingReturns returns an address's refundable balance.
// GET /api/returns/{address}
func (h *ReturnsHandler) GetPendingReturns(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(r, "address")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address":         addr.Hex(),
		"pending_returns": h.returns.PendingReturns(addr).String(),
	})
}

// ListWithdrawals returns an address's archived refunds.
// GET /api/returns/{address}/history
func (h *ReturnsHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(r, "address")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	ws, err := h.returns.ListWithdrawalsByBidder(r.Context(), addr, parseListOpts(r))
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	if ws == nil {
		ws = []domain.Withdrawal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"withdrawals": ws})
}

// GetWLWins returns an address's allowlist win count.
// GET /api/wl-wins/{address}
func (h *ReturnsHandler) GetWLWins(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(r, "address")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr.Hex(),
		"wl_wins": h.returns.WLAuctionsWon(addr),
	})
}
