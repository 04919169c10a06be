package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/house"
)

// StaleSweeper defines the forced-sweep method the admin handler requires
// from the service layer. The other admin operations hit the house directly.
type StaleSweeper interface {
	WithdrawStale(ctx context.Context, caller common.Address, bidders []common.Address) ([]house.StaleSweepResult, error)
}

// AdminHandler serves the owner control surface. Every operation carries the
// caller address in the body; the house enforces ownership, the API key
// middleware only guards the route.
type AdminHandler struct {
	house   *house.House
	sweeper StaleSweeper
	logger  *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(h *house.House, sweeper StaleSweeper, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		house:   h,
		sweeper: sweeper,
		logger:  logger,
	}
}

type adminRequest struct {
	Caller string `json:"caller"`

	// Parameter payloads; which one is read depends on the endpoint.
	Owner      string   `json:"owner,omitempty"`
	Signer     string   `json:"signer,omitempty"`
	Duration   string   `json:"duration,omitempty"` // Go duration string, e.g. "24h"
	Amount     string   `json:"amount,omitempty"`   // decimal wei
	Percentage uint64   `json:"percentage,omitempty"`
	MaxWins    uint64   `json:"max_wins,omitempty"`
	Bidders    []string `json:"bidders,omitempty"`
}

func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request) (adminRequest, common.Address, bool) {
	var req adminRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, common.Address{}, false
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, common.Address{}, false
	}
	return req, caller, true
}

func (h *AdminHandler) finish(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "handler: admin operation",
		slog.String("op", op),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Pause stops auction creation and settle-and-advance.
// POST /api/admin/pause
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	_, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.finish(w, r, "pause", h.house.Pause(caller))
}

// Unpause resumes operation, opening the next auction when none is live.
// POST /api/admin/unpause
func (h *AdminHandler) Unpause(w http.ResponseWriter, r *http.Request) {
	_, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.finish(w, r, "unpause", h.house.Unpause(caller))
}

// SetOwner transfers ownership.
// POST /api/admin/owner
func (h *AdminHandler) SetOwner(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	newOwner, err := parseAddress("owner", req.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.finish(w, r, "set_owner", h.house.SetOwner(caller, newOwner))
}

// SetTimeBuffer updates the anti-snipe window.
// POST /api/admin/time-buffer
func (h *AdminHandler) SetTimeBuffer(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid duration")
		return
	}
	h.finish(w, r, "set_time_buffer", h.house.SetTimeBuffer(caller, d))
}

// SetReservePrice updates the minimum first bid.
// POST /api/admin/reserve-price
func (h *AdminHandler) SetReservePrice(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	price, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.finish(w, r, "set_reserve_price", h.house.SetReservePrice(caller, price))
}

// SetIncrement updates the minimum outbid increment percentage.
// POST /api/admin/min-increment
func (h *AdminHandler) SetIncrement(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.finish(w, r, "set_increment", h.house.SetMinBidIncrementPercentage(caller, req.Percentage))
}

// SetDuration updates the length of future auctions.
// POST /api/admin/duration
func (h *AdminHandler) SetDuration(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid duration")
		return
	}
	h.finish(w, r, "set_duration", h.house.SetDuration(caller, d))
}

// EnableWL switches bidding to the allowlist gate.
// POST /api/admin/wl/enable
func (h *AdminHandler) EnableWL(w http.ResponseWriter, r *http.Request) {
	_, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.finish(w, r, "enable_wl", h.house.EnableWL(caller))
}

// DisableWL returns bidding to the public gate.
// POST /api/admin/wl/disable
func (h *AdminHandler) DisableWL(w http.ResponseWriter, r *http.Request) {
	_, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.finish(w, r, "disable_wl", h.house.DisableWL(caller))
}

// SetWLSigner designates the allowlist claim signer.
// POST /api/admin/wl-signer
func (h *AdminHandler) SetWLSigner(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	signer, err := parseAddress("signer", req.Signer)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.finish(w, r, "set_wl_signer", h.house.SetWLSigner(caller, signer))
}

// SetMaxWLWins caps allowlist wins per bidder.
// POST /api/admin/wl/max-wins
func (h *AdminHandler) SetMaxWLWins(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.finish(w, r, "set_max_wl_wins", h.house.SetMaxWLWins(caller, req.MaxWins))
}

// WithdrawStale force-sweeps the listed bidders' unclaimed pending returns.
// POST /api/admin/withdraw-stale
func (h *AdminHandler) WithdrawStale(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := h.decode(w, r)
	if !ok {
		return
	}

	bidders := make([]common.Address, 0, len(req.Bidders))
	for _, b := range req.Bidders {
		addr, err := parseAddress("bidder", b)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		bidders = append(bidders, addr)
	}

	results, err := h.sweeper.WithdrawStale(r.Context(), caller, bidders)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}

	type sweptEntry struct {
		Bidder string   `json:"bidder"`
		Amount *big.Int `json:"amount"`
		Fee    *big.Int `json:"fee"`
	}
	swept := make([]sweptEntry, 0, len(results))
	for _, res := range results {
		swept = append(swept, sweptEntry{
			Bidder: res.Bidder.Hex(),
			Amount: res.Amount,
			Fee:    res.Fee,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"swept": swept})
}
