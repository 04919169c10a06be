package handler

import (
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/token"
)

// TokenHandler serves the companion collection endpoints: ownership lookups,
// claim-phase mints, and the owner mint controls.
type TokenHandler struct {
	registry *token.Registry
	logger   *slog.Logger
}

// NewTokenHandler creates a TokenHandler.
func NewTokenHandler(registry *token.Registry, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		registry: registry,
		logger:   logger,
	}
}

// GetToken returns the owner of one token.
// GET /api/token/{token_id}
func (h *TokenHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseUint(r.PathValue("token_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}

	owner, err := h.registry.OwnerOf(tokenID)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token_id": tokenID,
		"owner":    owner.Hex(),
	})
}

// GetSupply returns the collection's mint progress.
// GET /api/token/supply
func (h *TokenHandler) GetSupply(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":       h.registry.Name(),
		"symbol":     h.registry.Symbol(),
		"minted":     h.registry.TokenCount(),
		"max_supply": h.registry.MaxSupply(),
	})
}

// claimMintRequest is the body for the allowlist/whitelist mint endpoints.
// Proof entries are 32-byte hex hashes; Payment is a decimal wei string and
// must equal the phase price exactly.
type claimMintRequest struct {
	Claimant string   `json:"claimant"`
	Proof    []string `json:"proof"`
	Payment  string   `json:"payment"`
}

// AllowlistMint mints one token to a claimant on the allowlist.
// POST /api/token/mint/allowlist
func (h *TokenHandler) AllowlistMint(w http.ResponseWriter, r *http.Request) {
	h.claimMint(w, r, h.registry.AllowlistMint)
}

// WhitelistMint mints one token to a claimant on the whitelist.
// POST /api/token/mint/whitelist
func (h *TokenHandler) WhitelistMint(w http.ResponseWriter, r *http.Request) {
	h.claimMint(w, r, h.registry.WhitelistMint)
}

func (h *TokenHandler) claimMint(w http.ResponseWriter, r *http.Request, mint func(common.Address, []common.Hash, *big.Int) (uint64, error)) {
	var req claimMintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claimant, err := parseAddress("claimant", req.Claimant)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := parseAmount("payment", req.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	proof := make([]common.Hash, 0, len(req.Proof))
	for _, p := range req.Proof {
		p = strings.TrimPrefix(p, "0x")
		if len(p) != 64 {
			writeError(w, http.StatusBadRequest, "invalid proof entry")
			return
		}
		proof = append(proof, common.HexToHash(p))
	}

	tokenID, err := mint(claimant, proof, payment)
	if err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "handler: claim mint",
		slog.Uint64("token_id", tokenID),
		slog.String("claimant", claimant.Hex()),
	)
	writeJSON(w, http.StatusCreated, map[string]any{
		"token_id": tokenID,
		"owner":    claimant.Hex(),
	})
}

type airdropRequest struct {
	Caller     string   `json:"caller"`
	Recipients []string `json:"recipients"`
}

// Airdrop mints one token per recipient. Owner only.
// POST /api/token/airdrop
func (h *TokenHandler) Airdrop(w http.ResponseWriter, r *http.Request) {
	var req airdropRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipients := make([]common.Address, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		addr, err := parseAddress("recipient", rec)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		recipients = append(recipients, addr)
	}

	if err := h.registry.Airdrop(caller, recipients); err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type mintPhaseRequest struct {
	Caller string `json:"caller"`
	Active bool   `json:"active"`
}

// SetALMintPhase opens or closes the allowlist mint phase. Owner only.
// POST /api/token/mint/allowlist/phase
func (h *TokenHandler) SetALMintPhase(w http.ResponseWriter, r *http.Request) {
	h.setPhase(w, r, h.registry.StartALMint, h.registry.StopALMint)
}

// SetWLMintPhase opens or closes the whitelist mint phase. Owner only.
// POST /api/token/mint/whitelist/phase
func (h *TokenHandler) SetWLMintPhase(w http.ResponseWriter, r *http.Request) {
	h.setPhase(w, r, h.registry.StartWLMint, h.registry.StopWLMint)
}

func (h *TokenHandler) setPhase(w http.ResponseWriter, r *http.Request, start, stop func(common.Address) error) {
	var req mintPhaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fn := stop
	if req.Active {
		fn = start
	}
	if err := fn(caller); err != nil {
		writeDomainError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
