// Package handler contains the HTTP handlers for the auction house API.
// Handlers declare the narrow service interfaces they need locally so the
// package never depends on concrete service types.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps a core sentinel error to its HTTP status and writes
// the JSON error body. Unknown errors become a generic 500 so internal
// details never leak to callers.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status, ok := domainStatus(err)
	if !ok {
		logger.ErrorContext(r.Context(), "handler: internal error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// domainStatus returns the HTTP status for a core sentinel error. The second
// return is false for unrecognized errors.
func domainStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotMinter):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrWrongToken),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrReserveNotMet),
		errors.Is(err, domain.ErrInvalidOwner),
		errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrMaxWLWins),
		errors.Is(err, domain.ErrInsufficientPendingReturns),
		errors.Is(err, domain.ErrIncorrectPayment),
		errors.Is(err, domain.ErrWLOnly),
		errors.Is(err, domain.ErrWLNotEnabled),
		errors.Is(err, domain.ErrInvalidProof),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrAuctionExpired),
		errors.Is(err, domain.ErrNoAuction),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrNotExpired),
		errors.Is(err, domain.ErrNotPaused),
		errors.Is(err, domain.ErrPaused),
		errors.Is(err, domain.ErrMintNotOpen),
		errors.Is(err, domain.ErrMintCapReached),
		errors.Is(err, domain.ErrSoldOut):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway, true
	default:
		return 0, false
	}
}

// parseListOpts extracts standard pagination parameters from the query string.
// Defaults: limit=50 (max 500), offset=0.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return domain.ListOpts{
		Limit:  limit,
		Offset: offset,
	}
}

// addressParam extracts and validates a hex address path parameter.
func addressParam(r *http.Request, name string) (common.Address, bool) {
	v := r.PathValue(name)
	if !common.IsHexAddress(v) {
		return common.Address{}, false
	}
	return common.HexToAddress(v), true
}

// decodeBody decodes the JSON request body into dst, limiting the body to
// 64 KiB and rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseAddress validates and parses a hex address from a request field.
func parseAddress(field, v string) (common.Address, error) {
	if !common.IsHexAddress(v) {
		return common.Address{}, errors.New("invalid " + field + " address")
	}
	return common.HexToAddress(v), nil
}

// parseAmount parses a decimal wei string from a request field. Empty parses
// as zero.
func parseAmount(field, v string) (*big.Int, error) {
	if v == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(v, 10)
	if !ok || n.Sign() < 0 {
		return nil, errors.New("invalid " + field + " amount")
	}
	return n, nil
}
