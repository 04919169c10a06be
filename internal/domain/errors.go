package domain

import "errors"

// Sentinel errors returned by the auction core. Handlers map these to HTTP
// status codes with errors.Is; the core never swallows them.
var (
	// Authorization.
	ErrNotOwner  = errors.New("caller is not the owner")
	ErrNotMinter = errors.New("caller is not the minter")

	// Validation.
	ErrWrongToken                = errors.New("token not up for auction")
	ErrBidTooLow                 = errors.New("bid below required minimum")
	ErrReserveNotMet             = errors.New("must send at least reserve price")
	ErrAuctionExpired            = errors.New("auction expired")
	ErrInvalidOwner              = errors.New("cannot set owner to zero address")
	ErrOutOfRange                = errors.New("value out of range")
	ErrInvalidSignature          = errors.New("invalid allowlist signature")
	ErrMaxWLWins                 = errors.New("already won maximum allowlist auctions")
	ErrInsufficientPendingReturns = errors.New("not enough pending returns to cover remainder")
	ErrIncorrectPayment          = errors.New("payment value does not match bid")
	ErrWLOnly                    = errors.New("allowlist phase active")
	ErrWLNotEnabled              = errors.New("allowlist bidding is not enabled")
	ErrInvalidProof              = errors.New("invalid merkle proof")
	ErrMintNotOpen               = errors.New("mint phase is not open")
	ErrMintCapReached            = errors.New("mint cap reached for claimant")
	ErrSoldOut                   = errors.New("max token supply reached")

	// State conflicts.
	ErrNoAuction      = errors.New("no auction in progress")
	ErrAlreadySettled = errors.New("auction has already been settled")
	ErrNotExpired     = errors.New("auction has not completed")
	ErrNotPaused      = errors.New("auction house is not paused")
	ErrPaused         = errors.New("auction house is paused")

	// Value movement.
	ErrTransferFailed    = errors.New("transfer failed")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Generic.
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("too many bids, slow down")
)
