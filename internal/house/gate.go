package house

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// WLPhaseTag is the claim tag the designated signer commits to when
// authorizing a bidder for the allowlist phase. It binds signatures to this
// deployment phase so they cannot be replayed elsewhere.
const WLPhaseTag = "llamas-wl-auction"

// ClaimVerifier recovers the signer of an allowlist bid claim. Implemented by
// the crypto package; treated as opaque here.
type ClaimVerifier interface {
	RecoverBidClaim(phaseTag string, bidder common.Address, sig []byte) (common.Address, error)
}

// EligibilityGate is consulted before a bid is admitted. At most one gate is
// active per deployment; the house picks it from its current configuration.
type EligibilityGate interface {
	// Admit returns nil when the bidder may bid, or a validation error.
	// wins is the bidder's recorded allowlist win count.
	Admit(bidder common.Address, sig []byte, wins uint64) error
}

// publicGate admits everyone.
type publicGate struct{}

func (publicGate) Admit(common.Address, []byte, uint64) error { return nil }

// allowlistGate admits only bidders carrying a claim signed by the designated
// signer, optionally capped by a per-bidder win count. The win check runs
// first so an over-cap bidder is rejected even with a valid signature.
type allowlistGate struct {
	verifier ClaimVerifier
	signer   common.Address
	maxWins  uint64
}

func (g allowlistGate) Admit(bidder common.Address, sig []byte, wins uint64) error {
	if g.maxWins > 0 && wins >= g.maxWins {
		return domain.ErrMaxWLWins
	}
	if len(sig) == 0 {
		return domain.ErrInvalidSignature
	}
	recovered, err := g.verifier.RecoverBidClaim(WLPhaseTag, bidder, sig)
	if err != nil || recovered != g.signer {
		return domain.ErrInvalidSignature
	}
	return nil
}
