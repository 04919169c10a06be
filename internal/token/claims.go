package token

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/crypto"
	"github.com/llamadao/auctionhaus/internal/domain"
)

// claimPhase is a merkle-gated mint window: a capability check (proof of
// membership in the root) plus a monotonic per-claimant counter. Independent
// of the auction core.
type claimPhase struct {
	root    common.Hash
	price   *big.Int
	cap     uint64
	active  bool
	claimed map[common.Address]uint64
}

func newClaimPhase(root common.Hash, price *big.Int, limit uint64) *claimPhase {
	if price == nil {
		price = new(big.Int)
	}
	return &claimPhase{
		root:    root,
		price:   new(big.Int).Set(price),
		cap:     limit,
		claimed: make(map[common.Address]uint64),
	}
}

// tryConsume validates the claim and advances the claimant's counter. The
// counter only moves when every check passes.
func (p *claimPhase) tryConsume(claimant common.Address, proof []common.Hash) error {
	if !p.active || p.root == (common.Hash{}) {
		return domain.ErrMintNotOpen
	}
	if p.cap > 0 && p.claimed[claimant] >= p.cap {
		return domain.ErrMintCapReached
	}
	if !crypto.VerifyProof(proof, p.root, crypto.AddressLeaf(claimant)) {
		return domain.ErrInvalidProof
	}
	p.claimed[claimant]++
	return nil
}

// StartALMint opens the allowlist mint window. Owner only.
func (r *Registry) StartALMint(caller common.Address) error {
	return r.setPhaseActive(caller, r.al, true)
}

// StopALMint closes the allowlist mint window. Owner only.
func (r *Registry) StopALMint(caller common.Address) error {
	return r.setPhaseActive(caller, r.al, false)
}

// StartWLMint opens the whitelist mint window. Owner only.
func (r *Registry) StartWLMint(caller common.Address) error {
	return r.setPhaseActive(caller, r.wl, true)
}

// StopWLMint closes the whitelist mint window. Owner only.
func (r *Registry) StopWLMint(caller common.Address) error {
	return r.setPhaseActive(caller, r.wl, false)
}

func (r *Registry) setPhaseActive(caller common.Address, p *claimPhase, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return domain.ErrNotOwner
	}
	p.active = active
	return nil
}

// AllowlistMint mints one token to a claimant on the allowlist. The payment
// must match the phase price exactly and is forwarded to the collection
// owner.
func (r *Registry) AllowlistMint(claimant common.Address, proof []common.Hash, payment *big.Int) (uint64, error) {
	return r.claimMint(r.al, claimant, proof, payment)
}

// WhitelistMint mints one token to a claimant on the whitelist.
func (r *Registry) WhitelistMint(claimant common.Address, proof []common.Hash, payment *big.Int) (uint64, error) {
	return r.claimMint(r.wl, claimant, proof, payment)
}

func (r *Registry) claimMint(p *claimPhase, claimant common.Address, proof []common.Hash, payment *big.Int) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment == nil || payment.Cmp(p.price) != 0 {
		return 0, domain.ErrIncorrectPayment
	}
	if err := p.tryConsume(claimant, proof); err != nil {
		return 0, err
	}

	// Collect payment before minting; a failed transfer rolls the counter
	// back so the claim is not burned.
	if payment.Sign() > 0 {
		if err := r.bank.Transfer(claimant, r.owner, payment); err != nil {
			p.claimed[claimant]--
			return 0, fmt.Errorf("token: mint payment: %w", err)
		}
	}

	id, err := r.mintLocked(claimant)
	if err != nil {
		p.claimed[claimant]--
		if payment.Sign() > 0 {
			if rErr := r.bank.Transfer(r.owner, claimant, payment); rErr != nil {
				r.logger.Error("mint refund failed",
					slog.String("claimant", claimant.Hex()),
					slog.String("error", rErr.Error()),
				)
			}
		}
		return 0, err
	}
	return id, nil
}

// Claimed returns how many tokens a claimant has minted in the allowlist
// phase (al) or whitelist phase.
func (r *Registry) Claimed(claimant common.Address, allowlist bool) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if allowlist {
		return r.al.claimed[claimant]
	}
	return r.wl.claimed[claimant]
}
