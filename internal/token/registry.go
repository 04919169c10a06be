// Package token implements the NFT supply collaborator: a sequentially
// minted token registry with a minter role, owner airdrops, and merkle-gated
// allowlist/whitelist mint phases. The auction house consumes only the
// minimal mint/transfer/ownerOf surface; everything else is collection
// bookkeeping.
package token

import (
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// Config describes a collection at deployment time.
type Config struct {
	Name      string
	Symbol    string
	Owner     common.Address
	MaxSupply uint64

	// Premint receives one token per entry at construction, before any
	// public minting.
	Premint []common.Address

	// Merkle mint phases. Zero roots disable the corresponding phase
	// entirely.
	AllowlistRoot  common.Hash
	WhitelistRoot  common.Hash
	AllowlistPrice *big.Int
	WhitelistPrice *big.Int
	AllowlistCap   uint64
	WhitelistCap   uint64
}

// Registry is the in-process token ledger.
type Registry struct {
	mu sync.Mutex

	name      string
	symbol    string
	owner     common.Address
	minter    common.Address
	maxSupply uint64

	nextID   uint64
	owners   map[uint64]common.Address
	balances map[common.Address]uint64

	al *claimPhase
	wl *claimPhase

	bank   domain.Bank
	logger *slog.Logger
}

// New creates a Registry and performs the configured premint.
func New(cfg Config, bank domain.Bank, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		name:      cfg.Name,
		symbol:    cfg.Symbol,
		owner:     cfg.Owner,
		maxSupply: cfg.MaxSupply,
		owners:    make(map[uint64]common.Address),
		balances:  make(map[common.Address]uint64),
		al:        newClaimPhase(cfg.AllowlistRoot, cfg.AllowlistPrice, cfg.AllowlistCap),
		wl:        newClaimPhase(cfg.WhitelistRoot, cfg.WhitelistPrice, cfg.WhitelistCap),
		bank:      bank,
		logger:    logger.With(slog.String("component", "token")),
	}

	for _, to := range cfg.Premint {
		if _, err := r.mintLocked(to); err != nil {
			return nil, fmt.Errorf("token: premint: %w", err)
		}
	}
	return r, nil
}

// Name returns the collection name.
func (r *Registry) Name() string { return r.name }

// Symbol returns the collection symbol.
func (r *Registry) Symbol() string { return r.symbol }

// Owner returns the collection owner.
func (r *Registry) Owner() common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

// Minter returns the address currently holding the minter role.
func (r *Registry) Minter() common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minter
}

// SetMinter grants the minter role, typically to the auction house.
func (r *Registry) SetMinter(caller, minter common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return domain.ErrNotOwner
	}
	r.minter = minter
	return nil
}

// SetOwner transfers collection ownership.
func (r *Registry) SetOwner(caller, newOwner common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return domain.ErrNotOwner
	}
	if newOwner == domain.ZeroAddress {
		return domain.ErrInvalidOwner
	}
	r.owner = newOwner
	return nil
}

// MintNext mints the next sequential token to the given address. Only the
// minter or the owner may call it.
func (r *Registry) MintNext(caller, to common.Address) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.minter && caller != r.owner {
		return 0, domain.ErrNotMinter
	}
	return r.mintLocked(to)
}

// Airdrop mints one token per entry to the given addresses. Owner only.
func (r *Registry) Airdrop(caller common.Address, recipients []common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return domain.ErrNotOwner
	}
	for _, to := range recipients {
		if _, err := r.mintLocked(to); err != nil {
			return err
		}
	}
	return nil
}

// Transfer moves a token. The caller must currently own it.
func (r *Registry) Transfer(caller common.Address, tokenID uint64, to common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, ok := r.owners[tokenID]
	if !ok {
		return fmt.Errorf("token: transfer %d: %w", tokenID, domain.ErrNotFound)
	}
	if holder != caller {
		return fmt.Errorf("token: transfer %d: caller %s does not own token", tokenID, caller.Hex())
	}
	r.owners[tokenID] = to
	r.balances[holder]--
	r.balances[to]++
	return nil
}

// OwnerOf returns the current owner of a token.
func (r *Registry) OwnerOf(tokenID uint64) (common.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, ok := r.owners[tokenID]
	if !ok {
		return common.Address{}, fmt.Errorf("token: owner of %d: %w", tokenID, domain.ErrNotFound)
	}
	return holder, nil
}

// BalanceOf returns the number of tokens an address holds.
func (r *Registry) BalanceOf(addr common.Address) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[addr]
}

// TokenCount returns the total number of tokens minted so far.
func (r *Registry) TokenCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID
}

// MaxSupply returns the supply cap; zero means uncapped.
func (r *Registry) MaxSupply() uint64 { return r.maxSupply }

// TokensOf enumerates the token ids held by an address, ascending.
func (r *Registry) TokensOf(addr common.Address) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint64
	for id, holder := range r.owners {
		if holder == addr {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// mintLocked must be called with the lock held.
func (r *Registry) mintLocked(to common.Address) (uint64, error) {
	if r.maxSupply > 0 && r.nextID >= r.maxSupply {
		return 0, domain.ErrSoldOut
	}
	id := r.nextID
	r.nextID++
	r.owners[id] = to
	r.balances[to]++
	return id, nil
}

var _ domain.TokenRegistry = (*Registry)(nil)
