package postgres

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// BidStore archives every admitted bid.
type BidStore struct {
	pool *pgxpool.Pool
}

// NewBidStore creates a BidStore backed by the given pool.
func NewBidStore(pool *pgxpool.Pool) *BidStore {
	return &BidStore{pool: pool}
}

var _ domain.BidStore = (*BidStore)(nil)

// Insert archives one admitted bid. A missing ID gets a fresh UUID.
func (s *BidStore) Insert(ctx context.Context, bid domain.Bid) error {
	id := bid.ID
	if id == "" {
		id = uuid.NewString()
	}

	const q = `
		INSERT INTO bids (id, token_id, bidder, amount, allowlist, end_time, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, q,
		id,
		int64(bid.TokenID),
		bid.Bidder.Hex(),
		weiString(bid.Amount),
		bid.Allowlist,
		bid.EndTime,
		bid.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert bid: %w", err)
	}
	return nil
}

// ListByToken returns the archived bids for one token, most recent first.
func (s *BidStore) ListByToken(ctx context.Context, tokenID uint64, opts domain.ListOpts) ([]domain.Bid, error) {
	const q = `
		SELECT id, token_id, bidder, amount, allowlist, end_time, placed_at
		FROM bids
		WHERE token_id = $1
		ORDER BY placed_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, q, int64(tokenID), normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bids by token: %w", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

// ListByBidder returns the archived bids placed by one address, most recent
// first.
func (s *BidStore) ListByBidder(ctx context.Context, bidder common.Address, opts domain.ListOpts) ([]domain.Bid, error) {
	const q = `
		SELECT id, token_id, bidder, amount, allowlist, end_time, placed_at
		FROM bids
		WHERE bidder = $1
		ORDER BY placed_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, q, bidder.Hex(), normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bids by bidder: %w", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

func collectBids(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.Bid, error) {
	var out []domain.Bid
	for rows.Next() {
		var (
			b           domain.Bid
			tokenID     int64
			bidder, amt string
		)
		if err := rows.Scan(&b.ID, &tokenID, &bidder, &amt, &b.Allowlist, &b.EndTime, &b.PlacedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan bid: %w", err)
		}
		b.TokenID = uint64(tokenID)
		b.Bidder = common.HexToAddress(bidder)
		var err error
		if b.Amount, err = parseWei(amt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate bids: %w", err)
	}
	return out, nil
}
