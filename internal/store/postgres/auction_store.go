package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// AuctionStore archives settlement outcomes.
type AuctionStore struct {
	pool *pgxpool.Pool
}

// NewAuctionStore creates an AuctionStore backed by the given pool.
func NewAuctionStore(pool *pgxpool.Pool) *AuctionStore {
	return &AuctionStore{pool: pool}
}

var _ domain.AuctionStore = (*AuctionStore)(nil)

// InsertSettlement records the outcome of one settled auction. Re-inserting
// the same token overwrites the previous row so retried settlements stay
// idempotent.
func (s *AuctionStore) InsertSettlement(ctx context.Context, out domain.SettlementOutcome) error {
	const q = `
		INSERT INTO settlements (token_id, winner, amount, owner_payout, split_payout, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_id) DO UPDATE SET
			winner = EXCLUDED.winner,
			amount = EXCLUDED.amount,
			owner_payout = EXCLUDED.owner_payout,
			split_payout = EXCLUDED.split_payout,
			settled_at = EXCLUDED.settled_at`

	_, err := s.pool.Exec(ctx, q,
		int64(out.TokenID),
		out.Winner.Hex(),
		weiString(out.Amount),
		weiString(out.OwnerPayout),
		weiString(out.SplitPayout),
		out.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert settlement: %w", err)
	}
	return nil
}

// ListSettlements returns archived settlements, most recent first.
func (s *AuctionStore) ListSettlements(ctx context.Context, opts domain.ListOpts) ([]domain.SettlementOutcome, error) {
	const q = `
		SELECT token_id, winner, amount, owner_payout, split_payout, settled_at
		FROM settlements
		ORDER BY settled_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, q, normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list settlements: %w", err)
	}
	defer rows.Close()

	var out []domain.SettlementOutcome
	for rows.Next() {
		o, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list settlements: %w", err)
	}
	return out, nil
}

// GetSettlement returns the archived outcome for one token, or
// domain.ErrNotFound when the token has not settled.
func (s *AuctionStore) GetSettlement(ctx context.Context, tokenID uint64) (domain.SettlementOutcome, error) {
	const q = `
		SELECT token_id, winner, amount, owner_payout, split_payout, settled_at
		FROM settlements
		WHERE token_id = $1`

	row := s.pool.QueryRow(ctx, q, int64(tokenID))
	o, err := scanSettlement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SettlementOutcome{}, domain.ErrNotFound
	}
	return o, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (domain.SettlementOutcome, error) {
	var (
		o                         domain.SettlementOutcome
		tokenID                   int64
		winner, amt, ownerP, splP string
	)
	if err := row.Scan(&tokenID, &winner, &amt, &ownerP, &splP, &o.SettledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, err
		}
		return o, fmt.Errorf("postgres: scan settlement: %w", err)
	}
	o.TokenID = uint64(tokenID)
	o.Winner = common.HexToAddress(winner)
	var err error
	if o.Amount, err = parseWei(amt); err != nil {
		return o, err
	}
	if o.OwnerPayout, err = parseWei(ownerP); err != nil {
		return o, err
	}
	if o.SplitPayout, err = parseWei(splP); err != nil {
		return o, err
	}
	return o, nil
}

func weiString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseWei(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("postgres: invalid wei amount %q", s)
	}
	return v, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
