package postgres

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// WithdrawalStore archives pull-payment refunds, including owner-forced
// stale sweeps.
type WithdrawalStore struct {
	pool *pgxpool.Pool
}

// NewWithdrawalStore creates a WithdrawalStore backed by the given pool.
func NewWithdrawalStore(pool *pgxpool.Pool) *WithdrawalStore {
	return &WithdrawalStore{pool: pool}
}

var _ domain.WithdrawalStore = (*WithdrawalStore)(nil)

// Insert archives one refund. A missing ID gets a fresh UUID.
func (s *WithdrawalStore) Insert(ctx context.Context, w domain.Withdrawal) error {
	id := w.ID
	if id == "" {
		id = uuid.NewString()
	}

	const q = `
		INSERT INTO withdrawals (id, bidder, amount, fee, stale, withdrawn_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, q,
		id,
		w.Bidder.Hex(),
		weiString(w.Amount),
		weiString(w.Fee),
		w.Stale,
		w.WithdrawnAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert withdrawal: %w", err)
	}
	return nil
}

// ListByBidder returns the archived refunds paid to one address, most recent
// first.
func (s *WithdrawalStore) ListByBidder(ctx context.Context, bidder common.Address, opts domain.ListOpts) ([]domain.Withdrawal, error) {
	const q = `
		SELECT id, bidder, amount, fee, stale, withdrawn_at
		FROM withdrawals
		WHERE bidder = $1
		ORDER BY withdrawn_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, q, bidder.Hex(), normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []domain.Withdrawal
	for rows.Next() {
		var (
			w           domain.Withdrawal
			addr        string
			amt, feeStr string
		)
		if err := rows.Scan(&w.ID, &addr, &amt, &feeStr, &w.Stale, &w.WithdrawnAt); err != nil {
			return nil, fmt.Errorf("postgres: scan withdrawal: %w", err)
		}
		w.Bidder = common.HexToAddress(addr)
		if w.Amount, err = parseWei(amt); err != nil {
			return nil, err
		}
		if w.Fee, err = parseWei(feeStr); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate withdrawals: %w", err)
	}
	return out, nil
}
