package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
// Rows are written by LaunchStore.CommitTrade.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	signature, launch_id, mint, actor, direction,
	sol_amount, token_amount, slot, block_time, applied_at
`

// GetBySignature retrieves a trade by transaction signature. Returns ErrNotFound if not exists.
func (s *TradeStore) GetBySignature(ctx context.Context, signature string) (*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE signature = $1`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, signature))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade: %w", err)
	}
	return t, nil
}

// GetByLaunchID retrieves trades for a launch ordered by slot ASC, signature ASC.
func (s *TradeStore) GetByLaunchID(ctx context.Context, launchID string, limit int) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE launch_id = $1
		ORDER BY slot ASC, signature ASC
	`
	args := []any{launchID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades by launch: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.TradeRecord, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return trades, nil
}

func scanTrade(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var direction string

	err := row.Scan(
		&t.Signature, &t.LaunchID, &t.Mint, &t.Actor, &direction,
		&t.SolAmount, &t.TokenAmount, &t.Slot, &t.BlockTime, &t.AppliedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Direction = domain.TradeDirection(direction)
	return &t, nil
}
