package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// LaunchStore implements storage.LaunchStore using PostgreSQL.
type LaunchStore struct {
	pool *Pool
}

// NewLaunchStore creates a new LaunchStore.
func NewLaunchStore(pool *Pool) *LaunchStore {
	return &LaunchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LaunchStore = (*LaunchStore)(nil)

const launchColumns = `
	id, mint, creator, creation_signature, curve_type, total_supply,
	fundraising_target, current_raised, volume_sol, trade_count,
	status, version, created_at, updated_at, graduated_at
`

// Insert adds a new launch. Returns ErrDuplicateKey if id or mint exists.
func (s *LaunchStore) Insert(ctx context.Context, l *domain.Launch) error {
	if l == nil || l.ID == "" || l.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO launches (` + launchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.pool.Exec(ctx, query,
		l.ID, l.Mint, l.Creator, l.CreationSignature, string(l.CurveType), int64(l.TotalSupply),
		l.FundraisingTarget, l.CurrentRaised, l.VolumeSOL, l.TradeCount,
		string(l.Status), l.Version, l.CreatedAt, l.UpdatedAt, l.GraduatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert launch: %w", err)
	}
	return nil
}

// GetByID retrieves a launch by its ID. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByID(ctx context.Context, id string) (*domain.Launch, error) {
	query := `SELECT ` + launchColumns + ` FROM launches WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByMint retrieves a launch by mint address. Returns ErrNotFound if not exists.
func (s *LaunchStore) GetByMint(ctx context.Context, mint string) (*domain.Launch, error) {
	query := `SELECT ` + launchColumns + ` FROM launches WHERE mint = $1`
	return s.getOne(ctx, query, mint)
}

func (s *LaunchStore) getOne(ctx context.Context, query string, arg string) (*domain.Launch, error) {
	l, err := scanLaunch(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get launch: %w", err)
	}
	return l, nil
}

// List returns launches ordered by created_at DESC, id ASC.
func (s *LaunchStore) List(ctx context.Context, limit, offset int) ([]*domain.Launch, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + launchColumns + `
		FROM launches
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list launches: %w", err)
	}
	defer rows.Close()

	launches := make([]*domain.Launch, 0)
	for rows.Next() {
		l, err := scanLaunch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		launches = append(launches, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launches: %w", err)
	}
	return launches, nil
}

// CommitTrade inserts the trade and updates the launch in one transaction.
// The update is guarded by the version column.
func (s *LaunchStore) CommitTrade(ctx context.Context, next *domain.Launch, expectedVersion int64, trade *domain.TradeRecord) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "commit_trade", time.Since(start).Seconds(), unexpected(err))
	}()
	return s.commitTrade(ctx, next, expectedVersion, trade)
}

func (s *LaunchStore) commitTrade(ctx context.Context, next *domain.Launch, expectedVersion int64, trade *domain.TradeRecord) error {
	if next == nil || trade == nil || trade.Signature == "" || trade.LaunchID != next.ID {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE launches SET
			current_raised = $3, volume_sol = $4, trade_count = $5,
			status = $6, version = $7, updated_at = $8, graduated_at = $9
		WHERE id = $1 AND version = $2
	`,
		next.ID, expectedVersion,
		next.CurrentRaised, next.VolumeSOL, next.TradeCount,
		string(next.Status), next.Version, next.UpdatedAt, next.GraduatedAt,
	)
	if err != nil {
		if isSerializationError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("update launch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM launches WHERE id = $1)`, next.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check launch exists: %w", err)
		}
		if !exists {
			return storage.ErrNotFound
		}
		return storage.ErrConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trades (
			signature, launch_id, mint, actor, direction,
			sol_amount, token_amount, slot, block_time, applied_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		trade.Signature, trade.LaunchID, trade.Mint, trade.Actor, string(trade.Direction),
		trade.SolAmount, trade.TokenAmount, trade.Slot, trade.BlockTime, trade.AppliedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isSerializationError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Delete removes a launch. Trades go with it via ON DELETE CASCADE.
func (s *LaunchStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM launches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete launch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanLaunch(row pgx.Row) (*domain.Launch, error) {
	var l domain.Launch
	var curveType, status string
	var totalSupply int64

	err := row.Scan(
		&l.ID, &l.Mint, &l.Creator, &l.CreationSignature, &curveType, &totalSupply,
		&l.FundraisingTarget, &l.CurrentRaised, &l.VolumeSOL, &l.TradeCount,
		&status, &l.Version, &l.CreatedAt, &l.UpdatedAt, &l.GraduatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.TotalSupply = uint64(totalSupply)
	l.CurveType = domain.CurveType(curveType)
	l.Status = domain.LaunchStatus(status)
	return &l, nil
}

// unexpected drops the sentinel outcomes callers handle as normal control flow.
func unexpected(err error) error {
	switch {
	case err == nil,
		errors.Is(err, storage.ErrConflict),
		errors.Is(err, storage.ErrDuplicateKey),
		errors.Is(err, storage.ErrNotFound):
		return nil
	}
	return err
}
