package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// Insert adds a point. Returns ErrDuplicateKey if (launch_id, signature) exists.
// MergeTree does not enforce uniqueness, so the key is checked before insert.
func (s *PricePointStore) Insert(ctx context.Context, p *domain.PricePoint) (err error) {
	start := time.Now()
	defer func() {
		var recorded error
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			recorded = err
		}
		observability.RecordDBQuery("clickhouse", "insert_price_point", time.Since(start).Seconds(), recorded)
	}()

	if p == nil || p.LaunchID == "" || p.Signature == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, p.LaunchID, p.Signature)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_points (
			launch_id, signature, timestamp_ms, slot, direction, sol_amount, price, raised
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		p.LaunchID, p.Signature, p.TimestampMs, p.Slot,
		string(p.Direction), p.SolAmount, p.Price, p.Raised,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByLaunchID retrieves all points for a launch, ordered by timestamp ASC.
func (s *PricePointStore) GetByLaunchID(ctx context.Context, launchID string) ([]*domain.PricePoint, error) {
	query := `
		SELECT launch_id, signature, timestamp_ms, slot, direction, sol_amount, price, raised
		FROM price_points FINAL
		WHERE launch_id = ?
		ORDER BY timestamp_ms ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, launchID)
	if err != nil {
		return nil, fmt.Errorf("query by launch id: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// GetByTimeRange retrieves points for a launch within [start, end] (inclusive).
func (s *PricePointStore) GetByTimeRange(ctx context.Context, launchID string, start, end int64) ([]*domain.PricePoint, error) {
	query := `
		SELECT launch_id, signature, timestamp_ms, slot, direction, sol_amount, price, raised
		FROM price_points FINAL
		WHERE launch_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, launchID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

func (s *PricePointStore) exists(ctx context.Context, launchID, signature string) (bool, error) {
	query := `
		SELECT count(*) FROM price_points
		WHERE launch_id = ? AND signature = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, launchID, signature).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanPricePoints(rows chRows) ([]*domain.PricePoint, error) {
	points := make([]*domain.PricePoint, 0)

	for rows.Next() {
		var p domain.PricePoint
		var direction string

		err := rows.Scan(
			&p.LaunchID, &p.Signature, &p.TimestampMs, &p.Slot,
			&direction, &p.SolAmount, &p.Price, &p.Raised,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price point row: %w", err)
		}

		p.Direction = domain.TradeDirection(direction)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price point rows: %w", err)
	}

	return points, nil
}
