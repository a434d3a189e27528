package storage

import (
	"context"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
)

// LaunchStore provides access to launches storage.
type LaunchStore interface {
	// Insert adds a new launch. Returns ErrDuplicateKey if id or mint exists.
	Insert(ctx context.Context, l *domain.Launch) error

	// GetByID retrieves a launch by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Launch, error)

	// GetByMint retrieves a launch by mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.Launch, error)

	// List returns launches ordered by created_at DESC.
	List(ctx context.Context, limit, offset int) ([]*domain.Launch, error)

	// CommitTrade atomically records trade and replaces the launch row with next,
	// provided the stored version still equals expectedVersion.
	// Returns ErrDuplicateKey if the trade signature was already consumed,
	// ErrConflict if the version moved, ErrNotFound if the launch is gone.
	// Nothing is written unless every condition holds.
	CommitTrade(ctx context.Context, next *domain.Launch, expectedVersion int64, trade *domain.TradeRecord) error

	// Delete removes a launch and its trades. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id string) error
}

// TradeStore provides read access to applied trades.
type TradeStore interface {
	// GetBySignature retrieves a trade by transaction signature. Returns ErrNotFound if not exists.
	GetBySignature(ctx context.Context, signature string) (*domain.TradeRecord, error)

	// GetByLaunchID retrieves trades for a launch ordered by slot ASC, signature ASC.
	// limit <= 0 means no limit.
	GetByLaunchID(ctx context.Context, launchID string, limit int) ([]*domain.TradeRecord, error)
}

// PricePointStore provides access to price_points storage.
type PricePointStore interface {
	// Insert adds a point. Returns ErrDuplicateKey if (launch_id, signature) exists.
	Insert(ctx context.Context, p *domain.PricePoint) error

	// GetByLaunchID retrieves all points for a launch, ordered by timestamp ASC.
	GetByLaunchID(ctx context.Context, launchID string) ([]*domain.PricePoint, error)

	// GetByTimeRange retrieves points for a launch within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, launchID string, start, end int64) ([]*domain.PricePoint, error)
}
