package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/idhash"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// LaunchParams are the creator-chosen parameters of a new launch.
type LaunchParams struct {
	TotalSupply       uint64
	FundraisingTarget float64
	CurveType         domain.CurveType
}

// Validate checks that the curve can price the launch.
func (p LaunchParams) Validate() error {
	if p.TotalSupply == 0 {
		return fmt.Errorf("%w: total supply must be positive", ErrInvalidLaunch)
	}
	if p.TotalSupply > math.MaxInt64 {
		return fmt.Errorf("%w: total supply exceeds %d", ErrInvalidLaunch, int64(math.MaxInt64))
	}
	if !(p.FundraisingTarget > 0) || math.IsInf(p.FundraisingTarget, 0) {
		return fmt.Errorf("%w: fundraising target must be a positive finite number", ErrInvalidLaunch)
	}
	if !p.CurveType.IsValid() {
		return fmt.Errorf("%w: unknown curve type %q", ErrInvalidLaunch, p.CurveType)
	}
	return nil
}

// RegisterLaunch creates an Active launch with nothing raised from a verified
// creation transaction. The launch ID is derived from mint and signature.
func (u *Updater) RegisterLaunch(ctx context.Context, v *domain.CreationVerification, params LaunchParams) (*domain.Launch, error) {
	if v == nil || !v.Valid {
		return nil, fmt.Errorf("%w: creation not verified", ErrInvalidLaunch)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	nowMs := u.now().UnixMilli()
	launch := &domain.Launch{
		ID:                idhash.ComputeLaunchID(v.Mint, v.Signature),
		Mint:              v.Mint,
		Creator:           v.Creator,
		CreationSignature: v.Signature,
		CurveType:         params.CurveType,
		TotalSupply:       params.TotalSupply,
		FundraisingTarget: params.FundraisingTarget,
		Status:            domain.StatusActive,
		Version:           1,
		CreatedAt:         nowMs,
		UpdatedAt:         nowMs,
	}

	if err := u.launches.Insert(ctx, launch); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: mint %s", ErrAlreadyRegistered, v.Mint)
		}
		u.logger.Error("insert launch failed", zap.String("mint", v.Mint), zap.Error(err))
		return nil, fmt.Errorf("insert launch: %w", err)
	}

	observability.RecordLaunchCreated()
	u.logger.Info("launch registered",
		zap.String("launch_id", launch.ID),
		zap.String("mint", launch.Mint),
		zap.String("creator", launch.Creator),
		zap.String("curve", launch.CurveType.String()),
		zap.Float64("target", launch.FundraisingTarget),
	)
	return launch, nil
}

// ClearLaunch removes a launch and its trades.
func (u *Updater) ClearLaunch(ctx context.Context, launchID string) error {
	unlock, err := u.locks.Lock(ctx, launchID)
	if err != nil {
		return fmt.Errorf("lock launch %s: %w", launchID, err)
	}
	defer unlock()

	if err := u.launches.Delete(ctx, launchID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, launchID)
		}
		return fmt.Errorf("delete launch %s: %w", launchID, err)
	}
	u.logger.Warn("launch cleared", zap.String("launch_id", launchID))
	return nil
}
