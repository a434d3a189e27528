// Package quote prices curve trades against the live launch ledger.
// It never mutates state; quotes may observe a slightly stale raised amount.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/curve"
	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// Errors returned by the quote service.
var (
	ErrInvalidAmount = errors.New("amount must be a positive finite number")
	ErrNotFound      = errors.New("launch not found")
	ErrNotActive     = errors.New("launch is not active")
)

// Curve sampling bounds for GetPriceCurve.
const (
	DefaultCurvePoints = 50
	MaxCurvePoints     = 500
)

// Snapshot is a launch together with its current curve position.
type Snapshot struct {
	Launch   *domain.Launch
	Price    float64 // SOL per token at current progress
	Progress float64
}

// Service computes quotes. Safe for concurrent use.
type Service struct {
	launches storage.LaunchStore
	policy   curve.Policy
	logger   *zap.Logger
}

// NewService creates a quote service.
func NewService(launches storage.LaunchStore, policy curve.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{launches: launches, policy: policy, logger: logger}
}

// Policy returns the curve policy quotes are computed with.
func (s *Service) Policy() curve.Policy {
	return s.policy
}

// GetBuyQuote prices spending solAmount SOL on the launch's curve.
func (s *Service) GetBuyQuote(ctx context.Context, launchID string, solAmount float64) (*domain.Quote, error) {
	launch, err := s.tradable(ctx, domain.DirectionBuy, launchID, solAmount)
	if err != nil {
		return nil, err
	}

	res := s.policy.BuyQuote(curve.StateOf(launch), solAmount)
	observability.RecordQuote(domain.DirectionBuy.String(), launch.CurveType.String())

	return &domain.Quote{
		LaunchID:     launch.ID,
		Direction:    domain.DirectionBuy,
		AmountIn:     res.AmountIn,
		AmountOut:    res.AmountOut,
		Fee:          res.Fee,
		PriceImpact:  res.PriceImpact,
		CurrentPrice: res.PriceStart,
		NewPrice:     res.PriceEnd,
		WillGraduate: launch.CurrentRaised+res.Net >= launch.FundraisingTarget,
	}, nil
}

// GetSellQuote prices selling tokenAmount tokens back into the launch's curve.
func (s *Service) GetSellQuote(ctx context.Context, launchID string, tokenAmount float64) (*domain.Quote, error) {
	launch, err := s.tradable(ctx, domain.DirectionSell, launchID, tokenAmount)
	if err != nil {
		return nil, err
	}

	res := s.policy.SellQuote(curve.StateOf(launch), tokenAmount)
	observability.RecordQuote(domain.DirectionSell.String(), launch.CurveType.String())

	return &domain.Quote{
		LaunchID:     launch.ID,
		Direction:    domain.DirectionSell,
		AmountIn:     res.AmountIn,
		AmountOut:    res.AmountOut,
		Fee:          res.Fee,
		PriceImpact:  res.PriceImpact,
		CurrentPrice: res.PriceStart,
		NewPrice:     res.PriceEnd,
	}, nil
}

// GetPriceCurve samples the launch's curve over progress [0, 1].
// points <= 0 selects DefaultCurvePoints; larger values are capped at MaxCurvePoints.
func (s *Service) GetPriceCurve(ctx context.Context, launchID string, points int) ([]domain.CurvePoint, error) {
	launch, err := s.load(ctx, launchID)
	if err != nil {
		return nil, err
	}
	if err := checkParams(launch); err != nil {
		return nil, err
	}

	switch {
	case points <= 0:
		points = DefaultCurvePoints
	case points > MaxCurvePoints:
		points = MaxCurvePoints
	}
	return s.policy.PriceSeries(curve.StateOf(launch), points), nil
}

// GetSnapshot returns the launch with its current price and progress.
func (s *Service) GetSnapshot(ctx context.Context, launchID string) (*Snapshot, error) {
	launch, err := s.load(ctx, launchID)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Launch: launch, Progress: launch.Progress()}
	if checkParams(launch) == nil {
		snap.Price = s.policy.SpotPrice(curve.StateOf(launch))
	}
	return snap, nil
}

// tradable validates amount and loads an active launch.
func (s *Service) tradable(ctx context.Context, dir domain.TradeDirection, launchID string, amount float64) (*domain.Launch, error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		observability.RecordQuoteError(dir.String(), "invalid_amount")
		return nil, ErrInvalidAmount
	}

	launch, err := s.load(ctx, launchID)
	if err != nil {
		reason := "internal"
		if errors.Is(err, ErrNotFound) {
			reason = "not_found"
		}
		observability.RecordQuoteError(dir.String(), reason)
		return nil, err
	}

	if !launch.IsActive() {
		observability.RecordQuoteError(dir.String(), "not_active")
		return nil, fmt.Errorf("%w: %s is %s", ErrNotActive, launch.ID, launch.Status)
	}
	if err := checkParams(launch); err != nil {
		observability.RecordQuoteError(dir.String(), "not_active")
		return nil, err
	}
	return launch, nil
}

func (s *Service) load(ctx context.Context, launchID string) (*domain.Launch, error) {
	launch, err := s.launches.GetByID(ctx, launchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, launchID)
		}
		s.logger.Error("load launch failed", zap.String("launch_id", launchID), zap.Error(err))
		return nil, fmt.Errorf("load launch %s: %w", launchID, err)
	}
	return launch, nil
}

// checkParams rejects launches the curve cannot price.
func checkParams(l *domain.Launch) error {
	if l.TotalSupply == 0 || !(l.FundraisingTarget > 0) || !l.CurveType.IsValid() {
		return fmt.Errorf("%w: %s has no tradable curve", ErrNotActive, l.ID)
	}
	return nil
}
