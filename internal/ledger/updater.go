// Package ledger applies verified trades to persisted launch state.
//
// Writes for one launch are serialized twice: by an in-process keyed mutex and
// by the store's version compare-and-set, which also covers other processes
// sharing the database. A lost CAS is retried with backoff.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/curve"
	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
)

// Default configuration values.
const (
	DefaultMaxRetries      = 5
	DefaultLockShards      = 64
	DefaultRetryInterval   = 10 * time.Millisecond
	DefaultMaxRetryBackoff = 200 * time.Millisecond
)

// Config controls serialization and retry behavior.
type Config struct {
	MaxRetries      int // CAS retries after the first attempt
	LockShards      int
	RetryInterval   time.Duration
	MaxRetryBackoff time.Duration
}

// DefaultConfig returns the default ledger settings.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      DefaultMaxRetries,
		LockShards:      DefaultLockShards,
		RetryInterval:   DefaultRetryInterval,
		MaxRetryBackoff: DefaultMaxRetryBackoff,
	}
}

// Publisher receives the launch state after every applied trade.
type Publisher interface {
	Publish(launch *domain.Launch)
}

// Result describes an applied trade.
type Result struct {
	Launch    *domain.Launch
	Trade     *domain.TradeRecord
	Graduated bool // this trade moved the launch to Graduated
}

// Updater mutates launches. Safe for concurrent use.
type Updater struct {
	launches  storage.LaunchStore
	prices    storage.PricePointStore // optional
	publisher Publisher               // optional
	policy    curve.Policy
	cfg       Config
	locks     *keyedMutex
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Updater.
type Option func(*Updater)

// WithPricePoints records a price point after every applied trade.
func WithPricePoints(store storage.PricePointStore) Option {
	return func(u *Updater) { u.prices = store }
}

// WithPublisher notifies p after every applied trade.
func WithPublisher(p Publisher) Option {
	return func(u *Updater) { u.publisher = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) { u.now = now }
}

// NewUpdater creates a ledger updater.
func NewUpdater(launches storage.LaunchStore, policy curve.Policy, cfg Config, logger *zap.Logger, opts ...Option) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.MaxRetryBackoff < cfg.RetryInterval {
		cfg.MaxRetryBackoff = cfg.RetryInterval
	}
	u := &Updater{
		launches: launches,
		policy:   policy,
		cfg:      cfg,
		locks:    newKeyedMutex(cfg.LockShards),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ApplyBuy adds the chain-resolved SOL of v to the launch's raised amount and
// graduates the launch once the target is reached.
func (u *Updater) ApplyBuy(ctx context.Context, launchID string, v *domain.TradeVerification) (*Result, error) {
	return u.apply(ctx, domain.DirectionBuy, launchID, v)
}

// ApplySell records a verified sell. Raised is cumulative inflow, so only
// volume and trade count change.
func (u *Updater) ApplySell(ctx context.Context, launchID string, v *domain.TradeVerification) (*Result, error) {
	return u.apply(ctx, domain.DirectionSell, launchID, v)
}

func (u *Updater) apply(ctx context.Context, dir domain.TradeDirection, launchID string, v *domain.TradeVerification) (*Result, error) {
	if err := checkVerification(dir, v); err != nil {
		return nil, err
	}

	unlock, err := u.locks.Lock(ctx, launchID)
	if err != nil {
		return nil, fmt.Errorf("lock launch %s: %w", launchID, err)
	}
	defer unlock()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = u.cfg.RetryInterval
	policy.MaxInterval = u.cfg.MaxRetryBackoff

	attempt := 0
	operation := func() (*Result, error) {
		attempt++
		return u.commit(ctx, dir, launchID, v)
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(u.cfg.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			u.logger.Debug("ledger CAS lost, retrying",
				zap.String("launch_id", launchID),
				zap.String("signature", v.Signature),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		} else if errors.Is(err, storage.ErrConflict) {
			err = fmt.Errorf("%w: %d attempts on %s", ErrConflict, attempt, launchID)
		}
		u.logger.Warn("trade not applied",
			zap.String("launch_id", launchID),
			zap.String("signature", v.Signature),
			zap.String("direction", dir.String()),
			zap.Float64("sol_amount", v.ResolvedSolAmount),
			zap.Error(err),
		)
		return nil, err
	}

	u.afterCommit(ctx, res)
	return res, nil
}

// commit performs one read-modify-CAS cycle. Only storage.ErrConflict is retryable.
func (u *Updater) commit(ctx context.Context, dir domain.TradeDirection, launchID string, v *domain.TradeVerification) (*Result, error) {
	launch, err := u.launches.GetByID(ctx, launchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, launchID))
		}
		return nil, backoff.Permanent(fmt.Errorf("load launch %s: %w", launchID, err))
	}

	if launch.Mint != v.Mint {
		return nil, backoff.Permanent(fmt.Errorf("%w: mint %s does not belong to launch %s", ErrInvalidTrade, v.Mint, launchID))
	}
	switch launch.Status {
	case domain.StatusActive:
	case domain.StatusGraduated:
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrAlreadyGraduated, launchID))
	default:
		return nil, backoff.Permanent(fmt.Errorf("%w: %s is %s", ErrNotActive, launchID, launch.Status))
	}

	nowMs := u.now().UnixMilli()
	next := *launch
	next.VolumeSOL += v.ResolvedSolAmount
	next.TradeCount++
	next.Version = launch.Version + 1
	next.UpdatedAt = nowMs

	graduated := false
	if dir == domain.DirectionBuy {
		next.CurrentRaised += v.ResolvedSolAmount
		if next.CurrentRaised >= next.FundraisingTarget {
			next.Status = domain.StatusGraduated
			next.GraduatedAt = &nowMs
			graduated = true
		}
	}

	trade := &domain.TradeRecord{
		Signature:   v.Signature,
		LaunchID:    launch.ID,
		Mint:        v.Mint,
		Actor:       v.Actor,
		Direction:   dir,
		SolAmount:   v.ResolvedSolAmount,
		TokenAmount: v.ResolvedTokenAmount,
		Slot:        v.Slot,
		BlockTime:   v.BlockTime,
		AppliedAt:   nowMs,
	}

	err = u.launches.CommitTrade(ctx, &next, launch.Version, trade)
	switch {
	case err == nil:
		return &Result{Launch: &next, Trade: trade, Graduated: graduated}, nil
	case errors.Is(err, storage.ErrConflict):
		observability.RecordLedgerConflict()
		return nil, err
	case errors.Is(err, storage.ErrDuplicateKey):
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrAlreadyApplied, v.Signature))
	case errors.Is(err, storage.ErrNotFound):
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, launchID))
	default:
		return nil, backoff.Permanent(fmt.Errorf("commit trade %s: %w", v.Signature, err))
	}
}

// afterCommit records metrics, price history and notifies subscribers.
// The trade is already durable; failures here are logged, not returned.
func (u *Updater) afterCommit(ctx context.Context, res *Result) {
	launch, trade := res.Launch, res.Trade

	observability.RecordTradeApplied(trade.Direction.String(), raisedDelta(trade))
	if res.Graduated {
		observability.RecordGraduation()
		u.logger.Info("launch graduated",
			zap.String("launch_id", launch.ID),
			zap.String("mint", launch.Mint),
			zap.Float64("raised", launch.CurrentRaised),
			zap.Float64("target", launch.FundraisingTarget),
		)
	}
	u.logger.Info("trade applied",
		zap.String("launch_id", launch.ID),
		zap.String("signature", trade.Signature),
		zap.String("direction", trade.Direction.String()),
		zap.Float64("sol_amount", trade.SolAmount),
		zap.Float64("raised", launch.CurrentRaised),
		zap.Int64("version", launch.Version),
	)

	if u.prices != nil {
		point := &domain.PricePoint{
			LaunchID:    launch.ID,
			Signature:   trade.Signature,
			TimestampMs: trade.AppliedAt,
			Slot:        trade.Slot,
			Direction:   trade.Direction,
			SolAmount:   trade.SolAmount,
			Price:       u.policy.SpotPrice(curve.StateOf(launch)),
			Raised:      launch.CurrentRaised,
		}
		if err := u.prices.Insert(ctx, point); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			u.logger.Error("record price point failed",
				zap.String("launch_id", launch.ID),
				zap.String("signature", trade.Signature),
				zap.Error(err),
			)
		}
	}

	if u.publisher != nil {
		snapshot := *launch
		u.publisher.Publish(&snapshot)
	}
}

func raisedDelta(t *domain.TradeRecord) float64 {
	if t.Direction == domain.DirectionBuy {
		return t.SolAmount
	}
	return 0
}

func checkVerification(dir domain.TradeDirection, v *domain.TradeVerification) error {
	if v == nil || !v.Valid {
		return fmt.Errorf("%w: verification missing or invalid", ErrInvalidTrade)
	}
	if v.Direction != dir {
		return fmt.Errorf("%w: verified %s applied as %s", ErrInvalidTrade, v.Direction, dir)
	}
	if v.Signature == "" || v.Mint == "" {
		return fmt.Errorf("%w: signature and mint required", ErrInvalidTrade)
	}
	if !(v.ResolvedSolAmount > 0) || math.IsInf(v.ResolvedSolAmount, 0) {
		return fmt.Errorf("%w: resolved SOL amount %v", ErrInvalidTrade, v.ResolvedSolAmount)
	}
	return nil
}
