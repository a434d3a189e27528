package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HeroDappDev/Claude-Fun/internal/curve"
	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
	"github.com/HeroDappDev/Claude-Fun/internal/storage/memory"
)

func newTestService(t *testing.T, launches ...*domain.Launch) *Service {
	t.Helper()
	store := memory.NewLaunchStore(memory.NewTradeStore())
	for _, l := range launches {
		require.NoError(t, store.Insert(context.Background(), l))
	}
	return NewService(store, curve.DefaultPolicy(), nil)
}

func testLaunch(id string, c domain.CurveType, raised float64) *domain.Launch {
	return &domain.Launch{
		ID:                id,
		Mint:              "mint-" + id,
		Creator:           "creator",
		CreationSignature: "sig-" + id,
		CurveType:         c,
		TotalSupply:       1_000_000_000,
		FundraisingTarget: 85,
		CurrentRaised:     raised,
		Status:            domain.StatusActive,
		Version:           1,
		CreatedAt:         1704067200000,
		UpdatedAt:         1704067200000,
	}
}

func TestGetBuyQuote_LinearScenario(t *testing.T) {
	svc := newTestService(t, testLaunch("l1", domain.CurveLinear, 0))

	q, err := svc.GetBuyQuote(context.Background(), "l1", 1.0)
	require.NoError(t, err)

	initial := 85 / (0.8 * 1e9)
	net := 1.0 - 1.0*0.0025
	progressEnd := net / 85
	priceEnd := initial + initial*0.5*progressEnd
	want := net / ((initial + priceEnd) / 2)

	assert.InEpsilon(t, want, q.AmountOut, 0.001)
	assert.InDelta(t, 9.38e6, q.AmountOut, 0.01e6)
	assert.InDelta(t, 0.0025, q.Fee, 1e-12)
	assert.InDelta(t, 1.0, q.Fee+net, 1e-9)
	assert.InDelta(t, initial, q.CurrentPrice, 1e-18)
	assert.Greater(t, q.NewPrice, q.CurrentPrice)
	assert.False(t, q.WillGraduate)
	assert.Equal(t, domain.DirectionBuy, q.Direction)
}

func TestGetBuyQuote_WillGraduate(t *testing.T) {
	svc := newTestService(t, testLaunch("l1", domain.CurveExponential, 84.5))

	q, err := svc.GetBuyQuote(context.Background(), "l1", 1.0)
	require.NoError(t, err)
	assert.True(t, q.WillGraduate)

	q, err = svc.GetBuyQuote(context.Background(), "l1", 0.1)
	require.NoError(t, err)
	assert.False(t, q.WillGraduate)
}

func TestGetBuyQuote_RaisedEqualsTarget(t *testing.T) {
	active := testLaunch("at-target", domain.CurveLinear, 85)
	graduated := testLaunch("graduated", domain.CurveLinear, 85)
	graduated.Status = domain.StatusGraduated
	svc := newTestService(t, active, graduated)

	q, err := svc.GetBuyQuote(context.Background(), "at-target", 0.5)
	require.NoError(t, err)
	assert.True(t, q.WillGraduate)

	_, err = svc.GetBuyQuote(context.Background(), "graduated", 0.5)
	assert.ErrorIs(t, err, ErrNotActive)

	_, err = svc.GetSellQuote(context.Background(), "graduated", 100)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestGetBuyQuote_PositiveForAllCurves(t *testing.T) {
	for _, c := range []domain.CurveType{domain.CurveLinear, domain.CurveExponential, domain.CurveLogarithmic} {
		t.Run(c.String(), func(t *testing.T) {
			svc := newTestService(t, testLaunch("l1", c, 10))
			q, err := svc.GetBuyQuote(context.Background(), "l1", 0.01)
			require.NoError(t, err)
			assert.Greater(t, q.AmountOut, 0.0)
		})
	}
}

func TestGetSellQuote(t *testing.T) {
	svc := newTestService(t, testLaunch("l1", domain.CurveLinear, 42.5))

	q, err := svc.GetSellQuote(context.Background(), "l1", 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, domain.DirectionSell, q.Direction)
	assert.Greater(t, q.AmountOut, 0.0)
	assert.Less(t, q.NewPrice, q.CurrentPrice)
	assert.InDelta(t, q.AmountOut*0.0025/(1-0.0025), q.Fee, 1e-12)
	assert.False(t, q.WillGraduate)
}

func TestGetSellQuote_PayoutCappedByRaised(t *testing.T) {
	svc := newTestService(t, testLaunch("l1", domain.CurveLinear, 0.5))

	q, err := svc.GetSellQuote(context.Background(), "l1", 500_000_000)
	require.NoError(t, err)
	assert.LessOrEqual(t, q.AmountOut+q.Fee, 0.5+1e-12)
}

func TestQuote_Rejections(t *testing.T) {
	svc := newTestService(t, testLaunch("l1", domain.CurveLinear, 0))
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"buy zero", func() error { _, err := svc.GetBuyQuote(ctx, "l1", 0); return err }, ErrInvalidAmount},
		{"buy negative", func() error { _, err := svc.GetBuyQuote(ctx, "l1", -1); return err }, ErrInvalidAmount},
		{"sell zero", func() error { _, err := svc.GetSellQuote(ctx, "l1", 0); return err }, ErrInvalidAmount},
		{"buy unknown", func() error { _, err := svc.GetBuyQuote(ctx, "missing", 1); return err }, ErrNotFound},
		{"sell unknown", func() error { _, err := svc.GetSellQuote(ctx, "missing", 1); return err }, ErrNotFound},
		{"curve unknown", func() error { _, err := svc.GetPriceCurve(ctx, "missing", 10); return err }, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.wantErr)
		})
	}
}

func TestGetPriceCurve(t *testing.T) {
	svc := newTestService(t, testLaunch("l1", domain.CurveLogarithmic, 0))
	ctx := context.Background()

	points, err := svc.GetPriceCurve(ctx, "l1", 10)
	require.NoError(t, err)
	require.Len(t, points, 11)
	assert.Equal(t, 0.0, points[0].Progress)
	assert.Equal(t, 1.0, points[10].Progress)
	assert.InDelta(t, 85.0, points[10].Raised, 1e-9)

	points, err = svc.GetPriceCurve(ctx, "l1", 0)
	require.NoError(t, err)
	assert.Len(t, points, DefaultCurvePoints+1)

	points, err = svc.GetPriceCurve(ctx, "l1", 10_000)
	require.NoError(t, err)
	assert.Len(t, points, MaxCurvePoints+1)
}

func TestGetSnapshot(t *testing.T) {
	svc := newTestService(t, testLaunch("l1", domain.CurveLinear, 42.5))

	snap, err := svc.GetSnapshot(context.Background(), "l1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, snap.Progress, 1e-12)
	assert.InDelta(t, 1.0625e-7*1.25, snap.Price, 1e-18)

	_, err = svc.GetSnapshot(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, storage.ErrNotFound))
}
