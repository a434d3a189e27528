package ledger

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/idhash"
)

func creation(sig, mint string) *domain.CreationVerification {
	return &domain.CreationVerification{
		Valid:     true,
		Signature: sig,
		Creator:   "creator",
		Mint:      mint,
		Decimals:  6,
		Slot:      10,
	}
}

var defaultParams = LaunchParams{
	TotalSupply:       1_000_000_000,
	FundraisingTarget: 85,
	CurveType:         domain.CurveExponential,
}

func TestRegisterLaunch(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	ctx := context.Background()

	launch, err := h.updater.RegisterLaunch(ctx, creation("sig1", "mint1"), defaultParams)
	require.NoError(t, err)

	assert.Equal(t, idhash.ComputeLaunchID("mint1", "sig1"), launch.ID)
	assert.Equal(t, domain.StatusActive, launch.Status)
	assert.Zero(t, launch.CurrentRaised)
	assert.Equal(t, int64(1), launch.Version)
	assert.Equal(t, fixedNow.UnixMilli(), launch.CreatedAt)

	stored, err := h.launches.GetByMint(ctx, "mint1")
	require.NoError(t, err)
	assert.Equal(t, launch, stored)

	_, err = h.updater.RegisterLaunch(ctx, creation("sig2", "mint1"), defaultParams)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterLaunch_Invalid(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	ctx := context.Background()

	unverified := creation("sig", "mint")
	unverified.Valid = false
	_, err := h.updater.RegisterLaunch(ctx, unverified, defaultParams)
	assert.ErrorIs(t, err, ErrInvalidLaunch)

	tests := []struct {
		name   string
		params LaunchParams
	}{
		{"zero supply", LaunchParams{TotalSupply: 0, FundraisingTarget: 85, CurveType: domain.CurveLinear}},
		{"huge supply", LaunchParams{TotalSupply: math.MaxUint64, FundraisingTarget: 85, CurveType: domain.CurveLinear}},
		{"zero target", LaunchParams{TotalSupply: 1, FundraisingTarget: 0, CurveType: domain.CurveLinear}},
		{"infinite target", LaunchParams{TotalSupply: 1, FundraisingTarget: math.Inf(1), CurveType: domain.CurveLinear}},
		{"bad curve", LaunchParams{TotalSupply: 1, FundraisingTarget: 85, CurveType: "sigmoid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.updater.RegisterLaunch(ctx, creation("sig", "mint"), tt.params)
			assert.ErrorIs(t, err, ErrInvalidLaunch)
		})
	}
}

func TestClearLaunch(t *testing.T) {
	h := newHarness(t, DefaultConfig(), activeLaunch("l1", 85))
	ctx := context.Background()

	_, err := h.updater.ApplyBuy(ctx, "l1", verified("sig1", "mint-l1", domain.DirectionBuy, 1))
	require.NoError(t, err)

	require.NoError(t, h.updater.ClearLaunch(ctx, "l1"))
	assert.ErrorIs(t, h.updater.ClearLaunch(ctx, "l1"), ErrNotFound)

	_, err = h.updater.ApplyBuy(ctx, "l1", verified("sig2", "mint-l1", domain.DirectionBuy, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}
