package curve

import (
	"errors"
	"math"
)

// Default platform policy values.
const (
	DefaultFeeRate         = 0.0025 // 0.25% on every trade
	DefaultSupplyFraction  = 0.8    // share of total supply sold through the curve
	DefaultExponentialRate = 2.0
	DefaultLogMultiplier   = 10.0
)

// Policy holds the platform constants every curve computation depends on.
type Policy struct {
	FeeRate         float64
	SupplyFraction  float64
	ExponentialRate float64
	LogMultiplier   float64
}

// DefaultPolicy returns the platform policy.
func DefaultPolicy() Policy {
	return Policy{
		FeeRate:         DefaultFeeRate,
		SupplyFraction:  DefaultSupplyFraction,
		ExponentialRate: DefaultExponentialRate,
		LogMultiplier:   DefaultLogMultiplier,
	}
}

// Validate checks that the policy keeps prices finite and non-decreasing.
func (p Policy) Validate() error {
	if !finite(p.FeeRate) || p.FeeRate < 0 || p.FeeRate >= 1 {
		return errors.New("fee rate must be in [0, 1)")
	}
	if !finite(p.SupplyFraction) || p.SupplyFraction <= 0 || p.SupplyFraction > 1 {
		return errors.New("supply fraction must be in (0, 1]")
	}
	if !finite(p.ExponentialRate) || p.ExponentialRate < 0 {
		return errors.New("exponential rate must be non-negative")
	}
	if !finite(p.LogMultiplier) || p.LogMultiplier < 0 {
		return errors.New("log multiplier must be non-negative")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
