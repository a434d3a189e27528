package domain

import (
	"fmt"
	"strings"
)

// CurveType identifies the bonding curve price function of a launch.
type CurveType string

const (
	CurveLinear      CurveType = "linear"
	CurveExponential CurveType = "exponential"
	CurveLogarithmic CurveType = "logarithmic"
)

// String returns the string representation of CurveType.
func (c CurveType) String() string {
	return string(c)
}

// IsValid checks if the curve type is a known value.
func (c CurveType) IsValid() bool {
	return c == CurveLinear || c == CurveExponential || c == CurveLogarithmic
}

// ParseCurveType parses a curve type name (case-insensitive).
func ParseCurveType(s string) (CurveType, error) {
	c := CurveType(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown curve type %q", s)
	}
	return c, nil
}

// LaunchStatus is the lifecycle state of a launch.
// Active -> Graduated is one-way. Failed is terminal and reserved.
type LaunchStatus string

const (
	StatusActive    LaunchStatus = "active"
	StatusGraduated LaunchStatus = "graduated"
	StatusFailed    LaunchStatus = "failed"
)

// String returns the string representation of LaunchStatus.
func (s LaunchStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s LaunchStatus) IsValid() bool {
	return s == StatusActive || s == StatusGraduated || s == StatusFailed
}

// Launch represents one token sale on a bonding curve.
// Corresponds to launches table in PostgreSQL.
type Launch struct {
	ID                string       // deterministic hash of mint + creation signature
	Mint              string       // SPL token mint address (unique)
	Creator           string       // creator wallet address
	CreationSignature string       // token creation transaction signature
	CurveType         CurveType    // bonding curve price function
	TotalSupply       uint64       // fixed at creation
	FundraisingTarget float64      // SOL
	CurrentRaised     float64      // SOL, cumulative inflow from verified buys
	VolumeSOL         float64      // SOL, buys + sells
	TradeCount        int64        // applied trades
	Status            LaunchStatus // lifecycle state
	Version           int64        // bumped on every ledger write
	CreatedAt         int64        // ms
	UpdatedAt         int64        // ms
	GraduatedAt       *int64       // ms (nullable)
}

// IsActive reports whether the launch still trades on the curve.
func (l *Launch) IsActive() bool {
	return l.Status == StatusActive
}

// Progress returns currentRaised / fundraisingTarget.
// Can exceed 1 transiently before graduation is resolved.
func (l *Launch) Progress() float64 {
	if l.FundraisingTarget <= 0 {
		return 0
	}
	return l.CurrentRaised / l.FundraisingTarget
}
