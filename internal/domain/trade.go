package domain

import (
	"fmt"
	"strings"
)

// TradeDirection is the side of a curve trade from the actor's point of view.
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "buy"
	DirectionSell TradeDirection = "sell"
)

// String returns the string representation of TradeDirection.
func (d TradeDirection) String() string {
	return string(d)
}

// IsValid checks if the direction is a known value.
func (d TradeDirection) IsValid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// ParseTradeDirection parses a direction name (case-insensitive).
func ParseTradeDirection(s string) (TradeDirection, error) {
	d := TradeDirection(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("unknown trade direction %q", s)
	}
	return d, nil
}

// TradeRecord is a verified trade applied to a launch.
// The transaction signature is unique: a signature is consumed at most once.
// Corresponds to trades table in PostgreSQL.
type TradeRecord struct {
	Signature   string         // transaction signature (PK)
	LaunchID    string         // FK to launches
	Mint        string         // token mint
	Actor       string         // trader wallet
	Direction   TradeDirection // buy | sell
	SolAmount   float64        // chain-observed SOL delta (absolute)
	TokenAmount float64        // chain-observed token delta (absolute, UI units)
	Slot        int64          // Solana slot
	BlockTime   int64          // unix seconds
	AppliedAt   int64          // ms
}

// PricePoint is the curve price observed right after an applied trade.
// Corresponds to price_points table in ClickHouse.
type PricePoint struct {
	LaunchID    string
	Signature   string
	TimestampMs int64
	Slot        int64
	Direction   TradeDirection
	SolAmount   float64
	Price       float64 // instantaneous curve price after the trade
	Raised      float64 // currentRaised after the trade
}
