package domain

// Quote is a priced preview of a curve trade. Never persisted.
type Quote struct {
	LaunchID     string
	Direction    TradeDirection
	AmountIn     float64 // SOL for buys, tokens for sells
	AmountOut    float64 // tokens for buys, SOL for sells
	Fee          float64 // SOL
	PriceImpact  float64 // percent, magnitude in [0, 100]
	CurrentPrice float64 // SOL per token before the trade
	NewPrice     float64 // SOL per token after the trade
	WillGraduate bool    // buys only
}

// CurvePoint is one sample of a launch's price curve.
type CurvePoint struct {
	Progress float64
	Raised   float64
	Price    float64
}
