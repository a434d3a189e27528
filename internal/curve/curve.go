// Package curve implements bonding curve pricing and quote integration.
// All functions are pure: they read a State snapshot and never perform I/O.
package curve

import (
	"fmt"
	"math"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
)

// State is the ledger snapshot a quote is computed against.
type State struct {
	Curve             domain.CurveType
	TotalSupply       uint64
	FundraisingTarget float64
	CurrentRaised     float64
}

// StateOf snapshots a launch by value.
func StateOf(l *domain.Launch) State {
	return State{
		Curve:             l.CurveType,
		TotalSupply:       l.TotalSupply,
		FundraisingTarget: l.FundraisingTarget,
		CurrentRaised:     l.CurrentRaised,
	}
}

// Progress returns currentRaised / fundraisingTarget.
func (s State) Progress() float64 {
	return s.CurrentRaised / s.FundraisingTarget
}

// Result is the outcome of integrating a trade over the curve.
type Result struct {
	AmountIn      float64 // SOL for buys, tokens for sells
	AmountOut     float64 // tokens for buys, net SOL for sells
	Fee           float64 // SOL
	Net           float64 // buys: SOL entering the curve; sells: SOL paid out
	ProgressStart float64
	ProgressEnd   float64
	PriceStart    float64
	PriceEnd      float64
	PriceImpact   float64 // percent, magnitude clamped to [0, 100]
}

// TokensAvailable returns the part of the supply sold through the curve.
func (p Policy) TokensAvailable(totalSupply uint64) float64 {
	return p.SupplyFraction * float64(totalSupply)
}

// InitialPrice returns the price at progress 0.
func (p Policy) InitialPrice(s State) float64 {
	return s.FundraisingTarget / p.TokensAvailable(s.TotalSupply)
}

// TokensSold maps progress onto supply space: tokensAvailable * clamp(progress, 0, 1).
func (p Policy) TokensSold(s State, progress float64) float64 {
	return p.TokensAvailable(s.TotalSupply) * clamp(progress, 0, 1)
}

// Price returns the instantaneous unit price at progress for the given curve.
// Callers must pass a valid curve type; unknown types panic.
func (p Policy) Price(curveType domain.CurveType, progress, initialPrice float64) float64 {
	switch curveType {
	case domain.CurveLinear:
		return initialPrice + (initialPrice*0.5)*progress
	case domain.CurveExponential:
		return initialPrice * math.Pow(1+p.ExponentialRate, progress)
	case domain.CurveLogarithmic:
		return initialPrice * (1 + p.LogMultiplier*math.Log(1+progress))
	default:
		panic(fmt.Sprintf("curve: unknown curve type %q", curveType))
	}
}

// SpotPrice returns the current price of the snapshot.
func (p Policy) SpotPrice(s State) float64 {
	return p.Price(s.Curve, s.Progress(), p.InitialPrice(s))
}

// BuyQuote integrates a purchase of solAmount SOL.
// The curve integral is approximated by the average of the endpoint prices.
// Precondition: solAmount > 0, TotalSupply > 0, FundraisingTarget > 0.
func (p Policy) BuyQuote(s State, solAmount float64) Result {
	initial := p.InitialPrice(s)

	fee := solAmount * p.FeeRate
	net := solAmount - fee

	progressStart := s.CurrentRaised / s.FundraisingTarget
	progressEnd := (s.CurrentRaised + net) / s.FundraisingTarget

	priceStart := p.Price(s.Curve, progressStart, initial)
	priceEnd := p.Price(s.Curve, progressEnd, initial)
	avgPrice := (priceStart + priceEnd) / 2

	tokens := net / avgPrice
	remaining := p.TokensAvailable(s.TotalSupply) - p.TokensSold(s, progressStart)
	if remaining < 0 {
		remaining = 0
	}
	if tokens > remaining {
		tokens = remaining
	}

	return Result{
		AmountIn:      solAmount,
		AmountOut:     tokens,
		Fee:           fee,
		Net:           net,
		ProgressStart: progressStart,
		ProgressEnd:   progressEnd,
		PriceStart:    priceStart,
		PriceEnd:      priceEnd,
		PriceImpact:   priceImpact(priceStart, priceEnd),
	}
}

// SellQuote integrates a sale of tokenAmount tokens back into the curve.
// Payout never exceeds the SOL the curve holds.
// Precondition: tokenAmount > 0, TotalSupply > 0, FundraisingTarget > 0.
func (p Policy) SellQuote(s State, tokenAmount float64) Result {
	initial := p.InitialPrice(s)
	available := p.TokensAvailable(s.TotalSupply)

	progressStart := s.CurrentRaised / s.FundraisingTarget
	soldBefore := p.TokensSold(s, progressStart)
	soldAfter := soldBefore - tokenAmount
	if soldAfter < 0 {
		soldAfter = 0
	}
	progressEnd := soldAfter / available

	priceStart := p.Price(s.Curve, progressStart, initial)
	priceEnd := p.Price(s.Curve, progressEnd, initial)
	avgPrice := (priceStart + priceEnd) / 2

	gross := tokenAmount * avgPrice
	if gross > s.CurrentRaised {
		gross = s.CurrentRaised
	}
	fee := gross * p.FeeRate
	net := gross - fee
	if net < 0 {
		net = 0
	}

	return Result{
		AmountIn:      tokenAmount,
		AmountOut:     net,
		Fee:           fee,
		Net:           net,
		ProgressStart: progressStart,
		ProgressEnd:   progressEnd,
		PriceStart:    priceStart,
		PriceEnd:      priceEnd,
		PriceImpact:   priceImpact(priceStart, priceEnd),
	}
}

// PriceSeries samples the curve at points+1 evenly spaced progress values in [0, 1].
func (p Policy) PriceSeries(s State, points int) []domain.CurvePoint {
	if points < 1 {
		points = 1
	}
	initial := p.InitialPrice(s)
	series := make([]domain.CurvePoint, 0, points+1)
	for i := 0; i <= points; i++ {
		progress := float64(i) / float64(points)
		series = append(series, domain.CurvePoint{
			Progress: progress,
			Raised:   progress * s.FundraisingTarget,
			Price:    p.Price(s.Curve, progress, initial),
		})
	}
	return series
}

func priceImpact(start, end float64) float64 {
	if start <= 0 {
		return 0
	}
	return clamp(math.Abs((end-start)/start*100), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
