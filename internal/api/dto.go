package api

import (
	"github.com/HeroDappDev/Claude-Fun/internal/curve"
	"github.com/HeroDappDev/Claude-Fun/internal/domain"
)

type buyQuoteRequest struct {
	LaunchID  string  `json:"launchId"`
	SolAmount float64 `json:"solAmount"`
}

type sellQuoteRequest struct {
	LaunchID    string  `json:"launchId"`
	TokenAmount float64 `json:"tokenAmount"`
}

type quoteResponse struct {
	AmountIn     float64 `json:"amountIn"`
	AmountOut    float64 `json:"amountOut"`
	Fee          float64 `json:"fee"`
	PriceImpact  float64 `json:"priceImpact"`
	CurrentPrice float64 `json:"currentPrice"`
	NewPrice     float64 `json:"newPrice"`
	WillGraduate *bool   `json:"willGraduate,omitempty"`
}

func newQuoteResponse(q *domain.Quote) quoteResponse {
	resp := quoteResponse{
		AmountIn:     q.AmountIn,
		AmountOut:    q.AmountOut,
		Fee:          q.Fee,
		PriceImpact:  q.PriceImpact,
		CurrentPrice: q.CurrentPrice,
		NewPrice:     q.NewPrice,
	}
	if q.Direction == domain.DirectionBuy {
		will := q.WillGraduate
		resp.WillGraduate = &will
	}
	return resp
}

type confirmRequest struct {
	LaunchID      string  `json:"launchId"`
	TxSignature   string  `json:"txSignature"`
	WalletAddress string  `json:"walletAddress"`
	ClaimedAmount float64 `json:"claimedAmount"`
	Direction     string  `json:"direction"`
}

type confirmResponse struct {
	Verified            bool           `json:"verified"`
	ResolvedAmount      float64        `json:"resolvedAmount"`
	ResolvedTokenAmount float64        `json:"resolvedTokenAmount"`
	Graduated           bool           `json:"graduated"`
	Launch              launchResponse `json:"launch"`
}

type registerRequest struct {
	TxSignature       string  `json:"txSignature"`
	CreatorAddress    string  `json:"creatorAddress"`
	MintAddress       string  `json:"mintAddress"`
	TotalSupply       uint64  `json:"totalSupply"`
	FundraisingTarget float64 `json:"fundraisingTarget"`
	CurveType         string  `json:"curveType"`
}

type launchResponse struct {
	ID                string  `json:"id"`
	Mint              string  `json:"mint"`
	Creator           string  `json:"creator"`
	CreationSignature string  `json:"creationSignature"`
	CurveType         string  `json:"curveType"`
	TotalSupply       uint64  `json:"totalSupply"`
	FundraisingTarget float64 `json:"fundraisingTarget"`
	CurrentRaised     float64 `json:"currentRaised"`
	VolumeSOL         float64 `json:"volumeSol"`
	TradeCount        int64   `json:"tradeCount"`
	Status            string  `json:"status"`
	Version           int64   `json:"version"`
	Progress          float64 `json:"progress"`
	CurrentPrice      float64 `json:"currentPrice"`
	CreatedAt         int64   `json:"createdAt"`
	UpdatedAt         int64   `json:"updatedAt"`
	GraduatedAt       *int64  `json:"graduatedAt,omitempty"`
}

// newLaunchResponse renders l with its spot price under policy.
func newLaunchResponse(l *domain.Launch, policy curve.Policy) launchResponse {
	resp := launchResponse{
		ID:                l.ID,
		Mint:              l.Mint,
		Creator:           l.Creator,
		CreationSignature: l.CreationSignature,
		CurveType:         l.CurveType.String(),
		TotalSupply:       l.TotalSupply,
		FundraisingTarget: l.FundraisingTarget,
		CurrentRaised:     l.CurrentRaised,
		VolumeSOL:         l.VolumeSOL,
		TradeCount:        l.TradeCount,
		Status:            l.Status.String(),
		Version:           l.Version,
		Progress:          l.Progress(),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
		GraduatedAt:       l.GraduatedAt,
	}
	if l.TotalSupply > 0 && l.FundraisingTarget > 0 && l.CurveType.IsValid() {
		resp.CurrentPrice = policy.SpotPrice(curve.StateOf(l))
	}
	return resp
}

type tradeResponse struct {
	Signature   string  `json:"signature"`
	Actor       string  `json:"actor"`
	Direction   string  `json:"direction"`
	SolAmount   float64 `json:"solAmount"`
	TokenAmount float64 `json:"tokenAmount"`
	Slot        int64   `json:"slot"`
	BlockTime   int64   `json:"blockTime"`
	AppliedAt   int64   `json:"appliedAt"`
}

type pricePointResponse struct {
	Signature   string  `json:"signature"`
	TimestampMs int64   `json:"timestampMs"`
	Slot        int64   `json:"slot"`
	Direction   string  `json:"direction"`
	SolAmount   float64 `json:"solAmount"`
	Price       float64 `json:"price"`
	Raised      float64 `json:"raised"`
}

type curvePointResponse struct {
	Progress float64 `json:"progress"`
	Raised   float64 `json:"raised"`
	Price    float64 `json:"price"`
}

type healthResponse struct {
	Status string `json:"status"`
	Slot   int64  `json:"slot,omitempty"`
	Error  string `json:"error,omitempty"`
}
