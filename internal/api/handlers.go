package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/ledger"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
	"github.com/HeroDappDev/Claude-Fun/internal/verification"
)

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest(fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}

func (s *Server) handleBuyQuote(w http.ResponseWriter, r *http.Request) {
	var req buyQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.LaunchID == "" {
		s.writeError(w, r, badRequest("launchId is required"))
		return
	}

	q, err := s.deps.Quotes.GetBuyQuote(r.Context(), req.LaunchID, req.SolAmount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteResponse(q))
}

func (s *Server) handleSellQuote(w http.ResponseWriter, r *http.Request) {
	var req sellQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.LaunchID == "" {
		s.writeError(w, r, badRequest("launchId is required"))
		return
	}

	q, err := s.deps.Quotes.GetSellQuote(r.Context(), req.LaunchID, req.TokenAmount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteResponse(q))
}

// handleConfirm verifies a client trade claim on-chain and applies the
// chain-resolved amount to the ledger. The claimed amount is never applied.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.LaunchID == "" || req.TxSignature == "" || req.WalletAddress == "" {
		s.writeError(w, r, badRequest("launchId, txSignature and walletAddress are required"))
		return
	}
	dir, err := domain.ParseTradeDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, badRequest(err.Error()))
		return
	}

	snap, err := s.deps.Quotes.GetSnapshot(ctx, req.LaunchID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	launch := snap.Launch
	switch launch.Status {
	case domain.StatusActive:
	case domain.StatusGraduated:
		s.writeError(w, r, fmt.Errorf("%w: %s", ledger.ErrAlreadyGraduated, launch.ID))
		return
	default:
		s.writeError(w, r, fmt.Errorf("%w: %s", ledger.ErrNotActive, launch.ID))
		return
	}

	// consumed signatures are rejected before paying for a chain read
	if _, err := s.deps.Trades.GetBySignature(ctx, req.TxSignature); err == nil {
		s.writeError(w, r, fmt.Errorf("%w: %s", ledger.ErrAlreadyApplied, req.TxSignature))
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, fmt.Errorf("lookup trade: %w", err))
		return
	}

	v, err := s.deps.Verifier.VerifyTrade(ctx, verification.TradeClaim{
		Signature:         req.TxSignature,
		Actor:             req.WalletAddress,
		Mint:              launch.Mint,
		ExpectedSolAmount: req.ClaimedAmount,
		Direction:         dir,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var res *ledger.Result
	if dir == domain.DirectionBuy {
		res, err = s.deps.Ledger.ApplyBuy(ctx, launch.ID, v)
	} else {
		res, err = s.deps.Ledger.ApplySell(ctx, launch.ID, v)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, confirmResponse{
		Verified:            true,
		ResolvedAmount:      v.ResolvedSolAmount,
		ResolvedTokenAmount: v.ResolvedTokenAmount,
		Graduated:           res.Launch.Status == domain.StatusGraduated,
		Launch:              newLaunchResponse(res.Launch, s.deps.Quotes.Policy()),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	curveType, err := domain.ParseCurveType(req.CurveType)
	if err != nil {
		s.writeError(w, r, badRequest(err.Error()))
		return
	}
	params := ledger.LaunchParams{
		TotalSupply:       req.TotalSupply,
		FundraisingTarget: req.FundraisingTarget,
		CurveType:         curveType,
	}
	// reject bad parameters before the chain read
	if err := params.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.deps.Verifier.VerifyCreation(ctx, req.TxSignature, req.CreatorAddress, req.MintAddress)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	launch, err := s.deps.Ledger.RegisterLaunch(ctx, v, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newLaunchResponse(launch, s.deps.Quotes.Policy()))
}

func (s *Server) handleGetLaunch(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Quotes.GetSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLaunchResponse(snap.Launch, s.deps.Quotes.Policy()))
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	limit, err := queryInt(r, "limit", DefaultTradesLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit <= 0 || limit > MaxTradesLimit {
		limit = MaxTradesLimit
	}

	if _, err := s.deps.Quotes.GetSnapshot(ctx, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	trades, err := s.deps.Trades.GetByLaunchID(ctx, id, limit)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("list trades: %w", err))
		return
	}

	resp := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		resp = append(resp, tradeResponse{
			Signature:   t.Signature,
			Actor:       t.Actor,
			Direction:   t.Direction.String(),
			SolAmount:   t.SolAmount,
			TokenAmount: t.TokenAmount,
			Slot:        t.Slot,
			BlockTime:   t.BlockTime,
			AppliedAt:   t.AppliedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	from, err := queryInt64(r, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryInt64(r, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.deps.Quotes.GetSnapshot(ctx, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := []pricePointResponse{}
	if s.deps.Prices == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var points []*domain.PricePoint
	if from != nil || to != nil {
		start, end := int64(0), int64(1<<62)
		if from != nil {
			start = *from
		}
		if to != nil {
			end = *to
		}
		points, err = s.deps.Prices.GetByTimeRange(ctx, id, start, end)
	} else {
		points, err = s.deps.Prices.GetByLaunchID(ctx, id)
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("load price history: %w", err))
		return
	}

	for _, p := range points {
		resp = append(resp, pricePointResponse{
			Signature:   p.Signature,
			TimestampMs: p.TimestampMs,
			Slot:        p.Slot,
			Direction:   p.Direction.String(),
			SolAmount:   p.SolAmount,
			Price:       p.Price,
			Raised:      p.Raised,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	points, err := queryInt(r, "points", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	series, err := s.deps.Quotes.GetPriceCurve(r.Context(), mux.Vars(r)["id"], points)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]curvePointResponse, 0, len(series))
	for _, p := range series {
		resp = append(resp, curvePointResponse{Progress: p.Progress, Raised: p.Raised, Price: p.Price})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Quotes.GetSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !websocketRequest(r) {
		s.writeError(w, r, badRequest("websocket upgrade required"))
		return
	}
	// Upgrade writes its own error response
	if err := s.deps.Hub.Serve(w, r, snap.Launch); err != nil {
		s.logger.Debug("stream upgrade failed", zap.String("trace_id", TraceID(r.Context())), zap.Error(err))
	}
}

func (s *Server) handleClearLaunch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.deps.Ledger.ClearLaunch(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chain == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	slot, err := s.deps.Chain.GetSlot(r.Context())
	if err != nil {
		s.logger.Warn("health check: chain unreachable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Slot: slot})
}

func websocketRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("invalid %s: %q", key, raw))
	}
	return v, nil
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, badRequest(fmt.Sprintf("invalid %s: %q", key, raw))
	}
	return &v, nil
}
