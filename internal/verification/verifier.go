// Package verification confirms client trade claims against the chain's own
// record of transaction effects. Client numbers are advisory; callers must
// use the resolved amounts.
package verification

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/solana"
)

// Default tolerance: expected * 5% + 0.01 SOL.
const (
	DefaultTolerancePct     = 0.05
	DefaultToleranceEpsilon = 0.01
)

// Config controls amount matching.
type Config struct {
	TolerancePct     float64
	ToleranceEpsilon float64 // SOL
}

// DefaultConfig returns the default tolerance settings.
func DefaultConfig() Config {
	return Config{
		TolerancePct:     DefaultTolerancePct,
		ToleranceEpsilon: DefaultToleranceEpsilon,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.TolerancePct < 0 || c.TolerancePct >= 1 || math.IsNaN(c.TolerancePct) {
		return fmt.Errorf("tolerance pct must be in [0, 1), got %v", c.TolerancePct)
	}
	if c.ToleranceEpsilon < 0 || math.IsNaN(c.ToleranceEpsilon) {
		return fmt.Errorf("tolerance epsilon must be >= 0, got %v", c.ToleranceEpsilon)
	}
	return nil
}

// Tolerance returns the allowed deviation for an expected SOL amount.
func (c Config) Tolerance(expected float64) float64 {
	return expected*c.TolerancePct + c.ToleranceEpsilon
}

// TradeClaim is what a client asserts about a submitted trade.
type TradeClaim struct {
	Signature         string
	Actor             string
	Mint              string
	ExpectedSolAmount float64
	Direction         domain.TradeDirection
}

// Verifier reads transactions through a chain reader and never mutates state,
// so repeated calls with the same claim return the same result.
type Verifier struct {
	rpc    solana.RPCClient
	cfg    Config
	logger *zap.Logger
}

// NewVerifier creates a Verifier.
func NewVerifier(rpc solana.RPCClient, cfg Config, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{rpc: rpc, cfg: cfg, logger: logger}
}

// token instruction types that change balances
var balanceChangingTypes = map[string]bool{
	"transfer":        true,
	"transferChecked": true,
	"mintTo":          true,
	"mintToChecked":   true,
	"burn":            true,
	"burnChecked":     true,
}

// VerifyTrade confirms that claim.Actor signed claim.Signature, that the
// transaction moved claim.Mint for the actor in claim.Direction, and that the
// actor's SOL delta matches claim.ExpectedSolAmount within tolerance.
//
// On failure the returned verification has Valid=false and err is an *Error.
// Malformed claims return ErrInvalidInput without touching the chain.
func (v *Verifier) VerifyTrade(ctx context.Context, claim TradeClaim) (*domain.TradeVerification, error) {
	if err := validateClaim(&claim); err != nil {
		return nil, err
	}

	result := &domain.TradeVerification{
		Signature: claim.Signature,
		Actor:     claim.Actor,
		Mint:      claim.Mint,
		Direction: claim.Direction,
	}

	verr := v.verifyTrade(ctx, claim, result)
	if verr != nil {
		result.Valid = false
		result.Reason = string(verr.Reason)
		observability.RecordVerification("trade", string(verr.Reason))
		v.logger.Warn("trade verification failed",
			zap.String("signature", claim.Signature),
			zap.String("actor", claim.Actor),
			zap.String("mint", claim.Mint),
			zap.String("direction", claim.Direction.String()),
			zap.Float64("expected_sol", claim.ExpectedSolAmount),
			zap.String("reason", string(verr.Reason)),
			zap.Error(verr),
		)
		return result, verr
	}

	result.Valid = true
	observability.RecordVerification("trade", "ok")
	v.logger.Debug("trade verified",
		zap.String("signature", claim.Signature),
		zap.String("direction", claim.Direction.String()),
		zap.Float64("resolved_sol", result.ResolvedSolAmount),
		zap.Float64("resolved_tokens", result.ResolvedTokenAmount),
	)
	return result, nil
}

func (v *Verifier) verifyTrade(ctx context.Context, claim TradeClaim, result *domain.TradeVerification) *Error {
	sig := claim.Signature

	tx, verr := v.fetch(ctx, sig)
	if verr != nil {
		return verr
	}
	result.Slot = tx.Slot
	result.BlockTime = tx.BlockTime

	if !tx.IsSigner(claim.Actor) {
		return fail(ReasonNotSigner, sig, "actor did not sign the transaction", nil)
	}

	atas, err := solana.AssociatedTokenAccounts(claim.Actor, claim.Mint)
	if err != nil {
		return fail(ReasonChainFailure, sig, "derive associated token accounts", err)
	}

	if verr := checkTokenInstructions(tx, claim.Mint, atas); verr != nil {
		verr.Signature = sig
		return verr
	}

	tokenDelta, ok, err := tx.TokenDelta(claim.Actor, claim.Mint, atas)
	if err != nil {
		return fail(ReasonChainFailure, sig, "malformed token balance", err)
	}
	if !ok || tokenDelta == 0 {
		return fail(ReasonWrongDirection, sig, "actor token balance unchanged", nil)
	}
	if claim.Direction == domain.DirectionBuy && tokenDelta < 0 {
		return fail(ReasonWrongDirection, sig, fmt.Sprintf("buy decreased token balance by %g", -tokenDelta), nil)
	}
	if claim.Direction == domain.DirectionSell && tokenDelta > 0 {
		return fail(ReasonWrongDirection, sig, fmt.Sprintf("sell increased token balance by %g", tokenDelta), nil)
	}
	result.ResolvedTokenAmount = math.Abs(tokenDelta)

	lamports, ok := tx.LamportDelta(claim.Actor)
	if !ok {
		return fail(ReasonAmountMismatch, sig, "actor SOL balance missing", nil)
	}

	// The fee payer's delta includes the network fee; remove it so only the
	// SOL exchanged with the curve remains.
	if tx.AccountIndex(claim.Actor) == 0 && tx.Meta != nil {
		lamports += int64(tx.Meta.Fee)
	}

	var resolved float64
	if claim.Direction == domain.DirectionBuy {
		resolved = float64(-lamports) / solana.LamportsPerSOL
	} else {
		resolved = float64(lamports) / solana.LamportsPerSOL
	}
	if resolved <= 0 {
		return fail(ReasonAmountMismatch, sig, fmt.Sprintf("no SOL moved in %s direction (delta %d lamports)", claim.Direction, lamports), nil)
	}

	tolerance := v.cfg.Tolerance(claim.ExpectedSolAmount)
	if math.Abs(resolved-claim.ExpectedSolAmount) > tolerance {
		return fail(ReasonAmountMismatch, sig,
			fmt.Sprintf("chain %.9f SOL vs claimed %.9f SOL (tolerance %.9f)", resolved, claim.ExpectedSolAmount, tolerance), nil)
	}
	result.ResolvedSolAmount = resolved

	return nil
}

// fetch reads the transaction and rejects unknown or failed ones.
func (v *Verifier) fetch(ctx context.Context, sig string) (*solana.Transaction, *Error) {
	tx, err := v.rpc.GetTransaction(ctx, sig)
	if err != nil {
		return nil, fail(ReasonChainFailure, sig, "fetch transaction", err)
	}
	if tx == nil {
		return nil, fail(ReasonNotFound, sig, "transaction not found", nil)
	}
	if tx.Failed() {
		return nil, fail(ReasonChainFailure, sig, fmt.Sprintf("transaction failed on-chain: %v", tx.Meta.Err), nil)
	}
	return tx, nil
}

// checkTokenInstructions scans top-level and inner instructions for a token
// balance change that references mint directly or through an account holding it.
func checkTokenInstructions(tx *solana.Transaction, mint string, atas []string) *Error {
	mintAccounts := tx.TokenAccountsForMint(mint)
	for _, a := range atas {
		mintAccounts[a] = struct{}{}
	}

	found := false
	for _, ix := range tx.AllInstructions() {
		if !solana.IsTokenProgram(ix.ProgramID) || !balanceChangingTypes[ix.Type] {
			continue
		}
		found = true

		if ix.InfoString("mint") == mint {
			return nil
		}
		for _, key := range []string{"source", "destination", "account"} {
			if _, ok := mintAccounts[ix.InfoString(key)]; ok && ix.InfoString(key) != "" {
				return nil
			}
		}
	}

	if !found {
		return fail(ReasonNoTransferFound, "", "no token transfer, mint or burn instruction", nil)
	}
	return fail(ReasonMintMismatch, "", "token instructions do not reference mint "+mint, nil)
}

func validateClaim(c *TradeClaim) error {
	sig, err := solana.ParseSignature(c.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	actor, err := solana.ParseAddress(c.Actor)
	if err != nil {
		return fmt.Errorf("%w: actor: %v", ErrInvalidInput, err)
	}
	mint, err := solana.ParseAddress(c.Mint)
	if err != nil {
		return fmt.Errorf("%w: mint: %v", ErrInvalidInput, err)
	}
	if !c.Direction.IsValid() {
		return fmt.Errorf("%w: direction %q", ErrInvalidInput, c.Direction)
	}
	if !(c.ExpectedSolAmount > 0) || math.IsInf(c.ExpectedSolAmount, 0) {
		return fmt.Errorf("%w: expected SOL amount must be positive", ErrInvalidInput)
	}

	c.Signature, c.Actor, c.Mint = sig, actor, mint
	return nil
}
