package verification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/domain"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/solana"
)

var initializeMintTypes = map[string]bool{
	"initializeMint":  true,
	"initializeMint2": true,
}

// VerifyCreation confirms that creator signed signature and that the
// transaction initialized mint under an SPL token program.
func (v *Verifier) VerifyCreation(ctx context.Context, signature, creator, mint string) (*domain.CreationVerification, error) {
	sig, err := solana.ParseSignature(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if creator, err = solana.ParseAddress(creator); err != nil {
		return nil, fmt.Errorf("%w: creator: %v", ErrInvalidInput, err)
	}
	if mint, err = solana.ParseAddress(mint); err != nil {
		return nil, fmt.Errorf("%w: mint: %v", ErrInvalidInput, err)
	}

	result := &domain.CreationVerification{
		Signature: sig,
		Creator:   creator,
		Mint:      mint,
	}

	verr := v.verifyCreation(ctx, result)
	if verr != nil {
		result.Reason = string(verr.Reason)
		observability.RecordVerification("creation", string(verr.Reason))
		v.logger.Warn("creation verification failed",
			zap.String("signature", sig),
			zap.String("creator", creator),
			zap.String("mint", mint),
			zap.String("reason", string(verr.Reason)),
			zap.Error(verr),
		)
		return result, verr
	}

	result.Valid = true
	observability.RecordVerification("creation", "ok")
	return result, nil
}

func (v *Verifier) verifyCreation(ctx context.Context, result *domain.CreationVerification) *Error {
	tx, verr := v.fetch(ctx, result.Signature)
	if verr != nil {
		return verr
	}
	result.Slot = tx.Slot
	result.BlockTime = tx.BlockTime

	if !tx.IsSigner(result.Creator) {
		return fail(ReasonNotSigner, result.Signature, "creator did not sign the transaction", nil)
	}

	for _, ix := range tx.AllInstructions() {
		if !solana.IsTokenProgram(ix.ProgramID) || !initializeMintTypes[ix.Type] {
			continue
		}
		if ix.InfoString("mint") != result.Mint {
			continue
		}
		if d, ok := ix.Info["decimals"].(float64); ok {
			result.Decimals = int(d)
		}
		return nil
	}

	return fail(ReasonMintNotInitialized, result.Signature, "no initializeMint instruction for "+result.Mint, nil)
}
