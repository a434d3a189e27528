package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Program IDs referenced by verification.
var (
	TokenProgramID     = solanago.TokenProgramID.String()
	Token2022ProgramID = solanago.Token2022ProgramID.String()
	SystemProgramID    = solanago.SystemProgramID.String()
)

// Address parsing errors.
var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrInvalidSignature = errors.New("invalid transaction signature")
)

// signatureLen is the byte length of an ed25519 transaction signature.
const signatureLen = 64

// ParseAddress validates a base58 public key and returns its canonical form.
func ParseAddress(s string) (string, error) {
	pk, err := solanago.PublicKeyFromBase58(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return pk.String(), nil
}

// ParseSignature validates a base58 transaction signature.
func ParseSignature(s string) (string, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(raw) != signatureLen {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, signatureLen, len(raw))
	}
	return base58.Encode(raw), nil
}

// IsWalletAddress reports whether s is a valid address that lies on the
// ed25519 curve. Wallets are on-curve; ATAs and other PDAs are not.
func IsWalletAddress(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

// AssociatedTokenAccounts derives the wallet's associated token account for
// mint under both the classic Token program and Token-2022.
func AssociatedTokenAccounts(wallet, mint string) ([]string, error) {
	walletKey, err := solanago.PublicKeyFromBase58(wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet: %v", ErrInvalidAddress, err)
	}
	mintKey, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("%w: mint: %v", ErrInvalidAddress, err)
	}

	classic, _, err := solanago.FindAssociatedTokenAddress(walletKey, mintKey)
	if err != nil {
		return nil, fmt.Errorf("derive token ata: %w", err)
	}

	token2022, _, err := solanago.FindProgramAddress(
		[][]byte{walletKey[:], solanago.Token2022ProgramID[:], mintKey[:]},
		solanago.SPLAssociatedTokenAccountProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("derive token-2022 ata: %w", err)
	}

	return []string{classic.String(), token2022.String()}, nil
}

// IsTokenProgram reports whether programID is an SPL token program.
func IsTokenProgram(programID string) bool {
	return programID == TokenProgramID || programID == Token2022ProgramID
}
