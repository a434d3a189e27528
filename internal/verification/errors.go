package verification

import (
	"errors"
	"fmt"
)

// Reason is a machine-readable verification failure code.
type Reason string

const (
	ReasonNotFound           Reason = "NOT_FOUND"
	ReasonChainFailure       Reason = "CHAIN_FAILURE"
	ReasonNotSigner          Reason = "NOT_SIGNER"
	ReasonNoTransferFound    Reason = "NO_TRANSFER_FOUND"
	ReasonMintMismatch       Reason = "MINT_MISMATCH"
	ReasonWrongDirection     Reason = "WRONG_DIRECTION"
	ReasonAmountMismatch     Reason = "AMOUNT_MISMATCH"
	ReasonMintNotInitialized Reason = "MINT_NOT_INITIALIZED"
)

// ErrInvalidInput is returned for malformed claims before any chain read.
var ErrInvalidInput = errors.New("invalid verification input")

// Error is a verification failure. Every failure carries a Reason.
type Error struct {
	Reason    Reason
	Signature string
	Detail    string
	Err       error // underlying cause, e.g. RPC error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("verification failed: %s", e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from err.
func ReasonOf(err error) (Reason, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	return "", false
}

func fail(reason Reason, signature, detail string, cause error) *Error {
	return &Error{Reason: reason, Signature: signature, Detail: detail, Err: cause}
}
