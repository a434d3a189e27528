package ledger

import "errors"

// Ledger errors.
var (
	ErrNotFound          = errors.New("launch not found")
	ErrAlreadyGraduated  = errors.New("launch already graduated")
	ErrNotActive         = errors.New("launch is not active")
	ErrConflict          = errors.New("concurrent launch update, retries exhausted")
	ErrAlreadyApplied    = errors.New("trade signature already applied")
	ErrAlreadyRegistered = errors.New("launch already registered")
	ErrInvalidTrade      = errors.New("trade is not a valid verification for this launch")
	ErrInvalidLaunch     = errors.New("invalid launch parameters")
)
