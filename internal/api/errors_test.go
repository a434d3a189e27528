package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HeroDappDev/Claude-Fun/internal/ledger"
	"github.com/HeroDappDev/Claude-Fun/internal/quote"
	"github.com/HeroDappDev/Claude-Fun/internal/verification"
)

func TestClassify(t *testing.T) {
	chainTimeout := &verification.Error{Reason: verification.ReasonChainFailure, Err: context.DeadlineExceeded}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		reason string
	}{
		{"bad request", badRequest("nope"), http.StatusBadRequest, CodeInvalidInput, ""},
		{"verification", fmt.Errorf("confirm: %w", &verification.Error{Reason: verification.ReasonNotSigner}), http.StatusBadRequest, CodeVerificationFailed, "NOT_SIGNER"},
		{"chain timeout", chainTimeout, http.StatusBadRequest, CodeVerificationFailed, "CHAIN_FAILURE"},
		{"invalid input", verification.ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput, ""},
		{"invalid amount", quote.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidInput, ""},
		{"invalid launch", ledger.ErrInvalidLaunch, http.StatusBadRequest, CodeInvalidInput, ""},
		{"quote not found", fmt.Errorf("%w: x", quote.ErrNotFound), http.StatusNotFound, CodeNotFound, ""},
		{"ledger not found", ledger.ErrNotFound, http.StatusNotFound, CodeNotFound, ""},
		{"graduated", ledger.ErrAlreadyGraduated, http.StatusBadRequest, CodeAlreadyGraduated, ""},
		{"not active", quote.ErrNotActive, http.StatusBadRequest, CodeNotActive, ""},
		{"applied", ledger.ErrAlreadyApplied, http.StatusConflict, CodeAlreadyApplied, ""},
		{"registered", ledger.ErrAlreadyRegistered, http.StatusConflict, CodeAlreadyRegistered, ""},
		{"conflict", ledger.ErrConflict, http.StatusConflict, CodeConflict, ""},
		{"request deadline", fmt.Errorf("lock launch l1: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, CodeUnavailable, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, reason := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
