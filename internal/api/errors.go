package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/ledger"
	"github.com/HeroDappDev/Claude-Fun/internal/quote"
	"github.com/HeroDappDev/Claude-Fun/internal/verification"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeNotActive          = "NOT_ACTIVE"
	CodeAlreadyGraduated   = "ALREADY_GRADUATED"
	CodeVerificationFailed = "VERIFICATION_FAILED"
	CodeConflict           = "CONFLICT"
	CodeAlreadyApplied     = "ALREADY_APPLIED"
	CodeAlreadyRegistered  = "ALREADY_REGISTERED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeForbidden          = "FORBIDDEN"
	CodeUnavailable        = "UNAVAILABLE"
	CodeInternal           = "INTERNAL"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

// apiError is a handler-level failure with an explicit status.
type apiError struct {
	status int
	code   string
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &apiError{status: http.StatusBadRequest, code: CodeInvalidInput, msg: msg}
}

// classify maps an error onto status, code and verification reason.
func classify(err error) (int, string, string) {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status, ae.code, ""
	}

	// verification failures before sentinels: an RPC timeout must stay CHAIN_FAILURE
	if reason, ok := verification.ReasonOf(err); ok {
		return http.StatusBadRequest, CodeVerificationFailed, string(reason)
	}

	switch {
	case errors.Is(err, verification.ErrInvalidInput),
		errors.Is(err, quote.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidTrade),
		errors.Is(err, ledger.ErrInvalidLaunch):
		return http.StatusBadRequest, CodeInvalidInput, ""
	case errors.Is(err, quote.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, ""
	case errors.Is(err, ledger.ErrAlreadyGraduated):
		return http.StatusBadRequest, CodeAlreadyGraduated, ""
	case errors.Is(err, quote.ErrNotActive), errors.Is(err, ledger.ErrNotActive):
		return http.StatusBadRequest, CodeNotActive, ""
	case errors.Is(err, ledger.ErrAlreadyApplied):
		return http.StatusConflict, CodeAlreadyApplied, ""
	case errors.Is(err, ledger.ErrAlreadyRegistered):
		return http.StatusConflict, CodeAlreadyRegistered, ""
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict, CodeConflict, ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, CodeUnavailable, ""
	}
	return http.StatusInternalServerError, CodeInternal, ""
}

// writeError logs err and writes its JSON body. Internal errors hide details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, reason := classify(err)

	msg := err.Error()
	fields := []zap.Field{
		zap.String("trace_id", TraceID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("code", code),
		zap.Error(err),
	}
	if reason != "" {
		fields = append(fields, zap.String("reason", reason))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
		msg = http.StatusText(status)
	} else {
		s.logger.Info("request rejected", fields...)
	}

	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, Reason: reason})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
