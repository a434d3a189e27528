// Package api exposes quoting, trade confirmation and launch reads over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/HeroDappDev/Claude-Fun/internal/ledger"
	"github.com/HeroDappDev/Claude-Fun/internal/observability"
	"github.com/HeroDappDev/Claude-Fun/internal/quote"
	"github.com/HeroDappDev/Claude-Fun/internal/solana"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
	"github.com/HeroDappDev/Claude-Fun/internal/verification"
)

// Default request settings.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultTradesLimit    = 100
	MaxTradesLimit        = 1000
	maxBodyBytes          = 1 << 16
)

// Options holds HTTP-level settings.
type Options struct {
	RequestTimeout time.Duration
	AdminToken     string
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Quotes   *quote.Service
	Verifier *verification.Verifier
	Ledger   *ledger.Updater
	Trades   storage.TradeStore
	Prices   storage.PricePointStore // optional
	Chain    solana.RPCClient        // health probe
	Hub      *Hub
	Limiter  *RateLimiter // optional, guards chain-reading routes
}

// Server handles HTTP requests.
type Server struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

// NewServer creates a server.
func NewServer(deps Deps, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if deps.Hub == nil {
		deps.Hub = NewHub(deps.Quotes.Policy(), logger)
	}
	return &Server{deps: deps, opts: opts, logger: logger}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(traceMiddleware(s.logger), metricsMiddleware, timeoutMiddleware(s.opts.RequestTimeout, isStream))

	guarded := func(h http.HandlerFunc) http.Handler {
		if s.deps.Limiter == nil {
			return h
		}
		return s.deps.Limiter.Middleware(h)
	}

	r.HandleFunc("/quote/buy", s.handleBuyQuote).Methods(http.MethodPost)
	r.HandleFunc("/quote/sell", s.handleSellQuote).Methods(http.MethodPost)
	r.Handle("/trade/confirm", guarded(s.handleConfirm)).Methods(http.MethodPost)
	r.Handle("/launch/register", guarded(s.handleRegister)).Methods(http.MethodPost)

	r.HandleFunc("/launch/{id}", s.handleGetLaunch).Methods(http.MethodGet)
	r.HandleFunc("/launch/{id}/trades", s.handleTrades).Methods(http.MethodGet)
	r.HandleFunc("/launch/{id}/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/launch/{id}/curve", s.handleCurve).Methods(http.MethodGet)
	r.HandleFunc("/launch/{id}/stream", s.handleStream).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(adminMiddleware(s.opts.AdminToken))
	admin.HandleFunc("/launch/{id}", s.handleClearLaunch).Methods(http.MethodDelete)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "route not found", Code: CodeNotFound})
	})
	return r
}

func isStream(r *http.Request) bool {
	return websocketRequest(r)
}
