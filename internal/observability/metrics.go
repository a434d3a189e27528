// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Quote metrics
	QuotesServed *prometheus.CounterVec
	QuoteErrors  *prometheus.CounterVec

	// Verification metrics
	VerificationsTotal *prometheus.CounterVec

	// Ledger metrics
	TradesApplied    *prometheus.CounterVec
	LedgerConflicts  prometheus.Counter
	Graduations      prometheus.Counter
	LaunchesCreated  prometheus.Counter
	RaisedSOLApplied prometheus.Counter

	// Chain metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec
	TxCacheLookups *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StreamSubscribers   prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "launchpad"
	}

	return &Metrics{
		QuotesServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "served_total",
			Help:      "Total number of quotes served by direction and curve",
		}, []string{"direction", "curve"}),
		QuoteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "errors_total",
			Help:      "Total number of rejected quote requests by reason",
		}, []string{"direction", "reason"}),

		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "results_total",
			Help:      "Total number of transaction verifications by kind and result",
		}, []string{"kind", "result"}),

		TradesApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "trades_applied_total",
			Help:      "Total number of verified trades applied by direction",
		}, []string{"direction"}),
		LedgerConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "version_conflicts_total",
			Help:      "Total number of optimistic update conflicts",
		}),
		Graduations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "graduations_total",
			Help:      "Total number of launches that reached their fundraising target",
		}),
		LaunchesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "launches_created_total",
			Help:      "Total number of launches registered",
		}),
		RaisedSOLApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "raised_sol_total",
			Help:      "Total SOL added to raised counters by verified buys",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of failed Solana RPC calls",
		}, []string{"method"}),
		TxCacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "tx_cache_lookups_total",
			Help:      "Transaction cache lookups by result",
		}, []string{"result"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		StreamSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "stream_subscribers",
			Help:      "Current number of websocket launch stream subscribers",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordQuote records a served quote.
func RecordQuote(direction, curve string) {
	DefaultMetrics.QuotesServed.WithLabelValues(direction, curve).Inc()
}

// RecordQuoteError records a rejected quote request.
func RecordQuoteError(direction, reason string) {
	DefaultMetrics.QuoteErrors.WithLabelValues(direction, reason).Inc()
}

// RecordVerification records a verification outcome. result is "ok" or a failure reason.
func RecordVerification(kind, result string) {
	DefaultMetrics.VerificationsTotal.WithLabelValues(kind, result).Inc()
}

// RecordTradeApplied records a trade applied to the ledger.
func RecordTradeApplied(direction string, raisedDelta float64) {
	DefaultMetrics.TradesApplied.WithLabelValues(direction).Inc()
	if raisedDelta > 0 {
		DefaultMetrics.RaisedSOLApplied.Add(raisedDelta)
	}
}

// RecordLedgerConflict increments the optimistic update conflict counter.
func RecordLedgerConflict() {
	DefaultMetrics.LedgerConflicts.Inc()
}

// RecordGraduation increments the graduation counter.
func RecordGraduation() {
	DefaultMetrics.Graduations.Inc()
}

// RecordLaunchCreated increments the launches created counter.
func RecordLaunchCreated() {
	DefaultMetrics.LaunchesCreated.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64, err error) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordCacheLookup records a transaction cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.TxCacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, method, status string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, method, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route, method).Observe(seconds)
}

// AddStreamSubscribers adjusts the websocket subscriber gauge.
func AddStreamSubscribers(delta int) {
	DefaultMetrics.StreamSubscribers.Add(float64(delta))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
