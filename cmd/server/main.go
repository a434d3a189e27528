// Package main runs the launchpad HTTP service: quotes, trade confirmation,
// launch registration and live launch streams.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HeroDappDev/Claude-Fun/internal/api"
	"github.com/HeroDappDev/Claude-Fun/internal/config"
	"github.com/HeroDappDev/Claude-Fun/internal/ledger"
	"github.com/HeroDappDev/Claude-Fun/internal/logging"
	"github.com/HeroDappDev/Claude-Fun/internal/quote"
	"github.com/HeroDappDev/Claude-Fun/internal/solana"
	"github.com/HeroDappDev/Claude-Fun/internal/storage"
	chstore "github.com/HeroDappDev/Claude-Fun/internal/storage/clickhouse"
	"github.com/HeroDappDev/Claude-Fun/internal/storage/memory"
	"github.com/HeroDappDev/Claude-Fun/internal/storage/migrations"
	pgstore "github.com/HeroDappDev/Claude-Fun/internal/storage/postgres"
	"github.com/HeroDappDev/Claude-Fun/internal/verification"
)

const (
	shutdownTimeout    = 30 * time.Second
	limiterSweep       = time.Minute
	limiterIdleTimeout = 10 * time.Minute
)

// stores groups the persistence backends selected by configuration.
type stores struct {
	launches storage.LaunchStore
	trades   storage.TradeStore
	prices   storage.PricePointStore
}

func main() {
	os.Exit(start())
}

// start runs the service and returns the process exit code. Deferred cleanup
// runs before main exits.
func start() int {
	loadEnvFile()

	configPath := flag.String("config", os.Getenv("LAUNCHPAD_CONFIG"), "Path to config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		var sig os.Signal
		select {
		case sig = <-sigCh:
		case <-done:
			return
		}
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()

		select {
		case sig := <-sigCh:
			logger.Warn("second signal received, forcing exit", zap.String("signal", sig.String()))
			_ = logger.Sync()
			os.Exit(1)
		case <-time.After(shutdownTimeout):
			logger.Error("graceful shutdown timed out, forcing exit", zap.Duration("timeout", shutdownTimeout))
			_ = logger.Sync()
			os.Exit(1)
		case <-done:
		}
	}()

	err = serve(ctx, cfg, logger)
	close(done)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}

// serve opens the stores, runs the service until ctx is cancelled and closes
// the stores on every return path.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	st, cleanup, err := createStores(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	return run(ctx, cfg, st, logger)
}

// run wires the services and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, st *stores, logger *zap.Logger) error {
	policy := cfg.CurvePolicy()

	rpc := solana.NewHTTPClient(cfg.Solana.RPCEndpoint,
		solana.WithTimeout(cfg.Solana.Timeout),
		solana.WithMaxRetries(cfg.Solana.MaxRetries),
		solana.WithRetryDelay(cfg.Solana.RetryDelay),
		solana.WithCommitment(cfg.Solana.Commitment),
	)
	fetchBudget := cfg.Solana.Timeout * time.Duration(cfg.Solana.MaxRetries+1)
	chain := solana.NewCachedReader(rpc, cfg.Solana.CacheSize, cfg.Solana.CacheTTL,
		solana.WithFetchTimeout(fetchBudget),
	)

	verifier := verification.NewVerifier(chain, cfg.VerifierConfig(), logger.Named("verification"))
	quotes := quote.NewService(st.launches, policy, logger.Named("quote"))
	hub := api.NewHub(policy, logger.Named("stream"))
	updater := ledger.NewUpdater(st.launches, policy, cfg.UpdaterConfig(), logger.Named("ledger"),
		ledger.WithPricePoints(st.prices),
		ledger.WithPublisher(hub),
	)
	limiter := api.NewRateLimiter(cfg.Server.ConfirmRate, cfg.Server.ConfirmBurst, logger.Named("ratelimit"))

	srv := api.NewServer(api.Deps{
		Quotes:   quotes,
		Verifier: verifier,
		Ledger:   updater,
		Trades:   st.trades,
		Prices:   st.prices,
		Chain:    chain,
		Hub:      hub,
		Limiter:  limiter,
	}, api.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		AdminToken:     cfg.Server.AdminToken,
	}, logger.Named("api"))

	if cfg.Server.AdminToken == "" {
		logger.Warn("admin token not set, admin routes disabled")
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		limiter.Run(gctx, limiterSweep, limiterIdleTimeout)
		return nil
	})

	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("rpc", cfg.Solana.RPCEndpoint),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// createStores opens the configured backends and applies migrations.
// Without a ClickHouse DSN price history is kept in memory.
func createStores(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*stores, func(), error) {
	if cfg.Driver == config.DriverMemory {
		trades := memory.NewTradeStore()
		logger.Info("using in-memory storage")
		return &stores{
			launches: memory.NewLaunchStore(trades),
			trades:   trades,
			prices:   memory.NewPricePointStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN, pgstore.WithMaxConns(cfg.MaxConns))
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	st := &stores{
		launches: pgstore.NewLaunchStore(pool),
		trades:   pgstore.NewTradeStore(pool),
	}
	closers := []func(){pool.Close}

	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		st.prices = chstore.NewPricePointStore(conn)
		closers = append(closers, func() { _ = conn.Close() })
	} else {
		logger.Warn("clickhouse dsn not set, price history kept in memory")
		st.prices = memory.NewPricePointStore()
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return st, cleanup, nil
}

// loadEnvFile loads variables from .env without overriding the environment.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, strings.TrimSpace(value))
		}
	}
}
