// Package config loads service configuration from an optional YAML file and
// LAUNCHPAD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/HeroDappDev/Claude-Fun/internal/curve"
	"github.com/HeroDappDev/Claude-Fun/internal/ledger"
	"github.com/HeroDappDev/Claude-Fun/internal/solana"
	"github.com/HeroDappDev/Claude-Fun/internal/verification"
)

// EnvPrefix prefixes every environment override, e.g. LAUNCHPAD_SOLANA_RPC_ENDPOINT.
const EnvPrefix = "LAUNCHPAD"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Solana       SolanaConfig       `mapstructure:"solana"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Curve        CurveConfig        `mapstructure:"curve"`
	Verification VerificationConfig `mapstructure:"verification"`
	Ledger       LedgerConfig       `mapstructure:"ledger"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AdminToken     string        `mapstructure:"admin_token"`
	ConfirmRate    float64       `mapstructure:"confirm_rate"`  // requests per second per client
	ConfirmBurst   int           `mapstructure:"confirm_burst"` // bucket size per client
}

type SolanaConfig struct {
	RPCEndpoint string        `mapstructure:"rpc_endpoint"`
	Commitment  string        `mapstructure:"commitment"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CacheSize   int           `mapstructure:"cache_size"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickHouseDSN string `mapstructure:"clickhouse_dsn"`
	MaxConns      int32  `mapstructure:"max_conns"`
}

type CurveConfig struct {
	FeeRate         float64 `mapstructure:"fee_rate"`
	SupplyFraction  float64 `mapstructure:"supply_fraction"`
	ExponentialRate float64 `mapstructure:"exponential_rate"`
	LogMultiplier   float64 `mapstructure:"log_multiplier"`
}

type VerificationConfig struct {
	TolerancePct     float64 `mapstructure:"tolerance_pct"`
	ToleranceEpsilon float64 `mapstructure:"tolerance_epsilon"`
}

type LedgerConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
	LockShards int `mapstructure:"lock_shards"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Format      string `mapstructure:"format"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.addr":            ":8080",
		"server.read_timeout":    10 * time.Second,
		"server.write_timeout":   30 * time.Second,
		"server.request_timeout": 15 * time.Second,
		"server.admin_token":     "",
		"server.confirm_rate":    2.0,
		"server.confirm_burst":   5,

		"solana.rpc_endpoint": "",
		"solana.commitment":   solana.DefaultCommitment,
		"solana.timeout":      solana.DefaultTimeout,
		"solana.max_retries":  solana.DefaultMaxRetries,
		"solana.retry_delay":  solana.DefaultRetryDelay,
		"solana.cache_ttl":    solana.DefaultCacheTTL,
		"solana.cache_size":   solana.DefaultCacheSize,

		"storage.driver":         DriverMemory,
		"storage.postgres_dsn":   "",
		"storage.clickhouse_dsn": "",
		"storage.max_conns":      10,

		"curve.fee_rate":         curve.DefaultFeeRate,
		"curve.supply_fraction":  curve.DefaultSupplyFraction,
		"curve.exponential_rate": curve.DefaultExponentialRate,
		"curve.log_multiplier":   curve.DefaultLogMultiplier,

		"verification.tolerance_pct":     verification.DefaultTolerancePct,
		"verification.tolerance_epsilon": verification.DefaultToleranceEpsilon,

		"ledger.max_retries": ledger.DefaultMaxRetries,
		"ledger.lock_shards": ledger.DefaultLockShards,

		"log.level":       "info",
		"log.development": false,
		"log.format":      "json",
	}
}

// LoadConfig reads path (optional, empty skips the file), applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required keys and value ranges.
func (c *Config) Validate() error {
	if err := validateServer(&c.Server); err != nil {
		return err
	}
	if err := validateSolana(&c.Solana); err != nil {
		return err
	}
	if err := validateStorage(&c.Storage); err != nil {
		return err
	}
	if err := c.CurvePolicy().Validate(); err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	if err := c.VerifierConfig().Validate(); err != nil {
		return fmt.Errorf("verification: %w", err)
	}
	if c.Ledger.MaxRetries < 0 {
		return errors.New("invalid ledger.max_retries")
	}
	if c.Ledger.LockShards <= 0 {
		return errors.New("invalid ledger.lock_shards")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func validateServer(s *ServerConfig) error {
	if s.Addr == "" {
		return errors.New("missing server.addr")
	}
	if s.RequestTimeout <= 0 {
		return errors.New("invalid server.request_timeout")
	}
	if s.ConfirmRate <= 0 || s.ConfirmBurst <= 0 {
		return errors.New("server.confirm_rate and server.confirm_burst must be positive")
	}
	return nil
}

func validateSolana(s *SolanaConfig) error {
	if s.RPCEndpoint == "" {
		return errors.New("missing solana.rpc_endpoint")
	}
	parsed, err := url.Parse(s.RPCEndpoint)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid solana.rpc_endpoint URL")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("solana.rpc_endpoint must use http or https")
	}
	switch s.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid solana.commitment %q", s.Commitment)
	}
	if s.Timeout <= 0 {
		return errors.New("invalid solana.timeout")
	}
	if s.MaxRetries < 0 {
		return errors.New("invalid solana.max_retries")
	}
	if s.CacheTTL <= 0 || s.CacheSize <= 0 {
		return errors.New("solana.cache_ttl and solana.cache_size must be positive")
	}
	return nil
}

func validateStorage(s *StorageConfig) error {
	switch s.Driver {
	case DriverMemory:
	case DriverPostgres:
		if s.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", s.Driver)
	}
	return nil
}

// CurvePolicy returns the curve policy constants.
func (c *Config) CurvePolicy() curve.Policy {
	return curve.Policy{
		FeeRate:         c.Curve.FeeRate,
		SupplyFraction:  c.Curve.SupplyFraction,
		ExponentialRate: c.Curve.ExponentialRate,
		LogMultiplier:   c.Curve.LogMultiplier,
	}
}

// VerifierConfig returns the trade verification tolerance.
func (c *Config) VerifierConfig() verification.Config {
	return verification.Config{
		TolerancePct:     c.Verification.TolerancePct,
		ToleranceEpsilon: c.Verification.ToleranceEpsilon,
	}
}

// UpdaterConfig returns the ledger updater settings.
func (c *Config) UpdaterConfig() ledger.Config {
	cfg := ledger.DefaultConfig()
	cfg.MaxRetries = c.Ledger.MaxRetries
	cfg.LockShards = c.Ledger.LockShards
	return cfg
}
