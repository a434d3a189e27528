package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithEnv(t *testing.T) {
	t.Setenv("LAUNCHPAD_SOLANA_RPC_ENDPOINT", "https://api.mainnet-beta.solana.com")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "finalized", cfg.Solana.Commitment)
	assert.Equal(t, 3, cfg.Solana.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Solana.CacheTTL)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 0.0025, cfg.Curve.FeeRate)
	assert.Equal(t, 0.8, cfg.Curve.SupplyFraction)
	assert.Equal(t, 2.0, cfg.Curve.ExponentialRate)
	assert.Equal(t, 10.0, cfg.Curve.LogMultiplier)
	assert.Equal(t, 0.05, cfg.Verification.TolerancePct)
	assert.Equal(t, 0.01, cfg.Verification.ToleranceEpsilon)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 64, cfg.Ledger.LockShards)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LAUNCHPAD_SOLANA_RPC_ENDPOINT", "http://localhost:8899")
	t.Setenv("LAUNCHPAD_SOLANA_TIMEOUT", "3s")
	t.Setenv("LAUNCHPAD_CURVE_FEE_RATE", "0.01")
	t.Setenv("LAUNCHPAD_LEDGER_LOCK_SHARDS", "8")
	t.Setenv("LAUNCHPAD_LOG_DEVELOPMENT", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Solana.Timeout)
	assert.Equal(t, 0.01, cfg.CurvePolicy().FeeRate)
	assert.Equal(t, 8, cfg.UpdaterConfig().LockShards)
	assert.True(t, cfg.Log.Development)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.yaml")
	content := `
server:
  addr: ":9090"
  admin_token: secret
solana:
  rpc_endpoint: https://rpc.example.com
  commitment: confirmed
  cache_size: 16
storage:
  driver: postgres
  postgres_dsn: postgres://launchpad@localhost/launchpad
verification:
  tolerance_pct: 0.02
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "secret", cfg.Server.AdminToken)
	assert.Equal(t, "confirmed", cfg.Solana.Commitment)
	assert.Equal(t, 16, cfg.Solana.CacheSize)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 0.02, cfg.VerifierConfig().TolerancePct)
	assert.Equal(t, 0.01, cfg.VerifierConfig().ToleranceEpsilon)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("LAUNCHPAD_SOLANA_RPC_ENDPOINT", "https://rpc.example.com")
	base, err := LoadConfig("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing endpoint", func(c *Config) { c.Solana.RPCEndpoint = "" }},
		{"ws endpoint", func(c *Config) { c.Solana.RPCEndpoint = "wss://rpc.example.com" }},
		{"bad commitment", func(c *Config) { c.Solana.Commitment = "recent" }},
		{"negative retries", func(c *Config) { c.Solana.MaxRetries = -1 }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"fee rate too high", func(c *Config) { c.Curve.FeeRate = 1 }},
		{"zero supply fraction", func(c *Config) { c.Curve.SupplyFraction = 0 }},
		{"negative tolerance", func(c *Config) { c.Verification.TolerancePct = -0.1 }},
		{"zero lock shards", func(c *Config) { c.Ledger.LockShards = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero confirm rate", func(c *Config) { c.Server.ConfirmRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
