package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devalicin1/Inventory-sub005/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverPostgres, cfg.Ledger.StoreDriver)
	assert.Equal(t, config.DispatchInline, cfg.Ledger.DispatchMode)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.Scanner.Interval)
	assert.True(t, cfg.Scanner.Enabled)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DISPATCH_MODE", "WORKERS")
	t.Setenv("LEDGER_WORKERS", "3")
	t.Setenv("LEDGER_RETRY_INITIAL", "25ms")
	t.Setenv("SCANNER_ENABLED", "false")
	t.Setenv("SCANNER_INTERVAL", "1h")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverMemory, cfg.Ledger.StoreDriver)
	assert.Equal(t, config.DispatchWorkers, cfg.Ledger.DispatchMode)
	assert.Equal(t, 3, cfg.Ledger.Workers)
	assert.Equal(t, 25*time.Millisecond, cfg.Ledger.RetryInitial)
	assert.False(t, cfg.Scanner.Enabled)
	assert.Equal(t, time.Hour, cfg.Scanner.Interval)
}

func TestLoad_RechazaModoDesconocido(t *testing.T) {
	t.Setenv("DISPATCH_MODE", "kafka")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:w", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aw@db:5432/x?sslmode=disable", c.DSN())
}
