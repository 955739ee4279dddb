package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
	assert.Equal(t, "₹", cfg.CurrencyGlyph)
}

func TestLoadClient_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://shop.example.com/api")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("BREAKER_ENABLED", "false")

	cfg, err := LoadClient("")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.BreakerEnabled)
}

func TestLoadClient_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.env")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL=http://10.0.0.5:9000\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := LoadClient(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadClient_MissingFile(t *testing.T) {
	_, err := LoadClient(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("POSTGRES_HOST", "db")

	cfg, err := LoadServer("")
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "₹", cfg.CurrencyGlyph)
	assert.Equal(t, "postgres://postgres:postgres@db:5432/storefront?sslmode=disable", cfg.PostgresDSN())
}
