package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2024, cfg.Server.DefaultCycle)
	assert.Equal(t, 60, cfg.Resolver.MinAcceptScore)
	assert.Equal(t, 3, cfg.Resolver.SearchCycles)
	assert.Equal(t, 100, cfg.Aggregation.SamplePageSize)
	assert.Equal(t, 500, cfg.Aggregation.FullPageSize)
	assert.Equal(t, 80.0, cfg.Quality.High)
	assert.Equal(t, 40.0, cfg.Quality.Low)
	assert.Equal(t, 15*time.Minute, cfg.Cache.ReportTTL)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TotalsTTL)
	assert.Equal(t, time.Hour, cfg.Cache.TransactionsTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.CandidateTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FEC_API_KEY", "live-key")
	t.Setenv("RESOLVER_MIN_ACCEPT_SCORE", "75")
	t.Setenv("FEC_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("QUALITY_HIGH_THRESHOLD", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, "live-key", cfg.Upstream.FEC.APIKey)
	assert.Equal(t, 75, cfg.Resolver.MinAcceptScore)
	assert.Equal(t, 3*time.Second, cfg.Upstream.FEC.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 80.0, cfg.Quality.High, "unparseable values keep the default")
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "civicfin.yaml")
	content := `
upstream:
  fec:
    api_key: ${TEST_FEC_KEY}
    timeout: 2s
quality:
  high: 90
cache:
  report_ttl: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TEST_FEC_KEY", "from-file")
	t.Setenv("CIVICFIN_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Upstream.FEC.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Upstream.FEC.Timeout)
	assert.Equal(t, 90.0, cfg.Quality.High)
	assert.Equal(t, 40.0, cfg.Quality.Low, "absent keys keep env defaults")
	assert.Equal(t, 5*time.Minute, cfg.Cache.ReportTTL)
	assert.Equal(t, "https://api.open.fec.gov/v1", cfg.Upstream.FEC.BaseURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CIVICFIN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("inverted thresholds", func(t *testing.T) {
		t.Setenv("QUALITY_HIGH_THRESHOLD", "30")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quality thresholds")
	})

	t.Run("redis backend without url", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "redis")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.url")
	})

	t.Run("postgres crosswalk without dsn", func(t *testing.T) {
		t.Setenv("CROSSWALK_SOURCE", "postgres")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres.dsn")
	})
}
