package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/carecost/internal/model"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writeFile(t, `
fallback_table: /etc/carecost/fallback.yaml
range_spread: 0.1
concurrency: 4
lookup_timeout: 2s
cache_ttl: 1h
redis_addr: localhost:6379
`)
	c := New()
	require.NoError(t, c.LoadFromFile(path))

	assert.Equal(t, "/etc/carecost/fallback.yaml", c.FallbackTable)
	assert.Equal(t, 0.1, c.RangeSpread)
	assert.Equal(t, 4, c.Concurrency)
	assert.Equal(t, 2*time.Second, c.LookupTimeout)
	assert.Equal(t, time.Hour, c.CacheTTL)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
}

func TestLoadFromFile_KeepsDefaults(t *testing.T) {
	path := writeFile(t, "range_spread: 0.05\n")
	c := New()
	require.NoError(t, c.LoadFromFile(path))

	assert.Equal(t, 0.05, c.RangeSpread)
	assert.Equal(t, DefaultConcurrency, c.Concurrency)
	assert.Equal(t, DefaultLookupTimeout, c.LookupTimeout)
	assert.Equal(t, DefaultCacheTTL, c.CacheTTL)
	assert.Empty(t, c.RedisAddr)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"spread too wide":  "range_spread: 1.5\n",
		"negative spread":  "range_spread: -0.1\n",
		"zero concurrency": "concurrency: 0\n",
		"zero timeout":     "lookup_timeout: 0s\n",
		"bad duration":     "lookup_timeout: soon\n",
		"not yaml":         "::: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, New().LoadFromFile(writeFile(t, body)))
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	assert.Error(t, New().LoadFromFile("/nonexistent/config.yaml"))
}

func TestValidate(t *testing.T) {
	file := writeFile(t, "")

	c := New()
	assert.ErrorContains(t, c.Validate(), "--file is required")

	c.FilePath = filepath.Join(t.TempDir(), "missing.parquet")
	assert.ErrorContains(t, c.Validate(), "not accessible")

	c.FilePath = file
	require.NoError(t, c.Validate())

	c.Kind = "bogus"
	assert.ErrorContains(t, c.Validate(), "unknown reference kind")

	c.Kind = model.KindGeoFactors
	assert.ErrorContains(t, c.ValidateWithDSN(), "CARECOST_DB_URL")

	c.DSN = "postgres://localhost/carecost"
	assert.NoError(t, c.ValidateWithDSN())
}
