package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_ADDR", "STORE_BACKEND", "DB_QUERY_TIMEOUT", "REDIS_ADDR", "CATALOG_WATCH", "RATE_LIMIT"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.GetServerAddr())
	assert.Equal(t, BackendMemory, cfg.GetStoreBackend())
	assert.Equal(t, 5*time.Second, cfg.GetDBQueryTimeout())
	assert.Equal(t, "127.0.0.1:6379", cfg.GetRedisAddr())
	assert.False(t, cfg.GetCatalogWatch())
	assert.Equal(t, 10.0, cfg.GetRateLimit())
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendRedis)
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DB_EXECUTE_TIMEOUT", "250ms")
	t.Setenv("CATALOG_WATCH", "true")
	t.Setenv("RNG_SEED", "42")
	t.Setenv("RATE_LIMIT", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, 3, cfg.GetRedisDB())
	assert.Equal(t, 250*time.Millisecond, cfg.GetDBExecuteTimeout())
	assert.True(t, cfg.GetCatalogWatch())
	assert.Equal(t, int64(42), cfg.GetRNGSeed())
	assert.Equal(t, 10.0, cfg.GetRateLimit())
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreBackend: BackendSurreal, DBQueryTimeout: time.Second, DBExecuteTimeout: time.Second}
	assert.Error(t, cfg.Validate())

	cfg.DBUrl, cfg.DBNs, cfg.DBDb = "ws://localhost:8000", "dw", "matches"
	assert.NoError(t, cfg.Validate())

	cfg.StoreBackend = "etcd"
	assert.ErrorContains(t, cfg.Validate(), "unknown STORE_BACKEND")

	cfg = &Config{StoreBackend: BackendMemory}
	assert.Error(t, cfg.Validate())
}
