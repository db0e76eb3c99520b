package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Equal(t, ":8082", cfg.Server.GRPCPort)
	assert.Equal(t, 5, cfg.Catalog.MaxCategoryDepth)
	assert.Equal(t, 300, cfg.Redis.SearchCacheTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Elastic.Addresses)
	assert.Equal(t, "products", cfg.Elastic.Index)
	assert.Equal(t, 600, cfg.Elastic.SyncInterval)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CATEGORY_MAX_DEPTH", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("LOGGER_DISABLE_CALLER", "true")

	cfg := LoadEnv()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 3, cfg.Catalog.MaxCategoryDepth)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns, "invalid ints fall back to the default")
	assert.True(t, cfg.Logger.DisableCaller)
}

func TestEmptySliceDisablesIntegration(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDRESSES", "")

	cfg := LoadEnv()

	assert.NotNil(t, cfg.Elastic.Addresses)
	assert.Len(t, cfg.Elastic.Addresses, 0)
}
