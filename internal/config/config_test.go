package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  name: property-ingest\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBatchSize, cfg.Ingestion.BatchSize)
	assert.Equal(t, DefaultPlaceholderURL, cfg.Ingestion.PlaceholderURL)
	assert.Equal(t, DefaultFallbackAgent, cfg.Ingestion.FallbackAgentID)
	assert.NotEmpty(t, cfg.Ingestion.Amenities)
	assert.Equal(t, 30*time.Second, cfg.Ingestion.StoreTimeout)
	assert.Equal(t, 2, cfg.Seeding.MaxPairsPerCity)
	assert.Equal(t, ":dlq", cfg.Redis.DLQSuffix)
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("INGEST_TEST_DB_PASSWORD", "s3cret")

	cfg, err := Parse([]byte("database:\n  password: ${INGEST_TEST_DB_PASSWORD}\n  port: 3306\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestParse_RejectsHugeBatch(t *testing.T) {
	_, err := Parse([]byte("ingestion:\n  batch_size: 5000\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "ingestion:\n  batch_size: 7\n  store_timeout: 5s\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Ingestion.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Ingestion.StoreTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		User: "u", Password: "p", Host: "db", Port: 3306, Name: "listings",
		Charset: "utf8mb4", ParseTime: true, Loc: "UTC",
	}}
	assert.Equal(t, "u:p@tcp(db:3306)/listings?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true", cfg.DatabaseDSN())
}
