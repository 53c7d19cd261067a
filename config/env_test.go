package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"app_port": 7000, "store_driver": "sql", "log_mongo": true, "nested": {"x": 1}}`)
	envPath := writeFile(t, dir, ".env", "APP_PORT=7001\nREDIS_ADDR=cache:6379\n")

	t.Setenv("APP_PORT", "7002")
	t.Setenv("UNRELATED_SETTING", "ignored")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "7002", get("APP_PORT", ""), "process env beats .env and json")
	assert.Equal(t, "cache:6379", get("REDIS_ADDR", ""), ".env beats defaults")
	assert.Equal(t, "sql", get("STORE_DRIVER", ""))
	assert.Equal(t, "true", get("LOG_MONGO", ""))
	assert.Equal(t, "", get("UNRELATED_SETTING", ""))
	assert.Equal(t, "", get("NESTED", ""), "non-scalar json values are skipped")
}

func TestLoadMissingFilesKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "none.json"), filepath.Join(dir, ".env")))
	assert.Equal(t, defaultMongoDatabase, get("MONGO_DB", ""))
	assert.Equal(t, defaultGRPCPort, get("GRPC_PORT", ""))
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"app_port":`)
	assert.Error(t, loadFromFiles(jsonPath, filepath.Join(dir, ".env")))
}

func TestDriverAccessorsFallBack(t *testing.T) {
	Set("STORE_DRIVER", "MEMORY")
	assert.Equal(t, "memory", StoreDriver())
	Set("STORE_DRIVER", "couchdb")
	assert.Equal(t, defaultStoreDriver, StoreDriver())

	Set("DB_DRIVER", "postgres")
	Set("DATABASE_DSN", "")
	assert.Equal(t, defaultPostgresDSN, DatabaseDSN())
	Set("DATABASE_DSN", "host=db")
	assert.Equal(t, "host=db", DatabaseDSN())
}

func TestTypedAccessors(t *testing.T) {
	Set("AUTH_RATE_LIMIT", "5")
	assert.Equal(t, 5, AuthRateLimit())
	Set("AUTH_RATE_LIMIT", "many")
	assert.Equal(t, 20, AuthRateLimit())

	Set("LOG_MONGO", "1")
	assert.True(t, LogToMongo())

	Set("JWT_TTL", "90m")
	assert.Equal(t, 90*time.Minute, JWTTTL())
	Set("JWT_TTL", "-1s")
	assert.Equal(t, 24*time.Hour, JWTTTL())

	Set("APP_PORT", "9999")
	Set("STORAGE_URL", "")
	assert.Equal(t, "http://localhost:9999/storage", StorageURL())
}
