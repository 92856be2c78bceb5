package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "catalog", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "storefront", cfg.MongoDB.Database)
	assert.Equal(t, 20, cfg.Catalog.DefaultPageSize)
	assert.Equal(t, 100, cfg.Catalog.MaxPageSize)
	assert.Equal(t, 5*time.Second, cfg.Catalog.StoreTimeoutDuration())
	assert.Empty(t, cfg.Catalog.AdminSecret)
	assert.Equal(t, "log", cfg.Audit.Driver)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
service_name = "catalog"

[http]
port = 9000

[mongodb]
uri = "mongodb://mongo:27017"
database = "shop"

[catalog]
admin_secret = "from-file"
max_page_size = 50

[kafka]
brokers = ["k1:9092", "k2:9092"]
`)
	t.Setenv("APP_HTTP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, "shop", cfg.MongoDB.Database)
	assert.Equal(t, "from-file", cfg.Catalog.AdminSecret)
	assert.Equal(t, 50, cfg.Catalog.MaxPageSize)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadLegacySecretEnv(t *testing.T) {
	t.Setenv("ADMIN_SECRET_TOKEN", "legacy")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Catalog.AdminSecret)

	t.Setenv("APP_CATALOG_ADMIN_SECRET", "preferred")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "preferred", cfg.Catalog.AdminSecret)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Audit.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Audit.Driver = "redis"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Catalog.MaxPageSize = 5
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.HTTP.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.RateLimit = RateLimitConfig{Enabled: true}
	assert.Error(t, cfg.Validate())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, "this is = = not toml")
	_, err := Load(path)
	assert.Error(t, err)
}
