package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/corosched/internal/config"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeTestConfig(t *testing.T, accessToken, userID string) string {
	t.Helper()
	content := fmt.Sprintf(`
[development]
region = "eu"
access_token = "%s"
user_id = "%s"
log_level = "trace"
log_to_stdout = true
cache_size_megabytes = 5

[production]
region = "global"
base_url = "https://coros-proxy.internal"
access_token = "%s"
user_id = "%s"
log_level = "info"
logs_path = "/var/log/trainsched"
sentry_enabled = true
sentry_dsn = "https://sentry.example.com/123"
`, accessToken, userID, accessToken, userID)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	accessToken := gofakeit.UUID()
	userID := gofakeit.DigitN(18)
	path := writeTestConfig(t, accessToken, userID)

	cfg, err := config.Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, "eu", cfg.Region)
	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, accessToken, cfg.AccessToken)
	assert.Equal(t, userID, cfg.UserID)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.Equal(t, 5, cfg.CacheSizeMegabytes)

	cfg, err = config.Load("prod", path)
	require.NoError(t, err)
	assert.Equal(t, "global", cfg.Region)
	assert.Equal(t, "https://coros-proxy.internal", cfg.BaseURL)
	assert.True(t, cfg.SentryEnabled)
	// unset cache size falls back to the default
	assert.Equal(t, 10, cfg.CacheSizeMegabytes)
}

func TestLoad_Errors(t *testing.T) {
	path := writeTestConfig(t, "token", "user")

	_, err := config.Load("staging", path)
	assert.ErrorContains(t, err, "unknown env")

	_, err = config.Load("development", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestTomlGet(t *testing.T) {
	cfgToml := &config.Toml{
		Development: &config.Config{Region: "eu"},
		Production:  &config.Config{Region: "global"},
	}

	for _, env := range []string{"dev", "development"} {
		cfg, err := cfgToml.Get(env)
		require.NoError(t, err)
		assert.Equal(t, "eu", cfg.Region)
	}
	for _, env := range []string{"prod", "production"} {
		cfg, err := cfgToml.Get(env)
		require.NoError(t, err)
		assert.Equal(t, "global", cfg.Region)
	}
}
