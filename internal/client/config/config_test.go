package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Gateway.URL)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "jobtrail.db", cfg.Storage.Path)
	assert.Equal(t, time.Second, cfg.Geocode.MinInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Geocode.CacheTTL)
	assert.Equal(t, 1000, cfg.Geocode.CacheSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Sync.Offline)
	assert.False(t, cfg.Home.IsSet())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobtrail.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
gateway:
  url: http://file:8080
  timeout: 5s
storage:
  path: /tmp/file.db
home:
  latitude: 47.6
  longitude: -122.3
  radius_miles: 10
log:
  level: warn
`)
	t.Setenv("JOBTRAIL_STORAGE_PATH", "/tmp/env.db")
	t.Setenv("JOBTRAIL_GEOCODE_USER_AGENT", "env-agent")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server", "", "")
	flags.String("db", "", "")
	flags.Bool("offline", false, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--offline", "--log-level", "debug"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "http://file:8080", cfg.Gateway.URL)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "/tmp/env.db", cfg.Storage.Path)
	assert.Equal(t, "env-agent", cfg.Geocode.UserAgent)
	assert.True(t, cfg.Sync.Offline)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Home.IsSet())
	assert.InDelta(t, 10.0, cfg.Home.RadiusMiles, 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
geocode:
  cache_size: 0
home:
  latitude: 120
log:
  level: chatty
`)
	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geocode.cache_size")
	assert.Contains(t, err.Error(), "home coordinates")
	assert.Contains(t, err.Error(), "chatty")
}

func TestConfig_UserID(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-42"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	cfg := Config{Gateway: GatewayConfig{Token: token}}
	id, err := cfg.UserID()
	require.NoError(t, err)
	assert.Equal(t, "user-42", id)

	cfg.User.ID = "explicit"
	id, err = cfg.UserID()
	require.NoError(t, err)
	assert.Equal(t, "explicit", id)

	_, err = Config{}.UserID()
	assert.Error(t, err)

	_, err = Config{Gateway: GatewayConfig{Token: "garbage"}}.UserID()
	assert.Error(t, err)
}
