package hsjwt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybergodev/hsjwt/internal/confloader"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.SecretKey, "no default secret")
	assert.Equal(t, SigningMethodHS256, cfg.SigningMethod)
	assert.False(t, cfg.EnableRateLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Revocation.EnableAutoCleanup)

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSecretKey)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.SecretKey = testSecretKey
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"empty signing method means HS256", func(c *Config) { c.SigningMethod = "" }, nil},
		{"short key", func(c *Config) { c.SecretKey = "Kx9#mP2$vL8@" }, ErrInvalidSecretKey},
		{"weak key", func(c *Config) { c.SecretKey = "changeme-Kx9#mP2$vL8@nQ5!wR7&tY3^uI6" }, ErrInvalidSecretKey},
		{"unknown method", func(c *Config) { c.SigningMethod = "ES256" }, ErrInvalidSigningMethod},
		{"rate limit without rate", func(c *Config) {
			c.EnableRateLimit = true
			c.RateLimitRate = 0
		}, ErrInvalidConfig},
		{"rate limit without window", func(c *Config) {
			c.EnableRateLimit = true
			c.RateLimitWindow = 0
		}, ErrInvalidConfig},
		{"negative revocation size", func(c *Config) { c.Revocation.MaxSize = -1 }, ErrInvalidConfig},
		{"auto cleanup without interval", func(c *Config) { c.Revocation.CleanupInterval = 0 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hsjwt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
secret_key: "`+testSecretKey+`"
signing_method: HS384
enable_rate_limit: true
rate_limit_rate: 10
rate_limit_window: 30s
log:
  level: debug
  format: text
revocation:
  max_size: 500
  cleanup_interval: 1m
`), 0o600))
	t.Setenv("HSJWT_SIGNING_METHOD", "HS512")
	t.Setenv("HSJWT_REVOCATION__REDIS_PREFIX", "svc:revoked")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, testSecretKey, cfg.SecretKey)
	assert.Equal(t, SigningMethodHS512, cfg.SigningMethod, "environment overrides the file")
	assert.True(t, cfg.EnableRateLimit)
	assert.Equal(t, 10, cfg.RateLimitRate)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NotNil(t, cfg.Log.Output, "output is kept from the defaults")
	assert.Equal(t, 500, cfg.Revocation.MaxSize)
	assert.Equal(t, time.Minute, cfg.Revocation.CleanupInterval)
	assert.Equal(t, "svc:revoked", cfg.Revocation.RedisPrefix)
	assert.True(t, cfg.Revocation.EnableAutoCleanup)

	p, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, HS512, p.Algorithm())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	l := confloader.NewLoader(confloader.WithEnvPrefix("HSJWT_NOSECRET_TEST_"))
	_, err := loadConfig(l)
	assert.ErrorIs(t, err, ErrInvalidSecretKey)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("HSJWT_ENVONLY_TEST_SECRET_KEY", testSecretKey)
	t.Setenv("HSJWT_ENVONLY_TEST_RATE_LIMIT_RATE", "7")

	cfg, err := loadConfig(confloader.NewLoader(confloader.WithEnvPrefix("HSJWT_ENVONLY_TEST_")))
	require.NoError(t, err)
	assert.Equal(t, testSecretKey, cfg.SecretKey)
	assert.Equal(t, 7, cfg.RateLimitRate)
	assert.Equal(t, SigningMethodHS256, cfg.SigningMethod)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
