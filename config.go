package hsjwt

import (
	"fmt"
	"time"

	"github.com/cybergodev/hsjwt/internal/confloader"
	"github.com/cybergodev/hsjwt/internal/logger"
	"github.com/cybergodev/hsjwt/internal/revocation"
	"github.com/cybergodev/hsjwt/internal/security"
)

// MinSecretKeyLength is the shortest secret a Processor accepts.
const MinSecretKeyLength = 32

// Config represents Processor configuration
type Config struct {
	// SecretKey is the secret key used for signing tokens (minimum 32 bytes required)
	SecretKey string `koanf:"secret_key"`

	// SigningMethod specifies the algorithm used to sign tokens
	SigningMethod SigningMethod `koanf:"signing_method"`

	// EnableRateLimit enables rate limiting for token creation
	EnableRateLimit bool `koanf:"enable_rate_limit"`

	// RateLimitRate specifies the maximum number of tokens per window
	RateLimitRate int `koanf:"rate_limit_rate"`

	// RateLimitWindow defines the time window for rate limiting
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// Log configures the logger built by NewFromConfig
	Log logger.Config `koanf:"log"`

	// Revocation configures the revocation store and its cleanup
	Revocation revocation.Config `koanf:"revocation"`
}

// DefaultConfig returns a secure default configuration. It carries no
// secret; one must always be supplied.
func DefaultConfig() Config {
	return Config{
		SigningMethod:   SigningMethodHS256,
		EnableRateLimit: false,
		RateLimitRate:   100,
		RateLimitWindow: time.Minute,
		Log:             logger.DefaultConfig(),
		Revocation:      revocation.DefaultConfig(),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}

	if err := validateSecretKey(c.SecretKey); err != nil {
		return err
	}

	if _, err := c.SigningMethod.Algorithm(); err != nil {
		return err
	}

	if c.EnableRateLimit && (c.RateLimitRate <= 0 || c.RateLimitWindow <= 0) {
		return fmt.Errorf("%w: rate limit rate and window must be positive", ErrInvalidConfig)
	}

	if c.Revocation.MaxSize < 0 {
		return fmt.Errorf("%w: revocation max size cannot be negative", ErrInvalidConfig)
	}
	if c.Revocation.EnableAutoCleanup && c.Revocation.CleanupInterval <= 0 {
		return fmt.Errorf("%w: revocation cleanup interval must be positive", ErrInvalidConfig)
	}

	return nil
}

func validateSecretKey(key string) error {
	if len(key) < MinSecretKeyLength {
		return fmt.Errorf("%w: minimum %d bytes required, got %d", ErrInvalidSecretKey, MinSecretKeyLength, len(key))
	}
	if security.IsWeakKey([]byte(key)) {
		return fmt.Errorf("%w: key must have sufficient entropy and complexity", ErrInvalidSecretKey)
	}
	return nil
}

// LoadConfig reads DefaultConfig overlaid with the YAML file at path (when
// non-empty), a .env file in the working directory and HSJWT_* environment
// variables, then validates the result.
func LoadConfig(path string) (Config, error) {
	opts := []confloader.Option{confloader.WithDotenv(".env")}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	return loadConfig(confloader.NewLoader(opts...))
}

func loadConfig(l *confloader.Loader) (Config, error) {
	cfg := DefaultConfig()
	if err := l.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
