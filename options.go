package hsjwt

import (
	"log/slog"
	"time"

	"github.com/cybergodev/hsjwt/internal/metrics"
	"github.com/cybergodev/hsjwt/internal/revocation"
)

type options struct {
	logger        *slog.Logger
	metrics       *metrics.Collector
	store         revocation.Store
	rateLimiter   *RateLimiter
	signingMethod SigningMethod
	now           func() time.Time
}

// Option customizes a Processor.
type Option func(*options)

// WithLogger sets the logger used for debug and warning events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records sign, verify, revoke and rate-limit events on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithRevocationStore replaces the store built from the configuration.
// The Processor closes the store when it is closed.
func WithRevocationStore(s revocation.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithRateLimiter enables rate limiting with a limiter owned by the caller.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(o *options) {
		o.rateLimiter = rl
	}
}

// WithSigningMethod overrides the configured signing method.
func WithSigningMethod(m SigningMethod) Option {
	return func(o *options) {
		o.signingMethod = m
	}
}

// withClock replaces time.Now for expiry checks.
func withClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
