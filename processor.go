package hsjwt

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cybergodev/hsjwt/claims"
	"github.com/cybergodev/hsjwt/internal/core"
	"github.com/cybergodev/hsjwt/internal/logger"
	"github.com/cybergodev/hsjwt/internal/metrics"
	"github.com/cybergodev/hsjwt/internal/revocation"
	"github.com/cybergodev/hsjwt/internal/security"
	"github.com/cybergodev/hsjwt/internal/sha2"
)

// defaultRevocationTTL applies when a revoked token carries no "exp" claim.
const defaultRevocationTTL = 24 * time.Hour

// Claims used to pick a rate-limit bucket, in order of preference.
var rateLimitClaims = [...]string{"sub", "login", "user_id"}

// Processor signs and validates tokens under one secret and algorithm.
// It is safe for concurrent use.
type Processor struct {
	secretKey   *security.SecureBytes
	alg         Algorithm
	revocation  revocation.Manager
	redisClient *redis.Client
	rateLimiter *RateLimiter
	ownsLimiter bool
	logger      *slog.Logger
	metrics     *metrics.Collector
	now         func() time.Time

	mu     sync.RWMutex
	closed bool
}

// New creates a Processor for secretKey with the default configuration.
// The key must be at least 32 bytes and not weak.
func New(secretKey string, opts ...Option) (*Processor, error) {
	cfg := DefaultConfig()
	cfg.SecretKey = secretKey
	return newProcessor(cfg, logger.Discard(), opts)
}

// NewFromConfig creates a Processor from cfg. Unless WithLogger is given,
// it logs with a logger built from cfg.Log.
func NewFromConfig(cfg Config, opts ...Option) (*Processor, error) {
	return newProcessor(cfg, nil, opts)
}

func newProcessor(cfg Config, defaultLogger *slog.Logger, opts []Option) (*Processor, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.signingMethod != "" {
		cfg.SigningMethod = o.signingMethod
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	alg, err := cfg.SigningMethod.Algorithm()
	if err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		log = defaultLogger
	}
	if log == nil {
		log = logger.New(cfg.Log)
	}

	p := &Processor{
		secretKey: security.NewSecureBytesFromSlice([]byte(cfg.SecretKey)),
		alg:       alg,
		logger:    log,
		metrics:   o.metrics,
		now:       o.now,
	}
	if p.now == nil {
		p.now = time.Now
	}

	store := o.store
	if store == nil {
		store = p.newStore(cfg.Revocation)
	}
	p.revocation = revocation.NewManager(store, cfg.Revocation, log)

	switch {
	case o.rateLimiter != nil:
		p.rateLimiter = o.rateLimiter
	case cfg.EnableRateLimit:
		p.rateLimiter = NewRateLimiter(cfg.RateLimitRate, cfg.RateLimitWindow)
		p.ownsLimiter = true
	}

	log.Debug("processor created",
		"alg", alg.Name(),
		"rate_limit", p.rateLimiter != nil,
		"revocation_backend", backendName(cfg.Revocation, o.store != nil))

	runtime.SetFinalizer(p, (*Processor).finalize)
	return p, nil
}

func (p *Processor) newStore(cfg revocation.Config) revocation.Store {
	if cfg.RedisAddr == "" {
		return revocation.NewMemoryStore(cfg.MaxSize)
	}
	p.redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return revocation.NewRedisStore(p.redisClient, cfg.RedisPrefix)
}

func backendName(cfg revocation.Config, custom bool) string {
	switch {
	case custom:
		return "custom"
	case cfg.RedisAddr != "":
		return "redis"
	default:
		return "memory"
	}
}

// Algorithm returns the algorithm tokens are signed with.
func (p *Processor) Algorithm() Algorithm {
	return p.alg
}

// CreateToken signs payload. See CreateTokenWithContext.
func (p *Processor) CreateToken(payload *claims.Set) (string, error) {
	return p.CreateTokenWithContext(context.Background(), payload)
}

// CreateTokenWithContext validates payload and signs it. The payload is
// serialized as-is; the caller keeps ownership of it.
func (p *Processor) CreateTokenWithContext(ctx context.Context, payload *claims.Set) (string, error) {
	if err := validateClaims(payload); err != nil {
		return "", fmt.Errorf("claims validation failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.checkClosed(); err != nil {
		return "", err
	}

	if p.rateLimiter != nil {
		key := rateLimitKey(payload)
		if !p.rateLimiter.Allow(key) {
			p.metrics.RateLimited()
			p.logger.Warn("token creation rate limited", "key", key)
			return "", ErrRateLimitExceeded
		}
	}

	start := time.Now()
	tok, err := core.NewTokenWithClaims(p.alg, payload)
	if err != nil {
		return "", err
	}
	signed, err := tok.Sign(p.secretKey.Bytes())
	if err != nil {
		return "", err
	}

	p.metrics.ObserveSign(p.alg.Name(), time.Since(start))
	p.logger.Debug("token signed", "alg", p.alg.Name(), "claims", payload.Len())
	return signed, nil
}

// rateLimitKey names the bucket for payload: the first string claim among
// sub, login and user_id, or a shared bucket when none is present.
func rateLimitKey(payload *claims.Set) string {
	for _, name := range rateLimitClaims {
		if v, ok := payload.Get(name); ok {
			if s, ok := v.AsString(); ok && s != "" {
				return name + ":" + s
			}
		}
	}
	return "*"
}

// ValidateToken checks token. See ValidateTokenWithContext.
func (p *Processor) ValidateToken(token string) (bool, error) {
	return p.ValidateTokenWithContext(context.Background(), token)
}

// ValidateTokenWithContext reports whether token was signed by this
// processor's key and algorithm, has not expired and has not been revoked.
// A malformed, forged or expired token yields false with a nil error.
// Errors are reserved for an empty token, a revoked token, a closed
// processor, a done context and revocation store failures.
func (p *Processor) ValidateTokenWithContext(ctx context.Context, token string) (bool, error) {
	_, valid, err := p.ParseTokenWithContext(ctx, token)
	return valid, err
}

// ParseToken validates token and returns its payload. See
// ParseTokenWithContext.
func (p *Processor) ParseToken(token string) ([]byte, bool, error) {
	return p.ParseTokenWithContext(context.Background(), token)
}

// ParseTokenWithContext is ValidateTokenWithContext that also returns the
// decoded payload JSON of a valid token.
func (p *Processor) ParseTokenWithContext(ctx context.Context, token string) ([]byte, bool, error) {
	if token == "" {
		return nil, false, ErrEmptyToken
	}

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.checkClosed(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	parts, err := core.Check(token, p.secretKey.Bytes(), p.alg)
	if err != nil {
		p.metrics.ObserveVerify(metrics.ResultInvalid, time.Since(start))
		p.logger.Debug("token rejected", "error", err)
		return nil, false, nil
	}

	if isExpired(parts.Payload, p.now()) {
		p.metrics.ObserveVerify(metrics.ResultInvalid, time.Since(start))
		p.logger.Debug("token expired")
		return nil, false, nil
	}

	revoked, err := p.revocation.IsRevoked(ctx, tokenID(token))
	if err != nil {
		p.metrics.ObserveVerify(metrics.ResultError, time.Since(start))
		p.logger.Warn("revocation check failed", "error", err)
		return nil, false, fmt.Errorf("revocation check failed: %w", err)
	}
	if revoked {
		p.metrics.ObserveVerify(metrics.ResultRevoked, time.Since(start))
		return nil, false, ErrTokenRevoked
	}

	p.metrics.ObserveVerify(metrics.ResultValid, time.Since(start))
	return parts.Payload, true, nil
}

// RevokeToken revokes token. See RevokeTokenWithContext.
func (p *Processor) RevokeToken(token string, expiresAt time.Time) error {
	return p.RevokeTokenWithContext(context.Background(), token, expiresAt)
}

// RevokeTokenWithContext records token as revoked until expiresAt. A zero
// expiresAt uses the token's "exp" claim, or 24 hours from now when it has
// none. Only tokens this processor would accept can be revoked.
func (p *Processor) RevokeTokenWithContext(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return ErrEmptyToken
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.checkClosed(); err != nil {
		return err
	}

	parts, err := core.Check(token, p.secretKey.Bytes(), p.alg)
	if err != nil {
		return err
	}

	if expiresAt.IsZero() {
		exp, ok := payloadExpiry(parts.Payload)
		if !ok {
			exp = p.now().Add(defaultRevocationTTL)
		}
		expiresAt = exp
	}

	start := time.Now()
	if err := p.revocation.Revoke(ctx, tokenID(token), expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	p.metrics.ObserveRevoke(time.Since(start))
	p.logger.Debug("token revoked", "expires_at", expiresAt)
	return nil
}

// IsTokenRevoked reports whether token has been revoked and the revocation
// has not yet expired. The signature is not checked.
func (p *Processor) IsTokenRevoked(token string) (bool, error) {
	if token == "" {
		return false, ErrEmptyToken
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.checkClosed(); err != nil {
		return false, err
	}
	return p.revocation.IsRevoked(context.Background(), tokenID(token))
}

// tokenID is the revocation key of a compact token: the hex SHA-256 of the
// whole string.
func tokenID(token string) string {
	sum := sha2.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Close shuts down the processor and clears the secret key.
func (p *Processor) Close() error {
	return p.CloseWithContext(context.Background())
}

// CloseWithContext shuts down the processor, waiting for the revocation
// store until ctx is done.
func (p *Processor) CloseWithContext(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrProcessorClosed
	}

	var errs []error

	if p.revocation != nil {
		done := make(chan error, 1)
		go func() {
			done <- p.revocation.Close()
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Errorf("revocation manager close failed: %w", err))
			}
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("revocation manager close timeout: %w", ctx.Err()))
		}
	}

	if p.redisClient != nil {
		if err := p.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis client close failed: %w", err))
		}
		p.redisClient = nil
	}

	if p.secretKey != nil {
		p.secretKey.Destroy()
		p.secretKey = nil
	}

	if p.rateLimiter != nil && p.ownsLimiter {
		p.rateLimiter.Close()
	}
	p.rateLimiter = nil

	p.closed = true
	runtime.SetFinalizer(p, nil)
	return errors.Join(errs...)
}

func (p *Processor) finalize() {
	if !p.IsClosed() {
		_ = p.Close()
	}
}

func (p *Processor) checkClosed() error {
	if p.closed {
		return ErrProcessorClosed
	}
	return nil
}

// IsClosed returns true if the processor has been closed
func (p *Processor) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
