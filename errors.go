package hsjwt

import (
	"errors"
	"fmt"

	"github.com/cybergodev/hsjwt/claims"
	"github.com/cybergodev/hsjwt/internal/codec"
	"github.com/cybergodev/hsjwt/internal/core"
	"github.com/cybergodev/hsjwt/internal/signing"
)

// Errors reported by the token pipeline. They are the same values the
// internal packages return, so errors.Is works across layers.
var (
	ErrMemoryAllocation     = codec.ErrMemoryAllocation
	ErrInvalidEncoding      = codec.ErrInvalidEncoding
	ErrInvalidToken         = core.ErrInvalidToken
	ErrTokenTooLarge        = core.ErrTokenTooLarge
	ErrAddClaim             = core.ErrAddClaim
	ErrUnsupportedAlgorithm = signing.ErrUnsupportedAlgorithm
	ErrNullParameter        = claims.ErrNullParameter
	ErrDuplicateName        = claims.ErrDuplicateName
)

// Predefined errors for Processor operations
var (
	// Configuration errors
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrInvalidSecretKey     = errors.New("invalid secret key: must be at least 32 bytes with sufficient entropy")
	ErrInvalidSigningMethod = errors.New("invalid signing method: must be HS256, HS384, or HS512")

	// Token errors
	ErrEmptyToken   = errors.New("empty token: token string cannot be empty")
	ErrTokenRevoked = errors.New("token has been revoked and is no longer valid")

	// Claims errors
	ErrInvalidClaims = errors.New("invalid claims")

	// System errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded: too many requests")
	ErrProcessorClosed   = errors.New("processor is closed: cannot perform operations")
)

// ValidationError represents a validation error for a specific claim.
type ValidationError struct {
	Field   string // The claim that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for field '%s': %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// Unwrap returns Err, or ErrInvalidClaims when no underlying error is set.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidClaims
}
