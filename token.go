// Package hsjwt signs and verifies HMAC compact tokens (HS256, HS384 and
// HS512) with its own SHA-2, HMAC and Base64URL implementations.
//
// The low-level API builds a token claim by claim and verifies a compact
// string against a key:
//
//	tok, err := hsjwt.NewToken(hsjwt.HS256)
//	err = tok.AddClaim("login", claims.String("alice"))
//	s, err := tok.Sign(key)
//	ok := hsjwt.Verify(s, key)
//
// Processor adds key checks, claim validation, rate limiting, revocation,
// logging and metrics on top.
package hsjwt

import (
	"fmt"

	"github.com/cybergodev/hsjwt/claims"
	"github.com/cybergodev/hsjwt/internal/core"
)

// NewToken returns an empty token whose header is {"alg":<alg>,"typ":"JWT"}.
func NewToken(alg Algorithm) (*Token, error) {
	return core.NewToken(alg)
}

// NewTokenWithClaims returns a token that signs payload. The token takes
// ownership of payload.
func NewTokenWithClaims(alg Algorithm, payload *claims.Set) (*Token, error) {
	return core.NewTokenWithClaims(alg, payload)
}

// Verify reports whether token is a well-formed compact token whose
// signature matches key under the algorithm named in its header.
func Verify(token string, key []byte) bool {
	return core.Verify(token, key)
}

// VerifyAlgorithm is Verify for tokens whose header names alg. Tokens
// claiming any other algorithm are rejected.
func VerifyAlgorithm(token string, key []byte, alg Algorithm) bool {
	return core.VerifyAlgorithm(token, key, alg)
}

// Verifier checks tokens against a fixed key and an allow-list of
// algorithms. It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	key     []byte
	allowed []Algorithm
}

// NewVerifier returns a Verifier for key. With no algorithms every
// supported algorithm is accepted. The key is copied.
func NewVerifier(key []byte, algs ...Algorithm) (*Verifier, error) {
	if len(key) == 0 {
		return nil, ErrInvalidSecretKey
	}
	for _, alg := range algs {
		if alg.IsZero() {
			return nil, ErrUnsupportedAlgorithm
		}
	}
	return &Verifier{
		key:     append([]byte(nil), key...),
		allowed: append([]Algorithm(nil), algs...),
	}, nil
}

// Verify reports whether token is valid under the verifier's key and names
// an allowed algorithm.
func (v *Verifier) Verify(token string) bool {
	_, err := v.Check(token)
	return err == nil
}

// Check authenticates token and returns its decoded payload. Every failure
// wraps ErrInvalidToken.
func (v *Verifier) Check(token string) ([]byte, error) {
	parts, err := core.Check(token, v.key, Algorithm{})
	if err != nil {
		return nil, err
	}
	if !v.allows(parts.Alg) {
		return nil, fmt.Errorf("%w: algorithm %s not allowed", ErrInvalidToken, parts.Alg)
	}
	return parts.Payload, nil
}

func (v *Verifier) allows(name string) bool {
	if len(v.allowed) == 0 {
		return true
	}
	for _, alg := range v.allowed {
		if alg.Name() == name {
			return true
		}
	}
	return false
}
