// Package core builds and checks compact tokens: header and payload claim
// sets serialized canonically, each segment Base64URL-encoded, and an HMAC
// signature over "header.payload".
package core

import (
	"errors"
	"fmt"

	"github.com/cybergodev/hsjwt/claims"
	"github.com/cybergodev/hsjwt/internal/codec"
	"github.com/cybergodev/hsjwt/internal/signing"
)

var (
	// ErrAddClaim is returned when a claim cannot be appended to a payload.
	ErrAddClaim = errors.New("failed to add claim")
	// ErrInvalidToken is the single failure reported for malformed or
	// unauthenticated compact tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenTooLarge is returned when a compact string would exceed
	// MaxTokenLength.
	ErrTokenTooLarge = fmt.Errorf("token exceeds %d characters", MaxTokenLength)
)

const (
	// TokenType is the "typ" header value written on every token.
	TokenType = "JWT"

	// MaxTokenLength bounds the compact strings produced by Sign and
	// accepted for verification.
	MaxTokenLength = 8192
)

// Token is a token under construction. The header always starts with "alg"
// followed by "typ"; the payload collects claims in the order they are added.
type Token struct {
	Header  *claims.Set
	Payload *claims.Set
	Method  signing.Method
}

// NewToken returns a token whose header names alg.
func NewToken(alg signing.Algorithm) (*Token, error) {
	method := signing.GetHMACMethod(alg)
	if method == nil {
		return nil, signing.ErrUnsupportedAlgorithm
	}

	header := claims.New()
	if err := header.AddString("alg", method.Alg()); err != nil {
		return nil, err
	}
	if err := header.AddString("typ", TokenType); err != nil {
		return nil, err
	}

	return &Token{
		Header:  header,
		Payload: claims.New(),
		Method:  method,
	}, nil
}

// NewTokenWithClaims returns a token that signs payload as-is. The token
// takes ownership of payload.
func NewTokenWithClaims(alg signing.Algorithm, payload *claims.Set) (*Token, error) {
	if payload == nil {
		return nil, claims.ErrNullParameter
	}
	t, err := NewToken(alg)
	if err != nil {
		return nil, err
	}
	t.Payload = payload
	return t, nil
}

// AddClaim appends name=v to the payload.
func (t *Token) AddClaim(name string, v claims.Value) error {
	if t == nil {
		return fmt.Errorf("%w: %w", ErrAddClaim, claims.ErrNullParameter)
	}
	if err := t.Payload.Append(name, v); err != nil {
		return fmt.Errorf("%w %q: %w", ErrAddClaim, name, err)
	}
	return nil
}

// SigningString returns "b64url(header).b64url(payload)".
func (t *Token) SigningString() (string, error) {
	if t == nil || t.Method == nil {
		return "", signing.ErrUnsupportedAlgorithm
	}

	header, err := t.Header.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("failed to serialize header: %w", err)
	}
	payload, err := t.Payload.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload: %w", err)
	}

	h, err := EncodeSegment(header)
	if err != nil {
		return "", fmt.Errorf("failed to encode header: %w", err)
	}
	p, err := EncodeSegment(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	return h + "." + p, nil
}

// Sign returns the compact token for t under key. A token can be signed any
// number of times; equal inputs yield equal strings. Tokens longer than
// MaxTokenLength are refused with ErrTokenTooLarge, since Verify would
// reject them.
func (t *Token) Sign(key []byte) (string, error) {
	signingInput, err := t.SigningString()
	if err != nil {
		return "", err
	}
	sigLen, err := codec.URL.EncodedLen(t.Method.Algorithm().Size())
	if err != nil {
		return "", err
	}
	if len(signingInput)+1+sigLen > MaxTokenLength {
		return "", ErrTokenTooLarge
	}

	sig, err := t.Method.Sign(signingInput, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signingInput + "." + sig, nil
}

// Algorithm returns the algorithm named in the header.
func (t *Token) Algorithm() signing.Algorithm {
	if t == nil || t.Method == nil {
		return signing.Algorithm{}
	}
	return t.Method.Algorithm()
}
