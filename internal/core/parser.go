package core

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/cybergodev/hsjwt/internal/signing"
)

var (
	errEmptyToken         = fmt.Errorf("%w: empty token", ErrInvalidToken)
	errTokenTooLarge      = fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenTooLarge)
	errInvalidTokenFormat = fmt.Errorf("%w: expected three dot-separated segments", ErrInvalidToken)
	errInvalidHeader      = fmt.Errorf("%w: header is not a JSON object", ErrInvalidToken)
	errMissingAlgorithm   = fmt.Errorf("%w: header has no string \"alg\"", ErrInvalidToken)
)

// Parts is a compact token split into its segments. Header and Payload are
// decoded but not authenticated.
type Parts struct {
	Raw          string
	SigningInput string
	Header       []byte
	Payload      []byte
	Signature    string
	Alg          string
}

// split3 cuts s at its two separators and fails unless there are exactly two.
func split3(s string, sep byte) (string, string, string, bool) {
	first, second := -1, -1
	for i := 0; i < len(s); i++ {
		if s[i] != sep {
			continue
		}
		switch {
		case first == -1:
			first = i
		case second == -1:
			second = i
		default:
			return "", "", "", false
		}
	}

	if second == -1 {
		return "", "", "", false
	}
	return s[:first], s[first+1 : second], s[second+1:], true
}

// Split decodes the header and payload of token without checking its
// signature. Every error wraps ErrInvalidToken.
func Split(token string) (*Parts, error) {
	if len(token) == 0 {
		return nil, errEmptyToken
	}
	if len(token) > MaxTokenLength {
		return nil, errTokenTooLarge
	}

	h, p, sig, ok := split3(token, '.')
	if !ok {
		return nil, errInvalidTokenFormat
	}

	header, err := DecodeSegment(h)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidToken, err)
	}
	if !gjson.ValidBytes(header) || !gjson.ParseBytes(header).IsObject() {
		return nil, errInvalidHeader
	}
	alg := gjson.GetBytes(header, "alg")
	if alg.Type != gjson.String {
		return nil, errMissingAlgorithm
	}

	payload, err := DecodeSegment(p)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrInvalidToken, err)
	}

	return &Parts{
		Raw:          token,
		SigningInput: token[:len(h)+1+len(p)],
		Header:       header,
		Payload:      payload,
		Signature:    sig,
		Alg:          alg.Str,
	}, nil
}

// Check authenticates token under key. The algorithm comes from the header;
// a non-zero expected algorithm must match it. Every failure wraps
// ErrInvalidToken.
func Check(token string, key []byte, expected signing.Algorithm) (*Parts, error) {
	parts, err := Split(token)
	if err != nil {
		return nil, err
	}

	method, err := signing.GetMethod(parts.Alg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !expected.IsZero() && method.Algorithm() != expected {
		return nil, fmt.Errorf("%w: algorithm %s, expected %s", ErrInvalidToken, parts.Alg, expected)
	}

	if err := method.Verify(parts.SigningInput, parts.Signature, key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return parts, nil
}

// Verify reports whether token carries a valid signature under key for the
// algorithm named in its header.
func Verify(token string, key []byte) bool {
	_, err := Check(token, key, signing.Algorithm{})
	return err == nil
}

// VerifyAlgorithm is Verify restricted to tokens whose header names alg.
func VerifyAlgorithm(token string, key []byte, alg signing.Algorithm) bool {
	if alg.IsZero() {
		return false
	}
	_, err := Check(token, key, alg)
	return err == nil
}
