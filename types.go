package hsjwt

import (
	"fmt"

	"github.com/cybergodev/hsjwt/internal/core"
	"github.com/cybergodev/hsjwt/internal/signing"
)

// SigningMethod names a supported token algorithm in configuration.
// All methods use HMAC with a SHA-2 family hash function.
type SigningMethod string

const (
	// SigningMethodHS256 uses HMAC with SHA-256 (recommended for most use cases)
	SigningMethodHS256 SigningMethod = "HS256"

	// SigningMethodHS384 uses HMAC with SHA-384
	SigningMethodHS384 SigningMethod = "HS384"

	// SigningMethodHS512 uses HMAC with SHA-512
	SigningMethodHS512 SigningMethod = "HS512"
)

// Algorithm binds an algorithm name to its hash function and sizes.
type Algorithm = signing.Algorithm

// Token is a token under construction; see NewToken.
type Token = core.Token

// The supported algorithms.
var (
	HS256 = signing.HS256
	HS384 = signing.HS384
	HS512 = signing.HS512
)

// Algorithm resolves m to its descriptor. The empty method means HS256.
func (m SigningMethod) Algorithm() (Algorithm, error) {
	if m == "" {
		return HS256, nil
	}
	alg, err := signing.Lookup(string(m))
	if err != nil {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrInvalidSigningMethod, string(m))
	}
	return alg, nil
}

// LookupAlgorithm returns the algorithm registered under an "alg" header name.
func LookupAlgorithm(name string) (Algorithm, error) {
	return signing.Lookup(name)
}
