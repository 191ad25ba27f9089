// Package signing provides the HMAC engine and the signing methods used for
// compact tokens. Each method is bound to exactly one Algorithm, so a hash
// function can never be combined with another algorithm's sizes.
package signing

import (
	"fmt"
)

// Method represents a signing method for compact tokens
type Method interface {
	Alg() string
	Algorithm() Algorithm
	Sign(signingInput string, key []byte) (string, error)
	Verify(signingInput string, signature string, key []byte) error
}

// GetMethod resolves an "alg" header value to its signing method.
func GetMethod(alg string) (Method, error) {
	a, err := Lookup(alg)
	if err != nil {
		return nil, fmt.Errorf("unsupported signing method: %w", err)
	}
	return GetHMACMethod(a), nil
}
