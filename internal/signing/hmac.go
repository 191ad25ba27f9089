package signing

import (
	"errors"
	"fmt"

	"github.com/cybergodev/hsjwt/internal/codec"
	"github.com/cybergodev/hsjwt/internal/security"
)

const (
	innerPad = 0x36
	outerPad = 0x5c
)

// ErrSignatureMismatch is returned by Verify when the recomputed MAC differs.
var ErrSignatureMismatch = errors.New("signature verification failed")

// HMAC computes the RFC 2104 MAC of message under key with alg's hash.
// The key may have any length, including zero.
func HMAC(alg Algorithm, key, message []byte) ([]byte, error) {
	if alg.IsZero() {
		return nil, ErrUnsupportedAlgorithm
	}

	k := NormalizeKey(alg, key)
	defer security.ZeroBytes(k)

	bs := alg.BlockSize()
	inner := make([]byte, bs+len(message))
	outer := make([]byte, bs+alg.Size())
	for i := 0; i < bs; i++ {
		inner[i] = k[i] ^ innerPad
		outer[i] = k[i] ^ outerPad
	}
	copy(inner[bs:], message)

	innerSum := alg.spec.sum(inner)
	security.ZeroBytes(inner[:bs])
	copy(outer[bs:], innerSum)

	mac := alg.spec.sum(outer)
	security.ZeroBytes(outer[:bs])
	return mac, nil
}

// NormalizeKey derives the block-sized HMAC key: keys longer than the block
// are hashed, shorter keys are zero-padded. The result is a fresh slice of
// exactly alg.BlockSize() bytes; it is nil for the zero Algorithm.
func NormalizeKey(alg Algorithm, key []byte) []byte {
	if alg.IsZero() {
		return nil
	}

	k := make([]byte, alg.BlockSize())
	if len(key) > len(k) {
		sum := alg.spec.sum(key)
		copy(k, sum)
		security.ZeroBytes(sum)
	} else {
		copy(k, key)
	}
	return k
}

type hmacSigningMethod struct {
	alg Algorithm
}

func (h *hmacSigningMethod) Alg() string {
	return h.alg.Name()
}

func (h *hmacSigningMethod) Algorithm() Algorithm {
	return h.alg
}

func (h *hmacSigningMethod) Sign(signingInput string, key []byte) (string, error) {
	mac, err := HMAC(h.alg, key, []byte(signingInput))
	if err != nil {
		return "", fmt.Errorf("failed to compute %s: %w", h.alg, err)
	}
	defer security.ZeroBytes(mac)

	return codec.URL.Encode(mac)
}

func (h *hmacSigningMethod) Verify(signingInput, signature string, key []byte) error {
	sigBytes, err := codec.URL.Decode(signature)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	expected, err := HMAC(h.alg, key, []byte(signingInput))
	if err != nil {
		return fmt.Errorf("failed to compute %s: %w", h.alg, err)
	}
	defer security.ZeroBytes(expected)

	if !security.SecureCompare(sigBytes, expected) {
		return ErrSignatureMismatch
	}
	return nil
}

var (
	hmacHS256 = &hmacSigningMethod{HS256}
	hmacHS384 = &hmacSigningMethod{HS384}
	hmacHS512 = &hmacSigningMethod{HS512}
)

// GetHMACMethod returns the signing method for alg, or nil for the zero
// Algorithm.
func GetHMACMethod(alg Algorithm) Method {
	switch alg {
	case HS256:
		return hmacHS256
	case HS384:
		return hmacHS384
	case HS512:
		return hmacHS512
	default:
		return nil
	}
}
