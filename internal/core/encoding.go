package core

import (
	"fmt"

	"github.com/cybergodev/hsjwt/internal/codec"
)

const maxSegmentLength = MaxTokenLength

// EncodeSegment Base64URL-encodes one token segment without padding.
func EncodeSegment(b []byte) (string, error) {
	return codec.URL.Encode(b)
}

// DecodeSegment decodes one Base64URL token segment. Only the canonical
// unpadded form is accepted.
func DecodeSegment(segment string) ([]byte, error) {
	if len(segment) == 0 {
		return nil, fmt.Errorf("empty segment")
	}
	if len(segment) > maxSegmentLength {
		return nil, fmt.Errorf("segment too large: maximum %d characters allowed", maxSegmentLength)
	}

	b, err := codec.URL.Decode(segment)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64url: %w", err)
	}
	return b, nil
}
