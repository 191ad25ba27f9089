// Package codec implements the two Base64 alphabets used by compact tokens:
// the padded standard alphabet of RFC 4648 §4 and the unpadded URL-safe
// alphabet of RFC 4648 §5 as profiled by RFC 7515.
package codec

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidEncoding reports malformed Base64 input: bad length, an
	// illegal character or misplaced padding.
	ErrInvalidEncoding = errors.New("invalid base64 encoding")

	// ErrMemoryAllocation reports that an output buffer could not be sized.
	ErrMemoryAllocation = errors.New("output buffer allocation failed")
)

const (
	stdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	urlAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	padChar = '='
	invalid = 0xFF

	// maxEncodable keeps every length computation below inside int range.
	maxEncodable = math.MaxInt / 4 * 3
)

// CorruptInputError describes where and why a decode failed.
type CorruptInputError struct {
	Offset int
	Reason string
}

func (e *CorruptInputError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", ErrInvalidEncoding, e.Offset, e.Reason)
}

func (e *CorruptInputError) Unwrap() error {
	return ErrInvalidEncoding
}

// Encoding is an immutable Base64 alphabet together with its padding rule.
type Encoding struct {
	alphabet  string
	decodeMap [256]byte
	padded    bool
	strict    bool
}

var (
	// Std is the padded standard alphabet.
	Std = newEncoding(stdAlphabet, true, false)

	// URL is the unpadded URL-safe alphabet used for token segments. It
	// rejects non-zero trailing bits so every byte string has exactly one
	// accepted encoding.
	URL = newEncoding(urlAlphabet, false, true)
)

func newEncoding(alphabet string, padded, strict bool) *Encoding {
	enc := &Encoding{alphabet: alphabet, padded: padded, strict: strict}
	for i := range enc.decodeMap {
		enc.decodeMap[i] = invalid
	}
	for i := 0; i < len(alphabet); i++ {
		enc.decodeMap[alphabet[i]] = byte(i)
	}
	return enc
}

// EncodedLen returns the length of the encoding of n source bytes, or
// ErrMemoryAllocation when that length does not fit in an int.
func (enc *Encoding) EncodedLen(n int) (int, error) {
	if n < 0 || n > maxEncodable {
		return 0, fmt.Errorf("%w: cannot encode %d bytes", ErrMemoryAllocation, n)
	}
	if enc.padded {
		return (n + 2) / 3 * 4, nil
	}
	return n/3*4 + (n%3*8+5)/6, nil
}

// DecodedLen returns the maximum number of bytes an n-character input
// decodes to.
func (enc *Encoding) DecodedLen(n int) int {
	if enc.padded {
		return n / 4 * 3
	}
	return n/4*3 + n%4*6/8
}

// Encode returns the Base64 text of src.
func (enc *Encoding) Encode(src []byte) (string, error) {
	n, err := enc.EncodedLen(len(src))
	if err != nil {
		return "", err
	}
	dst := make([]byte, n)
	enc.encode(dst, src)
	return string(dst), nil
}

func (enc *Encoding) encode(dst, src []byte) {
	di, si := 0, 0
	full := len(src) / 3 * 3
	for si < full {
		v := uint(src[si])<<16 | uint(src[si+1])<<8 | uint(src[si+2])
		dst[di] = enc.alphabet[v>>18&0x3F]
		dst[di+1] = enc.alphabet[v>>12&0x3F]
		dst[di+2] = enc.alphabet[v>>6&0x3F]
		dst[di+3] = enc.alphabet[v&0x3F]
		si += 3
		di += 4
	}

	rem := len(src) - si
	if rem == 0 {
		return
	}

	v := uint(src[si]) << 16
	if rem == 2 {
		v |= uint(src[si+1]) << 8
	}
	dst[di] = enc.alphabet[v>>18&0x3F]
	dst[di+1] = enc.alphabet[v>>12&0x3F]

	switch rem {
	case 2:
		dst[di+2] = enc.alphabet[v>>6&0x3F]
		if enc.padded {
			dst[di+3] = padChar
		}
	case 1:
		if enc.padded {
			dst[di+2] = padChar
			dst[di+3] = padChar
		}
	}
}

// Decode returns the bytes represented by s.
//
// For the padded alphabet s must be a multiple of four characters long and
// may end in at most two '=' characters. The unpadded alphabet accepts no
// '=' at all; its output length is inferred from the input length, so a
// truncation that leaves a well-formed length cannot be detected.
func (enc *Encoding) Decode(s string) ([]byte, error) {
	if !enc.padded {
		return enc.decodeBody(s)
	}

	if len(s)%4 != 0 {
		return nil, &CorruptInputError{Offset: len(s), Reason: "length is not a multiple of 4"}
	}

	pads := 0
	if n := len(s); n > 0 && s[n-1] == padChar {
		pads++
		if s[n-2] == padChar {
			pads++
		}
	}
	return enc.decodeBody(s[:len(s)-pads])
}

func (enc *Encoding) decodeBody(body string) ([]byte, error) {
	for i := 0; i < len(body); i++ {
		if enc.decodeMap[body[i]] != invalid {
			continue
		}
		if body[i] == padChar {
			return nil, &CorruptInputError{Offset: i, Reason: "misplaced padding"}
		}
		return nil, &CorruptInputError{Offset: i, Reason: fmt.Sprintf("illegal character %q", body[i])}
	}

	rem := len(body) % 4
	if rem == 1 {
		return nil, &CorruptInputError{Offset: len(body) - 1, Reason: "truncated quantum"}
	}

	tail := 0
	if rem > 0 {
		tail = rem - 1
	}
	out := make([]byte, len(body)/4*3+tail)

	dm := &enc.decodeMap
	di, si := 0, 0
	for ; si+4 <= len(body); si += 4 {
		v := uint(dm[body[si]])<<18 | uint(dm[body[si+1]])<<12 | uint(dm[body[si+2]])<<6 | uint(dm[body[si+3]])
		out[di] = byte(v >> 16)
		out[di+1] = byte(v >> 8)
		out[di+2] = byte(v)
		di += 3
	}

	switch rem {
	case 2:
		v := uint(dm[body[si]])<<18 | uint(dm[body[si+1]])<<12
		out[di] = byte(v >> 16)
		if enc.strict && v&0xFFFF != 0 {
			return nil, &CorruptInputError{Offset: si + 1, Reason: "non-zero trailing bits"}
		}
	case 3:
		v := uint(dm[body[si]])<<18 | uint(dm[body[si+1]])<<12 | uint(dm[body[si+2]])<<6
		out[di] = byte(v >> 16)
		out[di+1] = byte(v >> 8)
		if enc.strict && v&0xFF != 0 {
			return nil, &CorruptInputError{Offset: si + 2, Reason: "non-zero trailing bits"}
		}
	}

	return out, nil
}
