package signing

import (
	"errors"
	"fmt"

	"github.com/cybergodev/hsjwt/internal/sha2"
)

// ErrUnsupportedAlgorithm is returned for algorithm names outside HS256,
// HS384 and HS512, and for the zero Algorithm.
var ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

// Algorithm binds a token algorithm name to its hash function, block size
// and digest size. The only usable values are HS256, HS384 and HS512; the
// zero value is rejected by every operation that needs a hash.
type Algorithm struct {
	spec *algorithmSpec
}

type algorithmSpec struct {
	name      string
	blockSize int
	size      int
	sum       func([]byte) []byte
}

var (
	HS256 = Algorithm{&algorithmSpec{
		name:      "HS256",
		blockSize: sha2.BlockSize256,
		size:      sha2.Size256,
		sum: func(b []byte) []byte {
			d := sha2.Sum256(b)
			return d[:]
		},
	}}

	HS384 = Algorithm{&algorithmSpec{
		name:      "HS384",
		blockSize: sha2.BlockSize512,
		size:      sha2.Size384,
		sum: func(b []byte) []byte {
			d := sha2.Sum384(b)
			return d[:]
		},
	}}

	HS512 = Algorithm{&algorithmSpec{
		name:      "HS512",
		blockSize: sha2.BlockSize512,
		size:      sha2.Size512,
		sum: func(b []byte) []byte {
			d := sha2.Sum512(b)
			return d[:]
		},
	}}
)

// Lookup returns the Algorithm registered under the header name alg.
// Names are case-sensitive, as in the "alg" header parameter.
func Lookup(alg string) (Algorithm, error) {
	switch alg {
	case "HS256":
		return HS256, nil
	case "HS384":
		return HS384, nil
	case "HS512":
		return HS512, nil
	default:
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// Algorithms lists every supported algorithm, strongest last.
func Algorithms() []Algorithm {
	return []Algorithm{HS256, HS384, HS512}
}

func (a Algorithm) IsZero() bool { return a.spec == nil }

func (a Algorithm) Name() string {
	if a.spec == nil {
		return ""
	}
	return a.spec.name
}

func (a Algorithm) String() string { return a.Name() }

// BlockSize is the hash block size in bytes and the HMAC key length.
func (a Algorithm) BlockSize() int {
	if a.spec == nil {
		return 0
	}
	return a.spec.blockSize
}

// Size is the digest size in bytes.
func (a Algorithm) Size() int {
	if a.spec == nil {
		return 0
	}
	return a.spec.size
}

// Sum hashes data. It returns ErrUnsupportedAlgorithm for the zero value.
func (a Algorithm) Sum(data []byte) ([]byte, error) {
	if a.spec == nil {
		return nil, ErrUnsupportedAlgorithm
	}
	return a.spec.sum(data), nil
}
