// Package sha2 implements the SHA-256, SHA-384 and SHA-512 hash functions
// defined in FIPS 180-4.
//
// All functions are pure: they keep no state between calls and return
// freshly allocated arrays owned by the caller.
package sha2

import (
	"encoding/binary"
	"math/bits"
)

const (
	// BlockSize256 is the SHA-256 block size in bytes.
	BlockSize256 = 64

	// Size256 is the SHA-256 digest size in bytes.
	Size256 = 32
)

var k256 = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

var iv256 = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// Sum256 returns the SHA-256 digest of data.
func Sum256(data []byte) [Size256]byte {
	h := iv256
	padded := pad(data, BlockSize256, 8)
	for off := 0; off < len(padded); off += BlockSize256 {
		block256(&h, padded[off:off+BlockSize256])
	}

	var out [Size256]byte
	for i, v := range h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func block256(h *[8]uint32, p []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(p[i*4:])
	}
	for i := 16; i < 64; i++ {
		v1 := w[i-2]
		s1 := bits.RotateLeft32(v1, -17) ^ bits.RotateLeft32(v1, -19) ^ (v1 >> 10)
		v2 := w[i-15]
		s0 := bits.RotateLeft32(v2, -7) ^ bits.RotateLeft32(v2, -18) ^ (v2 >> 3)
		w[i] = s1 + w[i-7] + s0 + w[i-16]
	}

	a, b, c, d, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]
	for i := 0; i < 64; i++ {
		sum1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := hh + sum1 + ch + k256[i] + w[i]

		sum0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := sum0 + maj

		hh = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
	h[4] += e
	h[5] += f
	h[6] += g
	h[7] += hh
}

// pad applies Merkle–Damgård padding: a 0x80 byte, zeros, then the message
// length in bits as a big-endian integer of lenBytes bytes. The result is a
// fresh slice whose length is a multiple of blockSize.
func pad(data []byte, blockSize, lenBytes int) []byte {
	n := len(data)
	total := n + 1 + lenBytes
	if r := total % blockSize; r != 0 {
		total += blockSize - r
	}

	out := make([]byte, total)
	copy(out, data)
	out[n] = 0x80

	// Bit length as a 128-bit value: hi holds the bits shifted out of lo.
	lo := uint64(n) << 3
	hi := uint64(n) >> 61
	binary.BigEndian.PutUint64(out[total-8:], lo)
	if lenBytes == 16 {
		binary.BigEndian.PutUint64(out[total-16:], hi)
	}
	return out
}
