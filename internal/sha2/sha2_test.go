package sha2

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	msg448 = "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq"
	msg896 = "abcdefghbcdefghicdefghijdefghijkefghijklfghijklmghijklmnhijklmnoijklmnopjklmnopqklmnopqrlmnopqrsmnopqrstnopqrstu"
)

func TestSum256Vectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"448 bits", msg448, "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"},
		{"896 bits", msg896, "cf5b16a778af8380036ce59e7b0492370b249b11e8f07a51afac45037afee9d1"},
		{"1000 a", strings.Repeat("a", 1000), "41edece42d63e8d9bf515a9ba6932e1c20cbc9f5a5d134645adb5db1b9737ea3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum256([]byte(tt.input))
			assert.Equal(t, tt.want, hex.EncodeToString(got[:]))
		})
	}
}

func TestSum384Vectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "38b060a751ac96384cd9327eb1b1e36a21fdb71114be07434c0cc7bf63f6e1da274edebfe76f65fbd51ad2f14898b95b"},
		{"abc", "abc", "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"},
		{"448 bits", msg448, "3391fdddfc8dc7393707a65b1b4709397cf8b1d162af05abfe8f450de5f36bc6b0455a8520bc4e6f5fe95b1fe3c8452b"},
		{"896 bits", msg896, "09330c33f71147e83d192fc782cd1b4753111b173b3b05d22fa08086e3b0f712fcc7c71a557e2db966c3e9fa91746039"},
		{"1000 a", strings.Repeat("a", 1000), "f54480689c6b0b11d0303285d9a81b21a93bca6ba5a1b4472765dca4da45ee328082d469c650cd3b61b16d3266ab8ced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum384([]byte(tt.input))
			assert.Equal(t, tt.want, hex.EncodeToString(got[:]))
		})
	}
}

func TestSum512Vectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"},
		{"abc", "abc", "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
		{"448 bits", msg448, "204a8fc6dda82f0a0ced7beb8e08a41657c16ef468b228a8279be331a703c33596fd15c13b1b07f9aa1d3bea57789ca031ad85c7a71dd70354ec631238ca3445"},
		{"896 bits", msg896, "8e959b75dae313da8cf4f72814fc143f8f7779c6eb9f7fa17299aeadb6889018501d289e4900f7e4331b99dec4b5433ac7d329eeb6dd26545e96e55b874be909"},
		{"1000 a", strings.Repeat("a", 1000), "67ba5535a46e3f86dbfbed8cbbaf0125c76ed549ff8b0b9e03e0c88cf90fa634fa7b12b47d77b694de488ace8d9a65967dc96df599727d3292a8d9d447709c97"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum512([]byte(tt.input))
			assert.Equal(t, tt.want, hex.EncodeToString(got[:]))
		})
	}
}

// Lengths around every padding boundary of both block sizes.
func TestSumMatchesStdlibAcrossBoundaries(t *testing.T) {
	buf := make([]byte, 300)
	_, err := rand.Read(buf)
	require.NoError(t, err)

	for n := 0; n <= len(buf); n++ {
		data := buf[:n]

		assert.Equal(t, sha256.Sum256(data), Sum256(data), "sha256 len=%d", n)
		assert.Equal(t, sha512.Sum384(data), Sum384(data), "sha384 len=%d", n)
		assert.Equal(t, sha512.Sum512(data), Sum512(data), "sha512 len=%d", n)
	}
}

func TestSumDoesNotModifyInput(t *testing.T) {
	data := []byte("immutable input")
	orig := append([]byte(nil), data...)

	Sum256(data)
	Sum384(data)
	Sum512(data)

	assert.Equal(t, orig, data)
}

func TestPadLayout(t *testing.T) {
	tests := []struct {
		n         int
		blockSize int
		lenBytes  int
		wantLen   int
	}{
		{0, BlockSize256, 8, 64},
		{55, BlockSize256, 8, 64},
		{56, BlockSize256, 8, 128},
		{64, BlockSize256, 8, 128},
		{111, BlockSize512, 16, 128},
		{112, BlockSize512, 16, 256},
		{128, BlockSize512, 16, 256},
	}

	for _, tt := range tests {
		data := make([]byte, tt.n)
		out := pad(data, tt.blockSize, tt.lenBytes)

		require.Len(t, out, tt.wantLen)
		assert.Equal(t, byte(0x80), out[tt.n])

		bitLen := uint64(tt.n) * 8
		assert.Equal(t, byte(bitLen), out[len(out)-1])
		assert.Equal(t, byte(bitLen>>8), out[len(out)-2])
	}
}

func BenchmarkSum256(b *testing.B) {
	data := make([]byte, 1024)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Sum256(data)
	}
}

func BenchmarkSum512(b *testing.B) {
	data := make([]byte, 1024)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Sum512(data)
	}
}
