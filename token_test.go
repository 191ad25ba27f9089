package hsjwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybergodev/hsjwt/claims"
)

var testKey = []byte("secretkey")

func newLoginToken(t *testing.T, alg Algorithm, login string) string {
	t.Helper()
	tok, err := NewToken(alg)
	require.NoError(t, err)
	require.NoError(t, tok.AddClaim("login", claims.String(login)))
	s, err := tok.Sign(testKey)
	require.NoError(t, err)
	return s
}

func TestNewTokenSignVerify(t *testing.T) {
	for _, alg := range []Algorithm{HS256, HS384, HS512} {
		t.Run(alg.Name(), func(t *testing.T) {
			s := newLoginToken(t, alg, "alice")
			assert.Equal(t, 2, strings.Count(s, "."))
			assert.True(t, Verify(s, testKey))
			assert.True(t, VerifyAlgorithm(s, testKey, alg))
			assert.False(t, Verify(s, []byte("secretkeY")))
		})
	}
}

func TestVerifyAlgorithmMismatch(t *testing.T) {
	s := newLoginToken(t, HS384, "alice")
	assert.False(t, VerifyAlgorithm(s, testKey, HS256))
	assert.False(t, VerifyAlgorithm(s, testKey, Algorithm{}))
}

func TestNewTokenWithClaims(t *testing.T) {
	payload := claims.New()
	require.NoError(t, payload.AddString("login", "alice"))

	tok, err := NewTokenWithClaims(HS256, payload)
	require.NoError(t, err)
	s, err := tok.Sign(testKey)
	require.NoError(t, err)
	assert.Equal(t, newLoginToken(t, HS256, "alice"), s)

	_, err = NewTokenWithClaims(HS256, nil)
	assert.ErrorIs(t, err, ErrNullParameter)
}

func TestNewTokenUnsupported(t *testing.T) {
	_, err := NewToken(Algorithm{})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = LookupAlgorithm("HS224")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	alg, err := LookupAlgorithm("HS512")
	require.NoError(t, err)
	assert.Equal(t, HS512, alg)
}

func TestAddClaimDuplicate(t *testing.T) {
	tok, err := NewToken(HS256)
	require.NoError(t, err)
	require.NoError(t, tok.AddClaim("login", claims.String("alice")))

	err = tok.AddClaim("login", claims.String("bob"))
	assert.ErrorIs(t, err, ErrAddClaim)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestSigningMethodAlgorithm(t *testing.T) {
	tests := []struct {
		method SigningMethod
		want   Algorithm
	}{
		{"", HS256},
		{SigningMethodHS256, HS256},
		{SigningMethodHS384, HS384},
		{SigningMethodHS512, HS512},
	}
	for _, tt := range tests {
		got, err := tt.method.Algorithm()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := SigningMethod("RS256").Algorithm()
	assert.ErrorIs(t, err, ErrInvalidSigningMethod)
}

func TestVerifier(t *testing.T) {
	hs256 := newLoginToken(t, HS256, "alice")
	hs512 := newLoginToken(t, HS512, "alice")

	v, err := NewVerifier(testKey, HS256)
	require.NoError(t, err)
	assert.True(t, v.Verify(hs256))
	assert.False(t, v.Verify(hs512))

	payload, err := v.Check(hs256)
	require.NoError(t, err)
	assert.JSONEq(t, `{"login":"alice"}`, string(payload))

	_, err = v.Check(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	all, err := NewVerifier(testKey)
	require.NoError(t, err)
	assert.True(t, all.Verify(hs256))
	assert.True(t, all.Verify(hs512))
}

func TestVerifierCopiesKey(t *testing.T) {
	key := []byte("secretkey")
	v, err := NewVerifier(key)
	require.NoError(t, err)
	key[0] = 'X'
	assert.True(t, v.Verify(newLoginToken(t, HS256, "alice")))
}

func TestNewVerifierErrors(t *testing.T) {
	_, err := NewVerifier(nil)
	assert.ErrorIs(t, err, ErrInvalidSecretKey)

	_, err = NewVerifier(testKey, HS256, Algorithm{})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestInteropMatchesGolangJWT(t *testing.T) {
	methods := map[string]jwt.SigningMethod{
		"HS256": jwt.SigningMethodHS256,
		"HS384": jwt.SigningMethodHS384,
		"HS512": jwt.SigningMethodHS512,
	}

	for _, alg := range []Algorithm{HS256, HS384, HS512} {
		t.Run(alg.Name(), func(t *testing.T) {
			theirs, err := jwt.NewWithClaims(methods[alg.Name()], jwt.MapClaims{"login": "alice"}).SignedString(testKey)
			require.NoError(t, err)

			ours := newLoginToken(t, alg, "alice")
			assert.Equal(t, theirs, ours, "single-claim tokens are byte-identical")
		})
	}
}

func TestInteropVerifyGolangJWTToken(t *testing.T) {
	claimsIn := jwt.MapClaims{
		"iss":   "auth",
		"login": "alice",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"admin": true,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claimsIn).SignedString(testKey)
	require.NoError(t, err)

	assert.True(t, Verify(s, testKey))
	assert.True(t, VerifyAlgorithm(s, testKey, HS384))
	assert.False(t, Verify(s, []byte("other")))
}

func TestInteropGolangJWTParsesOurToken(t *testing.T) {
	tok, err := NewToken(HS512)
	require.NoError(t, err)
	require.NoError(t, tok.AddClaim("iss", claims.String("auth")))
	require.NoError(t, tok.AddClaim("exp", claims.Int(time.Now().Add(time.Hour).Unix())))
	require.NoError(t, tok.AddClaim("login", claims.String("alice")))
	s, err := tok.Sign(testKey)
	require.NoError(t, err)

	keyFunc := func(*jwt.Token) (any, error) { return testKey, nil }

	parsed, err := jwt.Parse(s, keyFunc, jwt.WithValidMethods([]string{"HS512"}))
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	mc, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "alice", mc["login"])
	iss, err := mc.GetIssuer()
	require.NoError(t, err)
	assert.Equal(t, "auth", iss)

	_, err = jwt.Parse(s, func(*jwt.Token) (any, error) { return []byte("other"), nil })
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
