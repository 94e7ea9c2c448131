package tokenx_test

import (
	"testing"
	"time"

	"github.com/gatehouse-auth/gatehouse/pkg/tokenx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-do-not-use-in-prod")

func newTestCodec(t *testing.T) *tokenx.Codec {
	t.Helper()
	c, err := tokenx.NewCodec(tokenx.Config{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return c
}

func TestNewCodecRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := tokenx.NewCodec(tokenx.Config{})
	require.Error(t, err)
}

func TestMintDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	salt := uuid.NewString()

	for _, class := range []tokenx.Class{tokenx.ClassAccess, tokenx.ClassRefresh} {
		t.Run(class.String(), func(t *testing.T) {
			before := time.Now().UTC()
			token, err := c.Mint("demo1", salt, time.Hour, class)
			require.NoError(t, err)

			claims, err := c.Decode(token)
			require.NoError(t, err)
			require.Equal(t, "demo1", claims.Subject)
			require.Equal(t, salt, claims.Salt)
			require.Equal(t, class, claims.Class)

			// Timestamps are computed by the codec, tolerate clock movement.
			require.WithinDuration(t, before, claims.IssuedAt, 2*time.Second)
			require.WithinDuration(t, before.Add(time.Hour), claims.ExpiresAt, 2*time.Second)
		})
	}
}

func TestMintEmptySubject(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	token, err := c.Mint("", uuid.NewString(), time.Hour, tokenx.ClassAccess)
	require.ErrorIs(t, err, tokenx.ErrInvalidSubject)
	require.Empty(t, token)
}

func TestExpiryBoundary(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	token, err := c.Mint("demo1", uuid.NewString(), 150*time.Millisecond, tokenx.ClassAccess)
	require.NoError(t, err)

	// Valid immediately after minting.
	_, err = c.Decode(token)
	require.NoError(t, err)

	// Expired once now > iat+ttl.
	time.Sleep(250 * time.Millisecond)
	_, err = c.Decode(token)
	require.ErrorIs(t, err, tokenx.ErrExpired)
}

func TestDecodeWrongSecret(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	token, err := c.MintAccess("demo1", uuid.NewString())
	require.NoError(t, err)

	other, err := tokenx.NewCodec(tokenx.Config{Secret: []byte("a different secret")})
	require.NoError(t, err)

	_, err = other.Decode(token)
	require.ErrorIs(t, err, tokenx.ErrSignatureMismatch)
}

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	_, err := c.Decode("not.a.token")
	require.ErrorIs(t, err, tokenx.ErrDecodeFailed)

	_, err = c.Decode("")
	require.ErrorIs(t, err, tokenx.ErrDecodeFailed)
}

func TestDecodeUnknownClassTag(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	// Craft a well-signed token with a typ outside the closed set.
	now := time.Now().UTC()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "demo1",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
		"salt": uuid.NewString(),
		"typ":  "bogus",
	})
	token, err := raw.SignedString(testSecret)
	require.NoError(t, err)

	_, err = c.Decode(token)
	require.ErrorIs(t, err, tokenx.ErrInvalidToken)
}

func TestDecodeRejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	raw := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "demo1",
		"exp": time.Now().Add(time.Hour).Unix(),
		"typ": "access",
	})
	token, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Decode(token)
	require.Error(t, err)
}

func TestMintPair(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	salt := uuid.NewString()

	access, refresh, err := c.MintPair("demo1", salt)
	require.NoError(t, err)

	ac, err := c.Decode(access)
	require.NoError(t, err)
	require.Equal(t, tokenx.ClassAccess, ac.Class)

	rc, err := c.Decode(refresh)
	require.NoError(t, err)
	require.Equal(t, tokenx.ClassRefresh, rc.Class)
	require.True(t, rc.ExpiresAt.After(ac.ExpiresAt))
}
