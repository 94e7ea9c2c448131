package pwdx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyCurrentScheme(t *testing.T) {
	t.Parallel()

	salt := uuid.New()
	stored, err := Hash("correct horse battery staple", salt)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored, "#02#"))

	status, err := Verify("correct horse battery staple", salt, stored)
	require.NoError(t, err)
	require.Equal(t, StatusCurrent, status)
}

func TestVerifyWrongPassword(t *testing.T) {
	t.Parallel()

	salt := uuid.New()
	stored, err := Hash("right password", salt)
	require.NoError(t, err)

	_, err = Verify("wrong password", salt, stored)
	require.ErrorIs(t, err, ErrMismatch)
}

func TestVerifyWrongSalt(t *testing.T) {
	t.Parallel()

	stored, err := Hash("password", uuid.New())
	require.NoError(t, err)

	_, err = Verify("password", uuid.New(), stored)
	require.ErrorIs(t, err, ErrMismatch)
}

func TestSchemeUpgradeReported(t *testing.T) {
	t.Parallel()

	salt := uuid.New()

	// Produce a legacy scheme01 digest the way pre-migration rows hold it.
	legacy, err := hashWithScheme("01", "legacy password", salt)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(legacy, "#01#"))

	status, err := Verify("legacy password", salt, legacy)
	require.NoError(t, err)
	require.Equal(t, StatusOutdated, status)

	// Wrong password against the legacy scheme is still a clean mismatch.
	_, err = Verify("not it", salt, legacy)
	require.ErrorIs(t, err, ErrMismatch)

	// Re-hash under the current scheme: verification now reports current.
	upgraded, err := Hash("legacy password", salt)
	require.NoError(t, err)

	status, err = Verify("legacy password", salt, upgraded)
	require.NoError(t, err)
	require.Equal(t, StatusCurrent, status)
}

func TestVerifyMalformedStored(t *testing.T) {
	t.Parallel()

	salt := uuid.New()

	cases := map[string]struct {
		stored string
		want   error
	}{
		"empty":             {"", ErrMalformedHash},
		"no prefix":         {"argon2-ish", ErrMalformedHash},
		"missing payload":   {"#02#", ErrMalformedHash},
		"missing scheme id": {"##payload", ErrMalformedHash},
		"unknown scheme":    {"#99#payload", ErrUnknownScheme},
		"bad base64":        {"#02#!!!not-base64!!!", ErrMalformedHash},
		"truncated digest":  {"#02#c2hvcnQ", ErrMalformedHash},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Verify("whatever", salt, tc.stored)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHashDeterministicPerSalt(t *testing.T) {
	t.Parallel()

	salt := uuid.New()
	a, err := Hash("password", salt)
	require.NoError(t, err)
	b, err := Hash("password", salt)
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := Hash("password", uuid.New())
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
