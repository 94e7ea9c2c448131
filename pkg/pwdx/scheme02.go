package pwdx

import (
	"crypto/subtle"
	"encoding/base64"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for scheme02. These are fixed per scheme id: a
// future parameter bump gets a new id rather than mutating this one,
// otherwise existing payloads stop verifying.
const (
	scheme02Memory      = 19 * 1024 // KiB
	scheme02Iterations  = 2
	scheme02Parallelism = 1
	scheme02KeyLength   = 32
)

// scheme02 is the current preferred scheme: Argon2id keyed by the
// per-user salt, payload stored as raw base64.
type scheme02 struct{}

func (scheme02) Hash(content string, salt uuid.UUID) (string, error) {
	digest := argon2.IDKey(
		[]byte(content),
		salt[:],
		scheme02Iterations,
		scheme02Memory,
		scheme02Parallelism,
		scheme02KeyLength,
	)
	return base64.RawStdEncoding.EncodeToString(digest), nil
}

func (scheme02) Verify(content string, salt uuid.UUID, payload string) error {
	expected, err := base64.RawStdEncoding.DecodeString(payload)
	if err != nil {
		return ErrMalformedHash
	}
	if len(expected) != scheme02KeyLength {
		return ErrMalformedHash
	}

	computed := argon2.IDKey(
		[]byte(content),
		salt[:],
		scheme02Iterations,
		scheme02Memory,
		scheme02Parallelism,
		scheme02KeyLength,
	)

	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrMismatch
	}
	return nil
}
