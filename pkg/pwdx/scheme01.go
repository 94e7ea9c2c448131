package pwdx

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// scheme01 is the retired first-generation scheme: bcrypt over the
// content concatenated with the per-user salt. Kept only so rows
// hashed before the Argon2id migration remain verifiable.
type scheme01 struct{}

const scheme01Cost = 10

func (scheme01) Hash(content string, salt uuid.UUID) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(scheme01Input(content, salt), scheme01Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (scheme01) Verify(content string, salt uuid.UUID, payload string) error {
	err := bcrypt.CompareHashAndPassword([]byte(payload), scheme01Input(content, salt))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	case errors.Is(err, bcrypt.ErrHashTooShort):
		return ErrMalformedHash
	default:
		return ErrMalformedHash
	}
}

// scheme01Input folds the per-user salt into the bcrypt input. bcrypt
// applies its own internal salt as well; this binds the digest to the
// stored pwd_salt like the other schemes.
func scheme01Input(content string, salt uuid.UUID) []byte {
	return []byte(content + "." + salt.String())
}
