// Package pwdx implements versioned password hashing. Every stored
// digest is prefixed with the id of the scheme that produced it
// (e.g. "#02#...") so older generations stay verifiable after the
// preferred scheme moves on. Verification reports whether the matched
// scheme is still the current one; re-hashing outdated records is the
// caller's responsibility.
package pwdx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status reports which generation of scheme a verified digest used.
type Status int

const (
	// StatusCurrent means the digest was produced by the preferred scheme.
	StatusCurrent Status = iota

	// StatusOutdated means the digest verified under an older scheme and
	// should be re-hashed with the current one.
	StatusOutdated
)

var (
	// ErrMismatch is the normal "wrong password" rejection.
	ErrMismatch = errors.New("pwdx: password does not match")

	// ErrUnknownScheme means the stored digest names a scheme this
	// build does not know about.
	ErrUnknownScheme = errors.New("pwdx: unknown scheme")

	// ErrMalformedHash means the stored digest could not be parsed at all.
	ErrMalformedHash = errors.New("pwdx: malformed hash")

	// ErrHashingFailed wraps a failure of the underlying primitive.
	// Unlike ErrMismatch this is not a normal auth rejection.
	ErrHashingFailed = errors.New("pwdx: hashing failed")
)

// currentSchemeID is the preferred scheme for new hashes. The registry
// is append-only: retired ids stay registered so old rows verify.
const currentSchemeID = "02"

type scheme interface {
	// Hash produces the scheme-specific payload (everything after the
	// "#id#" prefix) for the given content and per-user salt.
	Hash(content string, salt uuid.UUID) (string, error)

	// Verify recomputes and compares in constant time. Returns
	// ErrMismatch on a wrong password, ErrMalformedHash on a payload
	// the scheme cannot parse.
	Verify(content string, salt uuid.UUID, payload string) error
}

var schemes = map[string]scheme{
	"01": scheme01{},
	"02": scheme02{},
}

// Hash digests content under the current scheme and returns the
// self-describing "#id#payload" form.
func Hash(content string, salt uuid.UUID) (string, error) {
	return hashWithScheme(currentSchemeID, content, salt)
}

func hashWithScheme(id, content string, salt uuid.UUID) (string, error) {
	s, ok := schemes[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, id)
	}
	payload, err := s.Hash(content, salt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}
	return "#" + id + "#" + payload, nil
}

// Verify checks content against a stored digest under whatever scheme
// the digest declares. On success the Status tells the caller whether
// the record needs a silent upgrade to the current scheme.
func Verify(content string, salt uuid.UUID, stored string) (Status, error) {
	id, payload, err := splitScheme(stored)
	if err != nil {
		return StatusCurrent, err
	}

	s, ok := schemes[id]
	if !ok {
		return StatusCurrent, fmt.Errorf("%w: %q", ErrUnknownScheme, id)
	}

	if err := s.Verify(content, salt, payload); err != nil {
		return StatusCurrent, err
	}

	if id != currentSchemeID {
		return StatusOutdated, nil
	}
	return StatusCurrent, nil
}

// splitScheme parses the "#id#payload" envelope.
func splitScheme(stored string) (id, payload string, err error) {
	if !strings.HasPrefix(stored, "#") {
		return "", "", ErrMalformedHash
	}
	rest := stored[1:]
	i := strings.Index(rest, "#")
	if i <= 0 || i == len(rest)-1 {
		return "", "", ErrMalformedHash
	}
	return rest[:i], rest[i+1:], nil
}
