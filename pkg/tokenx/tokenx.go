// Package tokenx encodes and decodes the signed session tokens the
// service issues at login. Tokens are stateless HS256 JWTs carrying
// {sub, iat, exp, salt, typ}; the salt claim ties a token to the
// owning user's current rotation salt, which is the only revocation
// mechanism (no denylist).
package tokenx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default TTLs for a freshly constructed codec when the config leaves
// them zero. Short access tokens, week-long refresh tokens.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	// ErrInvalidSubject rejects minting for an empty subject.
	ErrInvalidSubject = errors.New("tokenx: invalid subject")

	// ErrSignatureMismatch means the token's signature does not verify.
	ErrSignatureMismatch = errors.New("tokenx: token signature mismatch")

	// ErrExpired means the token's exp claim is in the past.
	ErrExpired = errors.New("tokenx: token expired")

	// ErrDecodeFailed covers structural parse failures.
	ErrDecodeFailed = errors.New("tokenx: token decode failed")

	// ErrInvalidToken covers remaining semantic rejections, including
	// an unknown typ tag and class mismatches at endpoints.
	ErrInvalidToken = errors.New("tokenx: invalid token")
)

// Class is the closed set of token classes. The string wire form only
// exists at the serialization boundary.
type Class int

const (
	// ClassAccess tokens authorize API calls.
	ClassAccess Class = iota

	// ClassRefresh tokens authorize minting a new token pair and
	// nothing else.
	ClassRefresh
)

const (
	wireAccess  = "access"
	wireRefresh = "refresh"
)

func (c Class) String() string {
	switch c {
	case ClassAccess:
		return wireAccess
	case ClassRefresh:
		return wireRefresh
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

func parseClass(s string) (Class, error) {
	switch s {
	case wireAccess:
		return ClassAccess, nil
	case wireRefresh:
		return ClassRefresh, nil
	default:
		return 0, fmt.Errorf("%w: unknown typ %q", ErrInvalidToken, s)
	}
}

// Claims are the decoded, trusted contents of a verified token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Salt      string
	Class     Class
}

// wireClaims is the signed JSON body: {sub, iat, exp, salt, typ}.
type wireClaims struct {
	jwt.RegisteredClaims

	Salt string `json:"salt"`
	Typ  string `json:"typ"`
}

// Config carries the process-wide signing material and TTLs. It is
// loaded once at startup and injected; the codec holds no ambient
// global state.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec mints and decodes session tokens with a single symmetric
// secret. Issuer and verifier are the same trust domain, so HS256 is
// sufficient; there is no key distribution.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	parser     *jwt.Parser

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewCodec validates the config and returns a ready codec. A missing
// secret is a configuration error the process must not start with.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("tokenx: empty signing secret")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Codec{
		secret:     cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:        time.Now,
	}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// Mint signs a token for subject with the given rotation salt, TTL and
// class. Expiry is always computed here, never caller-supplied.
func (c *Codec) Mint(subject, salt string, ttl time.Duration, class Class) (string, error) {
	if subject == "" {
		return "", ErrInvalidSubject
	}

	now := c.now().UTC()
	claims := wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Salt: salt,
		Typ:  class.String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("tokenx: signing failed: %w", err)
	}
	return signed, nil
}

// MintAccess issues a single access token with the configured TTL.
func (c *Codec) MintAccess(subject, salt string) (string, error) {
	return c.Mint(subject, salt, c.accessTTL, ClassAccess)
}

// MintPair issues the access+refresh pair handed out at login and on
// refresh.
func (c *Codec) MintPair(subject, salt string) (access, refresh string, err error) {
	if access, err = c.Mint(subject, salt, c.accessTTL, ClassAccess); err != nil {
		return "", "", err
	}
	if refresh, err = c.Mint(subject, salt, c.refreshTTL, ClassRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Decode verifies signature and expiry and returns the claims.
func (c *Codec) Decode(token string) (Claims, error) {
	var wire wireClaims
	_, err := c.parser.ParseWithClaims(token, &wire, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	class, err := parseClass(wire.Typ)
	if err != nil {
		return Claims{}, err
	}
	if wire.Subject == "" {
		return Claims{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	if wire.IssuedAt == nil || wire.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing timestamps", ErrInvalidToken)
	}

	return Claims{
		Subject:   wire.Subject,
		IssuedAt:  wire.IssuedAt.Time,
		ExpiresAt: wire.ExpiresAt.Time,
		Salt:      wire.Salt,
		Class:     class,
	}, nil
}

// mapJWTError folds jwt/v5's error kinds into the codec's stable
// failure set.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrSignatureMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrDecodeFailed
	default:
		return ErrInvalidToken
	}
}
