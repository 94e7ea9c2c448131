package domain

import "time"

// User is the public projection of a principal, safe to hand to
// handlers and responses.
type User struct {
	ID            int64
	Username      string
	Email         string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserForLogin adds the credential fields the login flow needs: the
// versioned password hash, the salt it was computed with, and the
// token rotation salt minted into session tokens.
type UserForLogin struct {
	ID       int64
	Username string
	Email    string

	PasswordHash string // versioned digest, #scheme_id#...
	PwdSalt      string // salt used for PasswordHash (UUID)
	TokenSalt    string // current rotation salt (UUID)
}

// UserForAuth is the minimal projection the per-request resolver
// fetches: identity plus the current rotation salt for comparison
// against the token's salt claim.
type UserForAuth struct {
	ID       int64
	Username string

	TokenSalt string
}

// UserForInsert carries everything needed to create a principal row.
type UserForInsert struct {
	Username     string
	Email        string
	PasswordHash string
	PwdSalt      string
	TokenSalt    string

	EmailVerificationToken     string
	EmailVerificationExpiresAt time.Time
}
