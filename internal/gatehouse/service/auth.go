package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/domain"
	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-auth/gatehouse/pkg/pwdx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
	"github.com/gatehouse-auth/gatehouse/pkg/tokenx"
	"github.com/google/uuid"
)

// verificationTokenTTL bounds how long an email verification link
// stays redeemable.
const verificationTokenTTL = 30 * time.Minute

var (
	// ErrInvalidCredentials collapses "no such user", "user has no
	// password" and "wrong password" so login responses don't leak
	// which one it was.
	ErrInvalidCredentials = errors.New("service: invalid credentials")

	// ErrUserExists reports a username or email collision at register.
	ErrUserExists = errors.New("service: user already exists")

	// ErrVerificationInvalid reports an unknown or expired email
	// verification token.
	ErrVerificationInvalid = errors.New("service: verification token invalid")
)

// AuthService owns the credential lifecycle: registration, login with
// silent hash-scheme upgrade, token refresh, password change with
// session revocation.
type AuthService struct {
	Store  store.Store
	Codec  *tokenx.Codec
	Emails Emails
}

// Login verifies credentials and mints a fresh token pair. When the
// stored hash used an outdated scheme, it is transparently re-hashed
// under the current scheme — this is how passwords migrate to stronger
// schemes without a bulk job.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, domain.UserForLogin, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetForLoginByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, domain.UserForLogin{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, domain.UserForLogin{}, fmt.Errorf("login lookup: %w", err)
	}

	pwdSalt, err := uuid.Parse(user.PwdSalt)
	if err != nil {
		return domain.TokenPair{}, domain.UserForLogin{}, fmt.Errorf("login: corrupt pwd salt for user %d: %w", user.ID, err)
	}

	status, err := pwdx.Verify(password, pwdSalt, user.PasswordHash)
	if err != nil {
		if errors.Is(err, pwdx.ErrMismatch) {
			return domain.TokenPair{}, domain.UserForLogin{}, ErrInvalidCredentials
		}
		// Malformed hash, unknown scheme, primitive failure: subsystem
		// degradation, not a normal rejection.
		return domain.TokenPair{}, domain.UserForLogin{}, fmt.Errorf("login verify: %w", err)
	}

	if status == pwdx.StatusOutdated {
		log.Debug("password scheme outdated, upgrading", "user_id", user.ID)
		if err := s.upgradePasswordScheme(ctx, user.ID, password, pwdSalt); err != nil {
			// The credentials verified; a failed upgrade just means the
			// next login tries again.
			log.Warn("password scheme upgrade failed", "user_id", user.ID, "err", err)
		}
	}

	pair, err := s.mintPair(user.Username, user.TokenSalt)
	if err != nil {
		return domain.TokenPair{}, domain.UserForLogin{}, err
	}
	return pair, user, nil
}

// upgradePasswordScheme re-hashes under the current scheme. It keeps
// the pwd salt and deliberately leaves the token salt alone: a silent
// upgrade must not log out the user's other sessions.
func (s *AuthService) upgradePasswordScheme(ctx context.Context, userID int64, password string, salt uuid.UUID) error {
	newHash, err := pwdx.Hash(password, salt)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, newHash, salt.String())
}

// Refresh exchanges a valid refresh token for a new access+refresh
// pair. Only ClassRefresh tokens are accepted here; an access token
// presented to this operation is rejected even though its signature,
// expiry and salt all verify.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Codec.Decode(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if claims.Class != tokenx.ClassRefresh {
		return domain.TokenPair{}, tokenx.ErrInvalidToken
	}

	user, err := s.Store.Users().GetForAuthByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, fmt.Errorf("refresh lookup: %w", err)
	}

	// Salt comparison is the revocation check: a password change or
	// "log out everywhere" rotates the stored salt and strands every
	// previously issued token.
	if claims.Salt != user.TokenSalt {
		return domain.TokenPair{}, tokenx.ErrInvalidToken
	}

	return s.mintPair(user.Username, user.TokenSalt)
}

// RegisterParams carries validated registration input.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Register creates a principal with fresh pwd and token salts and
// kicks off the verification email. Email failures are logged, not
// returned: the account exists either way.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (int64, error) {
	log := slogx.FromContext(ctx)

	pwdSalt := uuid.New()
	hash, err := pwdx.Hash(p.Password, pwdSalt)
	if err != nil {
		return 0, fmt.Errorf("register hash: %w", err)
	}

	verificationToken := uuid.NewString()

	id, err := s.Store.Users().Create(ctx, domain.UserForInsert{
		Username:                   p.Username,
		Email:                      p.Email,
		PasswordHash:               hash,
		PwdSalt:                    pwdSalt.String(),
		TokenSalt:                  uuid.NewString(),
		EmailVerificationToken:     verificationToken,
		EmailVerificationExpiresAt: time.Now().Add(verificationTokenTTL),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return 0, ErrUserExists
		}
		return 0, fmt.Errorf("register create: %w", err)
	}

	if err := s.Emails.SendWelcome(ctx, p.Email, p.Username); err != nil {
		log.Warn("welcome email failed", "user_id", id, "err", err)
	}
	if err := s.Emails.SendVerification(ctx, p.Email, p.Username, verificationToken); err != nil {
		log.Warn("verification email failed", "user_id", id, "err", err)
	}

	return id, nil
}

// ChangePassword re-hashes the password and rotates the token salt in
// one transaction, so the moment the change commits every outstanding
// token for the user is invalid.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	pwdSalt := uuid.New()
	hash, err := pwdx.Hash(newPassword, pwdSalt)
	if err != nil {
		return fmt.Errorf("change password hash: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash, pwdSalt.String()); err != nil {
			return err
		}
		return tx.Users().RotateTokenSalt(ctx, userID, uuid.NewString())
	})
}

// LogoutEverywhere rotates the token salt without touching the
// password, stranding all of the user's outstanding tokens.
func (s *AuthService) LogoutEverywhere(ctx context.Context, userID int64) error {
	return s.Store.Users().RotateTokenSalt(ctx, userID, uuid.NewString())
}

// VerifyEmail consumes a pending verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrVerificationInvalid
	}
	err := s.Store.Users().VerifyEmail(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return ErrVerificationInvalid
	}
	return err
}

func (s *AuthService) mintPair(username, tokenSalt string) (domain.TokenPair, error) {
	access, refresh, err := s.Codec.MintPair(username, tokenSalt)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("mint pair: %w", err)
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.Codec.AccessTTL().Seconds()),
	}, nil
}
