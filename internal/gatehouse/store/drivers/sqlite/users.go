package sqlite

import (
	"context"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/domain"
	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/store"
)

type usersRepo struct {
	q querier
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.q.QueryRowContext(ctx, `
		SELECT id, username, email, email_verified, created_at, updated_at
		FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetForAuthByUsername(ctx context.Context, username string) (domain.UserForAuth, error) {
	var u domain.UserForAuth
	err := r.q.QueryRowContext(ctx, `
		SELECT id, username, token_salt
		FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.TokenSalt)
	if err != nil {
		return domain.UserForAuth{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetForLoginByUsername(ctx context.Context, username string) (domain.UserForLogin, error) {
	var u domain.UserForLogin
	err := r.q.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, pwd_salt, token_salt
		FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PwdSalt, &u.TokenSalt)
	if err != nil {
		return domain.UserForLogin{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.UserForInsert) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			username, email, password_hash, pwd_salt, token_salt,
			email_verified, email_verification_token, email_verification_expires_at
		) VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.PwdSalt, u.TokenSalt,
		u.EmailVerificationToken, u.EmailVerificationExpiresAt.UTC(),
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, newHash, pwdSalt string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, pwd_salt = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, newHash, pwdSalt, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) RotateTokenSalt(ctx context.Context, userID int64, newSalt string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET token_salt = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, newSalt, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) VerifyEmail(ctx context.Context, token string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			email_verified = 1,
			email_verification_token = NULL,
			email_verification_expires_at = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE email_verification_token = ?
		  AND email_verification_expires_at > ?`,
		token, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps zero-row updates to ErrNotFound so callers can tell
// "no such user/token" apart from driver failures.
func requireRow(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
