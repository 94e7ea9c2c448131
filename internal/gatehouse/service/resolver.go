package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/tokenx"
)

// SessionResolver drives the per-request verification pipeline:
// decode the token, look up the principal, compare rotation salts,
// build the identity. Each step gates the next; the first failure
// wins. Codec failures and salt mismatches both surface as
// FAIL_VALIDATE so a caller cannot tell a forged token from a revoked
// one.
type SessionResolver struct {
	Store store.Store
	Codec *tokenx.Codec
}

var _ httpx.Resolver = (*SessionResolver)(nil)

// Resolve implements httpx.Resolver. For cookie-origin tokens the
// returned refresh string is a newly minted access token for the
// sliding-session cookie; a re-mint failure at that point downgrades
// the otherwise-valid authentication to CANNOT_SET_TOKEN_COOKIE
// rather than handing out a session the cookie can't follow.
func (s *SessionResolver) Resolve(ctx context.Context, token string, src httpx.TokenSource) (httpx.Identity, string, error) {
	// Step 1: decode. Signature, expiry and structure all collapse to
	// one externally visible failure; the detail stays in logs.
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return httpx.Identity{}, "", httpx.Reject(httpx.RejectFailValidate, err.Error())
	}
	// Refresh tokens only ever trade for new pairs at the refresh
	// endpoint; presented as a session credential they are invalid.
	if claims.Class != tokenx.ClassAccess {
		return httpx.Identity{}, "", httpx.Reject(httpx.RejectFailValidate, "wrong token class")
	}

	// Step 2: principal lookup. A repository failure is reported
	// distinctly so operators can tell "unauthenticated" from "auth
	// subsystem degraded".
	user, err := s.Store.Users().GetForAuthByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httpx.Identity{}, "", httpx.Reject(httpx.RejectUserNotFound, claims.Subject)
		}
		return httpx.Identity{}, "", httpx.Reject(httpx.RejectModelAccess, err.Error())
	}

	// Step 3: rotation salt equality. This is the revocation check.
	if claims.Salt != user.TokenSalt {
		return httpx.Identity{}, "", httpx.Reject(httpx.RejectFailValidate, "rotation salt mismatch")
	}

	ident, err := newIdentity(user.ID)
	if err != nil {
		return httpx.Identity{}, "", httpx.Reject(httpx.RejectCtxCreateFail, err.Error())
	}

	var refreshed string
	if src == httpx.SourceCookie {
		refreshed, err = s.Codec.MintAccess(user.Username, user.TokenSalt)
		if err != nil {
			return httpx.Identity{}, "", httpx.Reject(httpx.RejectCannotSetTokenCookie, err.Error())
		}
	}

	return ident, refreshed, nil
}

func newIdentity(userID int64) (httpx.Identity, error) {
	if userID <= 0 {
		return httpx.Identity{}, fmt.Errorf("invalid principal id %d", userID)
	}
	return httpx.Identity{UserID: userID}, nil
}
