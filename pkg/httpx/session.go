package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SessionCookieName is the fixed key the session cookie is stored
// under. Bearer headers are the alternative carrier for API clients.
const SessionCookieName = "auth-token"

// TokenSource tags where a candidate token came from, so success
// handling can branch (cookie-origin tokens get a sliding refresh)
// without re-parsing the request.
type TokenSource int

const (
	SourceCookie TokenSource = iota
	SourceHeader
)

// Identity is the trusted result of authentication for one request.
// It carries only the principal's id and lives in the request context
// for the request's lifetime, never longer.
type Identity struct {
	UserID int64
}

// RejectCode classifies why authentication failed. Codec failures and
// salt mismatches collapse into RejectFailValidate so a client cannot
// probe which check tripped; the internal detail is still logged.
type RejectCode string

const (
	RejectTokenMissing         RejectCode = "TOKEN_MISSING"
	RejectTokenWrongFormat     RejectCode = "TOKEN_WRONG_FORMAT"
	RejectFailValidate         RejectCode = "FAIL_VALIDATE"
	RejectUserNotFound         RejectCode = "USER_NOT_FOUND"
	RejectModelAccess          RejectCode = "MODEL_ACCESS_ERROR"
	RejectCannotSetTokenCookie RejectCode = "CANNOT_SET_TOKEN_COOKIE"
	RejectCtxNotInRequest      RejectCode = "CTX_NOT_IN_REQUEST"
	RejectCtxCreateFail        RejectCode = "CTX_CREATE_FAIL"
)

// Rejection is the classified authentication failure. Detail is for
// logs only and must never reach a client response.
type Rejection struct {
	Code   RejectCode
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("httpx: auth rejected: %s", r.Code)
	}
	return fmt.Sprintf("httpx: auth rejected: %s (%s)", r.Code, r.Detail)
}

// Reject builds a Rejection with an optional internal detail.
func Reject(code RejectCode, detail string) *Rejection {
	return &Rejection{Code: code, Detail: detail}
}

// RejectionCode extracts the classified code from an error, defaulting
// to RejectFailValidate for anything unclassified.
func RejectionCode(err error) RejectCode {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Code
	}
	return RejectFailValidate
}

// Resolver drives the verification pipeline for one raw token:
// decode, principal lookup, rotation-salt comparison. On success it
// returns the identity plus, for cookie-origin tokens, a fresh access
// token for the sliding-session cookie (empty for header tokens).
// Failures are *Rejection values.
type Resolver interface {
	Resolve(ctx context.Context, token string, src TokenSource) (Identity, string, error)
}

// sessionResult is the cached per-request outcome. Downstream
// consumers read this; the resolver runs exactly once per request.
type sessionResult struct {
	identity Identity
	err      error
}

type sessionKey struct{}

func withSessionResult(ctx context.Context, res sessionResult) context.Context {
	return context.WithValue(ctx, sessionKey{}, res)
}

// IdentityFromContext returns the cached authentication outcome. It
// never re-validates; if the entry filter did not run this reports
// RejectCtxNotInRequest.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	res, ok := ctx.Value(sessionKey{}).(sessionResult)
	if !ok {
		return Identity{}, Reject(RejectCtxNotInRequest, "session middleware did not run")
	}
	if res.err != nil {
		return Identity{}, res.err
	}
	return res.identity, nil
}

var (
	errNoToken     = errors.New("httpx: no token in request")
	errWrongFormat = errors.New("httpx: malformed authorization header")
)

// extractToken pulls a candidate token from the request, preferring
// the session cookie over the Authorization header.
func extractToken(r *http.Request) (string, TokenSource, error) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, SourceCookie, nil
	}

	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", 0, errNoToken
	}
	token, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", 0, errWrongFormat
	}
	return strings.TrimSpace(token), SourceHeader, nil
}

// BearerToken extracts a bearer token from the Authorization header
// only, for endpoints that do not accept cookie credentials (e.g.
// refresh).
func BearerToken(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", errNoToken
	}
	token, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errWrongFormat
	}
	return strings.TrimSpace(token), nil
}

// SetSessionCookie writes the session cookie: HttpOnly, path "/",
// Secure outside dev so browsers refuse to leak it over plain HTTP.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the response.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
