package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// fakeResolver scripts the resolver outcome and records what it saw.
type fakeResolver struct {
	identity  httpx.Identity
	refreshed string
	err       error

	calls     int
	lastToken string
	lastSrc   httpx.TokenSource
}

func (f *fakeResolver) Resolve(_ context.Context, token string, src httpx.TokenSource) (httpx.Identity, string, error) {
	f.calls++
	f.lastToken = token
	f.lastSrc = src
	if f.err != nil {
		return httpx.Identity{}, "", f.err
	}
	return f.identity, f.refreshed, nil
}

// echoIdentity reports the cached session outcome from the handler's
// point of view.
func echoIdentity(t *testing.T, got *httpx.Identity, gotErr *error) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.IdentityFromContext(r.Context())
		*got = id
		*gotErr = err
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_CookiePreferredOverHeader(t *testing.T) {
	rs := &fakeResolver{identity: httpx.Identity{UserID: 7}}

	var id httpx.Identity
	var idErr error
	h := httpx.SessionMiddleware(rs, false)(echoIdentity(t, &id, &idErr))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, rs.calls)
	require.Equal(t, "cookie-token", rs.lastToken)
	require.Equal(t, httpx.SourceCookie, rs.lastSrc)
	require.NoError(t, idErr)
	require.Equal(t, int64(7), id.UserID)
}

func TestSessionMiddleware_HeaderFallback(t *testing.T) {
	rs := &fakeResolver{identity: httpx.Identity{UserID: 3}}

	var id httpx.Identity
	var idErr error
	h := httpx.SessionMiddleware(rs, false)(echoIdentity(t, &id, &idErr))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")

	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "header-token", rs.lastToken)
	require.Equal(t, httpx.SourceHeader, rs.lastSrc)
	require.NoError(t, idErr)
}

func TestSessionMiddleware_MissingToken(t *testing.T) {
	rs := &fakeResolver{}

	var id httpx.Identity
	var idErr error
	h := httpx.SessionMiddleware(rs, false)(echoIdentity(t, &id, &idErr))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Zero(t, rs.calls, "resolver must not run without a token")
	require.Error(t, idErr)
	require.Equal(t, httpx.RejectTokenMissing, httpx.RejectionCode(idErr))

	// No token was presented, so there is nothing to clear.
	require.Empty(t, rec.Result().Cookies())
}

func TestSessionMiddleware_WrongFormatHeader(t *testing.T) {
	rs := &fakeResolver{}

	var id httpx.Identity
	var idErr error
	h := httpx.SessionMiddleware(rs, false)(echoIdentity(t, &id, &idErr))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Zero(t, rs.calls)
	require.Equal(t, httpx.RejectTokenWrongFormat, httpx.RejectionCode(idErr))
}

func TestSessionMiddleware_SlidingCookieRefresh(t *testing.T) {
	rs := &fakeResolver{
		identity:  httpx.Identity{UserID: 9},
		refreshed: "fresh-token",
	}

	var id httpx.Identity
	var idErr error
	h := httpx.SessionMiddleware(rs, false)(echoIdentity(t, &id, &idErr))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "old-token"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, httpx.SessionCookieName, cookies[0].Name)
	require.Equal(t, "fresh-token", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
}

func TestSessionMiddleware_NoCookieRefreshForHeaderTokens(t *testing.T) {
	rs := &fakeResolver{
		identity:  httpx.Identity{UserID: 9},
		refreshed: "fresh-token",
	}

	var id httpx.Identity
	var idErr error
	h := httpx.SessionMiddleware(rs, false)(echoIdentity(t, &id, &idErr))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Empty(t, rec.Result().Cookies(), "header tokens stay header tokens")
}

func TestSessionMiddleware_ClearsCookieOnRejection(t *testing.T) {
	rs := &fakeResolver{err: httpx.Reject(httpx.RejectFailValidate, "expired")}

	var id httpx.Identity
	var idErr error
	h := httpx.SessionMiddleware(rs, false)(echoIdentity(t, &id, &idErr))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "stale"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, httpx.RejectFailValidate, httpx.RejectionCode(idErr))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, httpx.SessionCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestRequireIdentity_BlocksUnauthenticated(t *testing.T) {
	rs := &fakeResolver{}

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	h := httpx.SessionMiddleware(rs, false)(httpx.RequireIdentity(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestRequireIdentity_PassesAuthenticated(t *testing.T) {
	rs := &fakeResolver{identity: httpx.Identity{UserID: 42}}

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	h := httpx.SessionMiddleware(rs, false)(httpx.RequireIdentity(inner))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(rec, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireIdentity_WithoutMiddleware(t *testing.T) {
	// RequireIdentity on a route the session filter never wrapped must
	// still refuse, not panic.
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	httpx.RequireIdentity(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	tok, err := httpx.BearerToken(req)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", tok)

	req.Header.Set("Authorization", "Token abc")
	_, err = httpx.BearerToken(req)
	require.Error(t, err)

	req.Header.Del("Authorization")
	_, err = httpx.BearerToken(req)
	require.Error(t, err)
}
