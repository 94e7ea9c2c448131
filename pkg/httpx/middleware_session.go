package httpx

import (
	"net/http"

	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
)

// SessionMiddleware is the per-request entry filter. It extracts a
// candidate token (cookie preferred, bearer header otherwise), runs
// the resolver exactly once and caches the outcome in the request
// context for downstream consumers. On cookie-origin success the
// refreshed access token is re-set to extend the sliding session; on
// any failure other than "no token was presented at all" the session
// cookie is proactively cleared so clients stop replaying a token the
// server just proved invalid.
func SessionMiddleware(rs Resolver, secureCookies bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			var res sessionResult

			token, src, err := extractToken(r)
			switch {
			case err == errNoToken:
				res.err = Reject(RejectTokenMissing, "")
			case err == errWrongFormat:
				res.err = Reject(RejectTokenWrongFormat, "")
			default:
				ident, refreshed, rerr := rs.Resolve(ctx, token, src)
				if rerr != nil {
					res.err = rerr
				} else {
					res.identity = ident
					if src == SourceCookie && refreshed != "" {
						SetSessionCookie(w, refreshed, secureCookies)
					}
				}
			}

			if res.err != nil {
				code := RejectionCode(res.err)
				if code != RejectTokenMissing {
					ClearSessionCookie(w)
					log.Debug("session rejected", "reason", string(code))
				}
			}

			next.ServeHTTP(w, r.WithContext(withSessionResult(ctx, res)))
		})
	}
}

// RequireIdentity gates a route on the cached authentication outcome,
// short-circuiting with a uniform 401 before any business logic runs.
// The fine-grained rejection reason stays in the logs.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, err := IdentityFromContext(ctx); err != nil {
			slogx.FromContext(ctx).Info("request rejected",
				"reason", string(RejectionCode(err)),
			)
			writeAuthError(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeAuthError sends the uniform unauthenticated response. Clients
// never learn which verification step failed.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthorized",
		"error_description": "authentication failed",
	})
}
