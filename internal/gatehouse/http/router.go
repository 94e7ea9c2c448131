// Package http wires the service's HTTP surface: credential endpoints,
// the authenticated profile routes and health probes. The session
// entry filter and request logging run globally; rate limits are
// applied per route by sensitivity.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	secure       bool

	store       store.Store
	AuthService *service.AuthService
	UserService *service.UserService
	Resolver    *service.SessionResolver
}

// NewRouter builds the router with the global middleware chain:
// request logging first, then the session entry filter so every
// handler downstream reads authentication from the request cache.
func NewRouter(
	buildVersion string,
	secureCookies bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		secure:       secureCookies,
		store:        st,
	}
	return r
}

// ApplyRoutes registers all endpoints. Must be called after the
// services and resolver are assigned.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.SessionMiddleware(r.Resolver, r.secure),
	}

	r.registerAuth()
	r.registerAccount()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{AuthService: r.AuthService, Secure: r.secure}
	logout := &LogoutHandler{}
	register := &RegisterHandler{AuthService: r.AuthService}
	refresh := &RefreshHandler{AuthService: r.AuthService}
	verify := &EmailVerifyHandler{AuthService: r.AuthService}

	// Credential endpoints get the strict profile to slow brute force.
	r.Mux.Handle("POST /api/login",
		httpx.Chain(login, httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("POST /api/logout",
		httpx.Chain(logout, httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.Handle("POST /api/register",
		httpx.Chain(register, httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("POST /api/token/refresh",
		httpx.Chain(refresh, httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("GET /api/email/verify",
		httpx.Chain(verify, httpx.RateLimitByIP(httpx.ModerateLimit)),
	)
}

func (r *Router) registerAccount() {
	me := &UserInfoHandler{UserService: r.UserService}
	pwd := &PasswordChangeHandler{AuthService: r.AuthService}
	logoutAll := &LogoutEverywhereHandler{AuthService: r.AuthService}

	r.Mux.Handle("GET /api/me",
		httpx.Chain(me,
			httpx.RequireIdentity,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/password",
		httpx.Chain(pwd,
			httpx.RequireIdentity,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/logout-all",
		httpx.Chain(logoutAll,
			httpx.RequireIdentity,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
