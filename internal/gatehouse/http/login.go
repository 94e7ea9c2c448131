package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/domain"
	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
)

// LoginHandler serves POST /api/login. On success it sets the session
// cookie to the fresh access token and returns the full pair in the
// body for API clients that prefer the bearer header.
type LoginHandler struct {
	AuthService *service.AuthService
	Secure      bool
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"pwd"`
}

type loginResponse struct {
	User   userDTO          `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and pwd are required")
		return
	}

	pair, user, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Uniform rejection: no hint whether the user exists.
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "username or password incorrect")
			return
		}
		log.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "login failed")
		return
	}

	httpx.SetSessionCookie(w, pair.AccessToken, h.Secure)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		User:   userDTO{ID: user.ID, Username: user.Username},
		Tokens: pair,
	})
}

// LogoutHandler serves POST /api/logout: clears the session cookie.
// The stateless access token stays technically valid until expiry;
// "log out everywhere" is the salt-rotating variant.
type LogoutHandler struct{}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.ClearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func writeError(w http.ResponseWriter, code int, err, desc string) {
	httpx.WriteJSON(w, code, map[string]string{
		"error":             err,
		"error_description": desc,
	})
}
