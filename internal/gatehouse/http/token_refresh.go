package http

import (
	"errors"
	"net/http"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
	"github.com/gatehouse-auth/gatehouse/pkg/tokenx"
)

// RefreshHandler serves POST /api/token/refresh. The refresh token is
// only ever accepted as a bearer header, never as the session cookie.
type RefreshHandler struct {
	AuthService *service.AuthService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token, err := httpx.BearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing bearer refresh token")
		return
	}

	pair, err := h.AuthService.Refresh(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, tokenx.ErrExpired),
			errors.Is(err, tokenx.ErrSignatureMismatch),
			errors.Is(err, tokenx.ErrDecodeFailed),
			errors.Is(err, tokenx.ErrInvalidToken),
			errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid_token", "refresh token rejected")
		default:
			log.Error("token refresh failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "token refresh failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
