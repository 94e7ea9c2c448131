package http

import (
	"errors"
	"net/http"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
)

// EmailVerifyHandler serves GET /api/email/verify?token=...
type EmailVerifyHandler struct {
	AuthService *service.AuthService
}

func (h *EmailVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing token parameter")
		return
	}

	if err := h.AuthService.VerifyEmail(ctx, token); err != nil {
		if errors.Is(err, service.ErrVerificationInvalid) {
			writeError(w, http.StatusBadRequest, "invalid_token", "verification token is unknown or expired")
			return
		}
		log.Error("email verification failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "email verification failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "email verified",
	})
}
