package http

import (
	"encoding/json"
	"net/http"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
)

// PasswordChangeHandler serves POST /api/password. Changing the
// password rotates the token salt, so every outstanding session for
// the user dies with the old password.
type PasswordChangeHandler struct {
	AuthService *service.AuthService
}

type passwordChangeRequest struct {
	NewPassword        string `json:"new_pwd"`
	NewPasswordConfirm string `json:"new_pwd_confirm"`
}

func (h *PasswordChangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, err := httpx.IdentityFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "no session identity")
		return
	}

	var req passwordChangeRequest
	if derr := json.NewDecoder(r.Body).Decode(&req); derr != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "validation_failed", "password must be at least 6 characters")
		return
	}
	if req.NewPassword != req.NewPasswordConfirm {
		writeError(w, http.StatusBadRequest, "validation_failed", "passwords do not match")
		return
	}

	if err := h.AuthService.ChangePassword(ctx, identity.UserID, req.NewPassword); err != nil {
		log.Error("password change failed", "user_id", identity.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "password change failed")
		return
	}

	// The caller's own token just died with the rotation; drop the
	// cookie so the client re-authenticates cleanly.
	httpx.ClearSessionCookie(w)

	log.Info("password changed", "user_id", identity.UserID)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password changed, please log in again",
	})
}

// LogoutEverywhereHandler serves POST /api/logout-all: rotates the
// token salt so all outstanding tokens for the user are stranded.
type LogoutEverywhereHandler struct {
	AuthService *service.AuthService
}

func (h *LogoutEverywhereHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, err := httpx.IdentityFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "no session identity")
		return
	}

	if err := h.AuthService.LogoutEverywhere(ctx, identity.UserID); err != nil {
		log.Error("logout everywhere failed", "user_id", identity.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "logout failed")
		return
	}

	httpx.ClearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "all sessions revoked",
	})
}
