package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
)

// UserInfoHandler serves GET /api/me for the resolved session identity.
type UserInfoHandler struct {
	UserService *service.UserService
}

type userInfoResponse struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, err := httpx.IdentityFromContext(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "no session identity")
		return
	}

	user, err := h.UserService.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "user no longer exists")
			return
		}
		log.Error("userinfo lookup failed", "user_id", identity.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "lookup failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfoResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	})
}
