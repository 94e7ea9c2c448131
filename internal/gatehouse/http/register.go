package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/slogx"
)

const minPasswordLength = 6

// RegisterHandler serves POST /api/register.
type RegisterHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"pwd"`
	PasswordConfirm string `json:"pwd_confirm"`
}

func (req *registerRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Username) == "":
		return "username is required"
	case strings.TrimSpace(req.Email) == "":
		return "email is required"
	case len(req.Password) < minPasswordLength:
		return "password must be at least 6 characters"
	case req.Password != req.PasswordConfirm:
		return "passwords do not match"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is invalid"
	}
	return ""
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	id, err := h.AuthService.Register(ctx, service.RegisterParams{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			writeError(w, http.StatusConflict, "user_exists", "username or email already taken")
			return
		}
		log.Error("registration failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "registration failed")
		return
	}

	log.Info("user registered", "user_id", id)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"user_id": id,
		"message": "account created, check your email to verify your address",
	})
}
