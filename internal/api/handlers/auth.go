// Package handlers contains the HTTP handler implementations for the API.
// Handlers depend on small locally-defined interfaces so tests can inject
// fakes without touching the concrete db and external packages.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"aitendule/internal/core"
	"aitendule/internal/types"
)

// AuthUserRepo is the data access contract for credential verification.
type AuthUserRepo interface {
	GetByEmail(ctx context.Context, email string) (*types.User, error)
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}

// AuthHandler verifies user credentials.
type AuthHandler struct {
	users     AuthUserRepo
	validator *core.Validator
	logger    *slog.Logger
}

func NewAuthHandler(users AuthUserRepo, v *core.Validator, l *slog.Logger) *AuthHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuthHandler{users: users, validator: v, logger: l}
}

// RegisterRoutes mounts auth routes on the provided chi.Router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// Login handles POST /api/v1/auth/login. Unknown email and wrong password
// produce the same response so the endpoint does not leak which accounts
// exist.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if appErr, ok := asAppError(err); ok && appErr.Code == types.ErrCodeNotFoundUser {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeAuthInvalidCreds,
				"invalid email or password",
				nil,
			))
			return
		}
		core.Error(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("login rejected", slog.Int("user_id", user.ID))
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthInvalidCreds,
			"invalid email or password",
			nil,
		))
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: LoginResponse{
		UserID: user.ID,
		Email:  user.Email,
	}})
}
