package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/service"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/httputil"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/middleware"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login handles POST /api/v1/auth/login. Credentials come from HTTP Basic
// auth when present, otherwise from the JSON body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		var req LoginRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		email, password = req.Email, req.Password
	}

	session, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.TokenID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("user not authenticated"), h.logger)
		return
	}

	if err := h.auth.Logout(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// tokenValidator adapts AuthService to the bearer middleware.
func tokenValidator(svc *service.AuthService) middleware.TokenValidator {
	return func(ctx context.Context, token string) (*middleware.Claims, error) {
		claims, err := svc.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		c := &middleware.Claims{
			UserID:  claims.UserID,
			Email:   claims.Email,
			TokenID: claims.ID,
		}
		if claims.ExpiresAt != nil {
			c.ExpiresAt = claims.ExpiresAt.Time
		}
		return c, nil
	}
}
