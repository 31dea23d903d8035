package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/service"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/httputil"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/middleware"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/pagination"
)

// UserHandler handles account and seller review endpoints.
type UserHandler struct {
	users   *service.UserService
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(users *service.UserService, reviews *service.ReviewService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, reviews: reviews, logger: logger}
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		About:    req.About,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: toUserResponse(user)})
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toUserResponse(user)})
}

// Search handles GET /api/v1/users/search?email=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.SearchByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toUserResponse(user)})
}

// Update handles PUT /api/v1/users
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.UserIDFromContext(r.Context())
	if principal == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("user not authenticated"), h.logger)
		return
	}

	var req UpdateUserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), principal, domain.UserUpdate{
		About:        req.About,
		Email:        req.Email,
		Name:         req.Name,
		Password:     req.Password,
		ProfileImage: req.ProfileImage.toDomain(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toUserResponse(user)})
}

// ListReviews handles GET /api/v1/users/{id}/reviews
func (h *UserHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	result, err := h.reviews.ListSellerReviews(r.Context(), id.String(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// CreateReview handles POST /api/v1/users/{id}/reviews
func (h *UserHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	principal := middleware.UserIDFromContext(r.Context())
	if principal == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("user not authenticated"), h.logger)
		return
	}

	sellerID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	review, err := h.reviews.RecordReview(r.Context(), toRecordReviewInput(sellerID.String(), principal, req))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}
