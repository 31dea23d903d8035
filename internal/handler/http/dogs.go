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
)

// DogHandler handles listing endpoints.
type DogHandler struct {
	dogs   *service.DogService
	logger *slog.Logger
}

// NewDogHandler creates a new dog HTTP handler.
func NewDogHandler(dogs *service.DogService, logger *slog.Logger) *DogHandler {
	return &DogHandler{dogs: dogs, logger: logger}
}

// List handles GET /api/v1/dogs
func (h *DogHandler) List(w http.ResponseWriter, r *http.Request) {
	dogs, err := h.dogs.ListDogs(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if dogs == nil {
		dogs = []domain.Dog{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: dogs})
}

// Create handles POST /api/v1/dogs
func (h *DogHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.UserIDFromContext(r.Context())
	if principal == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("user not authenticated"), h.logger)
		return
	}

	var req CreateDogRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	gender, err := domain.ParseGender(req.Gender)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("gender must be male or female"), h.logger)
		return
	}

	dog, err := h.dogs.CreateDog(r.Context(), principal, domain.DogBuilder{
		About:            req.About,
		Breed:            req.Breed,
		Cost:             req.Cost,
		Gender:           gender,
		ImageURL:         req.ImageURL,
		Name:             req.Name,
		RelativeBirthday: req.RelativeBirthday,
		RelativeCreation: req.RelativeCreation,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: dog})
}

// Get handles GET /api/v1/dogs/{id}
func (h *DogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	dog, err := h.dogs.GetDog(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: dog})
}

// Seller handles GET /api/v1/dogs/{id}/seller
func (h *DogHandler) Seller(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	seller, err := h.dogs.GetDogSeller(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toUserResponse(seller)})
}

// UploadImage handles PUT /api/v1/dogs/{id}/image
func (h *DogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	principal := middleware.UserIDFromContext(r.Context())
	if principal == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("user not authenticated"), h.logger)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UploadImageRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	dog, err := h.dogs.UploadDogImage(r.Context(), principal, id.String(), *req.Image.toDomain())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: dog})
}
