package http

import (
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/service"
)

// --- Request DTOs ---

// RegisterRequest is the JSON request body for creating an account. Presence
// of email, name and password is checked by the service so the client gets
// a single message naming all three.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"omitempty,max=254"`
	Name     string  `json:"name" validate:"omitempty,max=100"`
	Password string  `json:"password" validate:"omitempty,max=72"`
	About    *string `json:"about" validate:"omitempty,max=2000"`
}

// ImagePayload carries base64 encoded image bytes and their file extension.
type ImagePayload struct {
	Data      []byte `json:"data" validate:"required"`
	Extension string `json:"extension" validate:"max=10"`
}

func (p *ImagePayload) toDomain() *domain.Image {
	if p == nil {
		return nil
	}
	return &domain.Image{Data: p.Data, Extension: p.Extension}
}

// UpdateUserRequest is the JSON request body for a sparse account update.
// Omitted fields are left unchanged.
type UpdateUserRequest struct {
	About        *string       `json:"about" validate:"omitempty,max=2000"`
	Email        *string       `json:"email" validate:"omitempty,max=254"`
	Name         *string       `json:"name" validate:"omitempty,max=100"`
	Password     *string       `json:"password" validate:"omitempty,max=72"`
	ProfileImage *ImagePayload `json:"profile_image"`
}

// CreateReviewRequest is the JSON request body for reviewing a seller.
type CreateReviewRequest struct {
	Rating  float64 `json:"rating"`
	Title   string  `json:"title" validate:"max=200"`
	Details string  `json:"details" validate:"max=5000"`
}

// CreateDogRequest is the JSON request body for a new listing. Relative
// dates are seconds before now.
type CreateDogRequest struct {
	About            string  `json:"about" validate:"max=5000"`
	Breed            string  `json:"breed" validate:"required,max=100"`
	Cost             int64   `json:"cost" validate:"gte=0"`
	Gender           string  `json:"gender" validate:"required"`
	ImageURL         string  `json:"image_url" validate:"omitempty,url"`
	Name             string  `json:"name" validate:"required,max=100"`
	RelativeBirthday float64 `json:"relative_birthday" validate:"gte=0"`
	RelativeCreation float64 `json:"relative_creation" validate:"gte=0"`
}

// UploadImageRequest is the JSON request body for replacing a dog's image.
type UploadImageRequest struct {
	Image ImagePayload `json:"image"`
}

// LoginRequest is the JSON request body for logging in without Basic auth.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Response DTOs ---

// UserResponse is the public projection of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID                  string  `json:"id"`
	About               *string `json:"about"`
	Email               string  `json:"email"`
	Name                string  `json:"name"`
	ProfileImageURL     *string `json:"profile_image_url"`
	ReviewCount         int     `json:"review_count"`
	ReviewRatingAverage float64 `json:"review_rating_average"`
}

func toUserResponse(u *domain.User) UserResponse {
	summary := domain.SummaryOf(u.Rating)
	return UserResponse{
		ID:                  u.ID,
		About:               u.About,
		Email:               u.Email,
		Name:                u.Name,
		ProfileImageURL:     u.ProfileImageURL,
		ReviewCount:         summary.ReviewCount,
		ReviewRatingAverage: summary.ReviewRatingAverage,
	}
}

func toRecordReviewInput(sellerID, reviewerID string, req CreateReviewRequest) service.RecordReviewInput {
	return service.RecordReviewInput{
		SellerID:   sellerID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Title:      req.Title,
		Details:    req.Details,
	}
}
