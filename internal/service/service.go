package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// EventPublisher publishes domain events after their changes are committed.
// Implemented by event.Producer and event.Noop.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
	PublishSellerRatingUpdated(ctx context.Context, sellerID string, rating domain.SellerRating, listings int) error
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserUpdated(ctx context.Context, user *domain.User) error
	PublishDogCreated(ctx context.Context, dog *domain.Dog) error
}

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	Cost int
}

// DefaultHasher uses bcrypt.DefaultCost.
func DefaultHasher() Hasher { return Hasher{Cost: bcrypt.DefaultCost} }

func (h Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (h Hasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// storeError passes classified errors through and reports everything else
// as a persistence failure of op.
func storeError(op string, err error) error {
	if apperrors.IsClassified(err) {
		return err
	}
	return apperrors.Persistence(op, err)
}

// notFound turns a bare repository ErrNotFound into a descriptive one.
func notFound(err error, resource, id string) error {
	var appErr *apperrors.AppError
	if errors.Is(err, apperrors.ErrNotFound) && !errors.As(err, &appErr) {
		return apperrors.NotFound(resource, id)
	}
	return err
}
