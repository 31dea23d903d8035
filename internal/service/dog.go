package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/storage"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// DogService implements listing operations.
type DogService struct {
	store  repository.Store
	blobs  storage.BlobStore
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewDogService creates a new dog service.
func NewDogService(store repository.Store, blobs storage.BlobStore, events EventPublisher, logger *slog.Logger) *DogService {
	return &DogService{store: store, blobs: blobs, events: events, logger: logger, now: time.Now}
}

// CreateDog lists a dog for sellerID. The listing's breeder rating is the
// seller's average at the moment of creation; the seller row is share-locked
// so a concurrent review either sees the new listing or precedes it.
func (s *DogService) CreateDog(ctx context.Context, sellerID string, b domain.DogBuilder) (*domain.Dog, error) {
	if err := validateBuilder(b); err != nil {
		return nil, err
	}

	var dog *domain.Dog
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		seller, err := tx.Users().GetByIDForShare(ctx, sellerID)
		if err != nil {
			return notFound(err, "user", sellerID)
		}

		dog = b.Build(uuid.NewString(), seller, s.now().UTC())
		return tx.Dogs().Create(ctx, dog)
	})
	if err != nil {
		return nil, storeError("create dog", err)
	}

	if err := s.events.PublishDogCreated(ctx, dog); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish dog.created event",
			slog.String("dog_id", dog.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "dog created",
		slog.String("dog_id", dog.ID),
		slog.String("seller_id", sellerID),
		slog.Float64("breeder_rating", dog.BreederRating),
	)
	return dog, nil
}

// ListDogs returns every listing, oldest first.
func (s *DogService) ListDogs(ctx context.Context) ([]domain.Dog, error) {
	dogs, err := s.store.Dogs().List(ctx)
	if err != nil {
		return nil, storeError("list dogs", err)
	}
	return dogs, nil
}

// GetDog returns a listing by ID.
func (s *DogService) GetDog(ctx context.Context, id string) (*domain.Dog, error) {
	dog, err := s.store.Dogs().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get dog", notFound(err, "dog", id))
	}
	return dog, nil
}

// GetDogSeller returns the owner of a listing.
func (s *DogService) GetDogSeller(ctx context.Context, id string) (*domain.User, error) {
	dog, err := s.GetDog(ctx, id)
	if err != nil {
		return nil, err
	}
	seller, err := s.store.Users().GetByID(ctx, dog.SellerID)
	if err != nil {
		return nil, storeError("get seller", notFound(err, "user", dog.SellerID))
	}
	return seller, nil
}

// UploadDogImage replaces the image of a listing owned by principalID.
func (s *DogService) UploadDogImage(ctx context.Context, principalID, dogID string, img domain.Image) (*domain.Dog, error) {
	dog, err := s.GetDog(ctx, dogID)
	if err != nil {
		return nil, err
	}
	if dog.SellerID != principalID {
		return nil, apperrors.Forbidden("only the seller can change this dog's image")
	}

	url, err := s.blobs.Store(ctx, principalID, storage.CategoryDogImages, img.Data, img.Extension)
	if err != nil {
		if apperrors.IsClassified(err) {
			return nil, err
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.store.Dogs().UpdateImageURL(ctx, dogID, url); err != nil {
		return nil, storeError("update dog image", notFound(err, "dog", dogID))
	}
	dog.ImageURL = url

	s.logger.InfoContext(ctx, "dog image updated",
		slog.String("dog_id", dogID),
		slog.String("image_url", url),
	)
	return dog, nil
}

func validateBuilder(b domain.DogBuilder) error {
	switch {
	case strings.TrimSpace(b.Name) == "":
		return apperrors.InvalidInput("name is required")
	case b.Cost < 0:
		return apperrors.InvalidInput("cost cannot be negative")
	case b.Gender != domain.GenderMale && b.Gender != domain.GenderFemale:
		return apperrors.InvalidInput("gender must be male or female")
	case b.RelativeBirthday < 0 || b.RelativeCreation < 0:
		return apperrors.InvalidInput("relative dates cannot be in the future")
	}
	return nil
}
