package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/storage"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

const msgEmailTaken = "Email is already registered"

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	About    *string
}

// UserService implements account operations.
type UserService struct {
	store  repository.Store
	blobs  storage.BlobStore
	hasher Hasher
	events EventPublisher
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store repository.Store, blobs storage.BlobStore, hasher Hasher, events EventPublisher, logger *slog.Logger) *UserService {
	return &UserService{store: store, blobs: blobs, hasher: hasher, events: events, logger: logger}
}

// Register creates a user with no reviews.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" {
		return nil, apperrors.InvalidInput("Email, name and password are required")
	}

	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict(msgEmailTaken)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, storeError("check email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		About:        in.About,
		PasswordHash: hash,
		Rating:       domain.NoReviews(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(msgEmailTaken)
		}
		return nil, storeError("create user", err)
	}

	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get user", notFound(err, "user", id))
	}
	return user, nil
}

// SearchByEmail finds a user by email address, ignoring case.
func (s *UserService) SearchByEmail(ctx context.Context, email string) (*domain.User, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return nil, apperrors.InvalidInput("Email query parameter is required")
	}

	user, err := s.store.Users().GetByEmail(ctx, normalized)
	if err != nil {
		return nil, storeError("search user", notFound(err, "user", normalized))
	}
	return user, nil
}

// UpdateUser applies a sparse update to the principal's own account. Absent
// fields are left unchanged. The email must stay unique ignoring case, a new
// password is always hashed and a new profile image is written to the blob
// store only once the new email is known to be free.
func (s *UserService) UpdateUser(ctx context.Context, principalID string, upd domain.UserUpdate) (*domain.User, error) {
	if err := validateUpdate(&upd); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return user, nil
	}

	var hash string
	if upd.Password != nil {
		if hash, err = s.hasher.Hash(*upd.Password); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	if upd.Email != nil && *upd.Email != user.Email {
		if err := checkEmailFree(ctx, s.store.Users(), *upd.Email, principalID); err != nil {
			return nil, storeError("update user", err)
		}
	}

	var imageURL string
	if upd.ProfileImage != nil {
		imageURL, err = s.blobs.Store(ctx, principalID, storage.CategoryProfileImages, upd.ProfileImage.Data, upd.ProfileImage.Extension)
		if err != nil {
			if apperrors.IsClassified(err) {
				return nil, err
			}
			return nil, apperrors.Internal(err)
		}
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		current, err := tx.Users().GetByIDForUpdate(ctx, principalID)
		if err != nil {
			return notFound(err, "user", principalID)
		}

		if upd.Email != nil && *upd.Email != current.Email {
			if err := checkEmailFree(ctx, tx.Users(), *upd.Email, current.ID); err != nil {
				return err
			}
			current.Email = *upd.Email
		}
		if upd.Name != nil {
			current.Name = *upd.Name
		}
		if upd.About != nil {
			about := *upd.About
			current.About = &about
		}
		if upd.Password != nil {
			current.PasswordHash = hash
		}
		if upd.ProfileImage != nil {
			current.ProfileImageURL = &imageURL
		}

		if err := tx.Users().UpdateProfile(ctx, current); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				return apperrors.Conflict(msgEmailTaken)
			}
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, storeError("update user", err)
	}

	if err := s.events.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user updated", slog.String("user_id", user.ID))
	return user, nil
}

// checkEmailFree returns a conflict when email belongs to a user other than selfID.
func checkEmailFree(ctx context.Context, users repository.UserRepository, email, selfID string) error {
	other, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil && other.ID != selfID:
		return apperrors.Conflict(msgEmailTaken)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return err
	}
	return nil
}

// validateUpdate normalizes the email and rejects blank required fields.
func validateUpdate(upd *domain.UserUpdate) error {
	if upd.Email != nil {
		email := domain.NormalizeEmail(*upd.Email)
		if email == "" {
			return apperrors.InvalidInput("email cannot be empty")
		}
		upd.Email = &email
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return apperrors.InvalidInput("name cannot be empty")
	}
	if upd.Password != nil && *upd.Password == "" {
		return apperrors.InvalidInput("password cannot be empty")
	}
	if upd.ProfileImage != nil && strings.TrimPrefix(strings.TrimSpace(upd.ProfileImage.Extension), ".") == "" {
		return storage.ErrMissingExtension
	}
	return nil
}
