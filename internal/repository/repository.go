package repository

import (
	"context"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
)

// UserRepository persists users. Lookups of a missing user return
// apperrors.ErrNotFound; a duplicate email returns apperrors.ErrAlreadyExists.
type UserRepository interface {
	// Create inserts a new user. Email must already be normalized.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDForUpdate retrieves a user and holds a write lock on it
	// until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error)

	// GetByIDForShare retrieves a user and holds a shared lock on it until
	// the enclosing transaction ends.
	GetByIDForShare(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail finds a user by email, ignoring case.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile writes email, name, about, password hash and profile
	// image. Rating columns are untouched.
	UpdateProfile(ctx context.Context, user *domain.User) error

	// UpdateRating writes the review aggregate of a user.
	UpdateRating(ctx context.Context, id string, rating domain.SellerRating) error
}

// DogRepository persists listings.
type DogRepository interface {
	Create(ctx context.Context, dog *domain.Dog) error
	GetByID(ctx context.Context, id string) (*domain.Dog, error)

	// List returns every listing, oldest first.
	List(ctx context.Context) ([]domain.Dog, error)

	// ListBySeller returns every listing owned by sellerID, oldest first.
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Dog, error)

	UpdateBreederRating(ctx context.Context, id string, rating float64) error
	UpdateImageURL(ctx context.Context, id, url string) error
}

// ReviewRepository persists reviews. Reviews are never updated or deleted.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error

	// ListBySeller returns one page of a seller's reviews, newest first,
	// and the seller's total review count.
	ListBySeller(ctx context.Context, sellerID string, offset, limit int) ([]domain.Review, int, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Dogs() DogRepository
	Reviews() ReviewRepository
}

// Store is the persistence gateway. Its own repositories run each call
// independently; WithinTx runs fn as a single atomic unit and commits only
// if fn returns nil.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
