package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/database"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// usersEmailIndex is the unique index on lower(email).
const usersEmailIndex = "users_email_lower_idx"

const userColumns = `id, email, name, about, password_hash, profile_image_url,
		review_count, review_rating_average, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.Querier
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, about, password_hash, profile_image_url,
		    review_count, review_rating_average, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := exec(ctx, r.db, "CreateUser", query,
		u.ID,
		u.Email,
		u.Name,
		u.About,
		u.PasswordHash,
		u.ProfileImageURL,
		u.Rating.Count(),
		u.Rating.Average(),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, usersEmailIndex) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, "GetUser", query, id)
}

// GetByIDForUpdate retrieves a user and locks the row against other writers.
// NO KEY UPDATE leaves foreign key checks that reference the row unblocked.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR NO KEY UPDATE`
	return r.scanUser(ctx, "GetUserForUpdate", query, id)
}

// GetByIDForShare retrieves a user and takes a shared lock on the row.
func (r *UserRepository) GetByIDForShare(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR SHARE`
	return r.scanUser(ctx, "GetUserForShare", query, id)
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.scanUser(ctx, "GetUserByEmail", query, email)
}

// UpdateProfile writes the profile columns of a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email = $1, name = $2, about = $3, password_hash = $4, profile_image_url = $5, updated_at = $6
		WHERE id = $7`

	ct, err := exec(ctx, r.db, "UpdateUserProfile", query,
		u.Email,
		u.Name,
		u.About,
		u.PasswordHash,
		u.ProfileImageURL,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err, usersEmailIndex) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}

	return nil
}

// UpdateRating writes the review aggregate of a user.
func (r *UserRepository) UpdateRating(ctx context.Context, id string, rating domain.SellerRating) error {
	query := `
		UPDATE users
		SET review_count = $1, review_rating_average = $2, updated_at = $3
		WHERE id = $4`

	ct, err := exec(ctx, r.db, "UpdateUserRating", query,
		rating.Count(),
		rating.Average(),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update user rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}

func (r *UserRepository) scanUser(ctx context.Context, op, query string, args ...any) (u *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var (
		user          domain.User
		reviewCount   int
		ratingAverage float64
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.About,
		&user.PasswordHash,
		&user.ProfileImageURL,
		&reviewCount,
		&ratingAverage,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.Rating = domain.Rated(reviewCount, ratingAverage)
	return &user, nil
}
