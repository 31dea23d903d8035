package postgres

import (
	"context"
	"fmt"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/database"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.Querier
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.Querier) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, creator_id, seller_id, rating, title, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := exec(ctx, r.db, "CreateReview", query,
		rv.ID,
		rv.CreatorID,
		rv.SellerID,
		rv.Rating,
		rv.Title,
		rv.Details,
		rv.CreatedAt,
	)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return apperrors.NotFound("user", rv.CreatorID)
		case database.IsCheckViolation(err):
			return apperrors.InvalidInput("rating must be between 1.0 and 5.0")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListBySeller returns a page of a seller's reviews, newest first, with the total count.
func (r *ReviewRepository) ListBySeller(ctx context.Context, sellerID string, offset, limit int) ([]domain.Review, int, error) {
	countQuery := `SELECT COUNT(*) FROM reviews WHERE seller_id = $1`

	var total int
	if err := r.db.QueryRow(ctx, countQuery, sellerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := `
		SELECT id, creator_id, seller_id, rating, title, details, created_at
		FROM reviews
		WHERE seller_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, sellerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.CreatorID,
			&rv.SellerID,
			&rv.Rating,
			&rv.Title,
			&rv.Details,
			&rv.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, total, nil
}
