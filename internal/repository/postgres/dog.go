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

const dogColumns = `id, seller_id, name, about, breed, breeder_rating, cost, gender,
		image_url, birthday, created_at, updated_at`

// DogRepository implements repository.DogRepository using PostgreSQL.
type DogRepository struct {
	db database.Querier
}

// NewDogRepository creates a new PostgreSQL-backed dog repository.
func NewDogRepository(db database.Querier) *DogRepository {
	return &DogRepository{db: db}
}

// Create inserts a new listing.
func (r *DogRepository) Create(ctx context.Context, d *domain.Dog) error {
	query := `
		INSERT INTO dogs (id, seller_id, name, about, breed, breeder_rating, cost, gender,
		    image_url, birthday, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := exec(ctx, r.db, "CreateDog", query,
		d.ID,
		d.SellerID,
		d.Name,
		d.About,
		d.Breed,
		d.BreederRating,
		d.Cost,
		string(d.Gender),
		d.ImageURL,
		d.Birthday,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("user", d.SellerID)
		}
		return fmt.Errorf("insert dog: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by ID.
func (r *DogRepository) GetByID(ctx context.Context, id string) (*domain.Dog, error) {
	query := `SELECT ` + dogColumns + ` FROM dogs WHERE id = $1`

	d, err := scanDog(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get dog by id: %w", err)
	}

	return d, nil
}

// List returns all listings ordered by creation time.
func (r *DogRepository) List(ctx context.Context) ([]domain.Dog, error) {
	query := `SELECT ` + dogColumns + ` FROM dogs ORDER BY created_at ASC, id ASC`
	return r.queryDogs(ctx, "ListDogs", query)
}

// ListBySeller returns the listings of one seller ordered by creation time.
func (r *DogRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Dog, error) {
	query := `SELECT ` + dogColumns + ` FROM dogs WHERE seller_id = $1 ORDER BY created_at ASC, id ASC`
	return r.queryDogs(ctx, "ListDogsBySeller", query, sellerID)
}

// UpdateBreederRating sets the breeder rating of one listing.
func (r *DogRepository) UpdateBreederRating(ctx context.Context, id string, rating float64) error {
	query := `UPDATE dogs SET breeder_rating = $1, updated_at = $2 WHERE id = $3`

	ct, err := exec(ctx, r.db, "UpdateBreederRating", query, rating, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update breeder rating: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("dog", id)
	}

	return nil
}

// UpdateImageURL sets the image of one listing.
func (r *DogRepository) UpdateImageURL(ctx context.Context, id, url string) error {
	query := `UPDATE dogs SET image_url = $1, updated_at = $2 WHERE id = $3`

	ct, err := exec(ctx, r.db, "UpdateDogImage", query, url, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update dog image: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("dog", id)
	}

	return nil
}

func (r *DogRepository) queryDogs(ctx context.Context, op, query string, args ...any) (dogs []domain.Dog, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dogs: %w", err)
	}
	defer rows.Close()

	dogs = []domain.Dog{}
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dog row: %w", err)
		}
		dogs = append(dogs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dog rows: %w", err)
	}

	return dogs, nil
}

func scanDog(row pgx.Row) (*domain.Dog, error) {
	var (
		d      domain.Dog
		gender string
	)
	err := row.Scan(
		&d.ID,
		&d.SellerID,
		&d.Name,
		&d.About,
		&d.Breed,
		&d.BreederRating,
		&d.Cost,
		&gender,
		&d.ImageURL,
		&d.Birthday,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Gender = domain.Gender(gender)
	return &d, nil
}
