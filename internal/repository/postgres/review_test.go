package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

func sampleReview(id string, at time.Time) domain.Review {
	return domain.Review{
		ID:        id,
		CreatorID: "buyer-1",
		SellerID:  "seller-1",
		Rating:    4.0,
		Title:     "Great pup",
		Details:   "Healthy and happy",
		CreatedAt: at,
	}
}

func TestReviewRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)
	rv := sampleReview("rev-1", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.CreatorID, rv.SellerID, rv.Rating, rv.Title, rv.Details, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &rv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_ConstraintErrors(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)
	rv := sampleReview("rev-1", time.Now())

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(anyArgs(7)...).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(anyArgs(7)...).
		WillReturnError(&pgconn.PgError{Code: "23514"})
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(anyArgs(7)...).
		WillReturnError(errors.New("disk full"))

	assert.True(t, errors.Is(repo.Create(context.Background(), &rv), apperrors.ErrNotFound))
	assert.True(t, errors.Is(repo.Create(context.Background(), &rv), apperrors.ErrInvalidInput))

	err := repo.Create(context.Background(), &rv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert review")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListBySeller(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	newer := sampleReview("rev-2", base.Add(time.Hour))
	older := sampleReview("rev-1", base)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reviews`).
		WithArgs("seller-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery("FROM reviews WHERE seller_id = .+ ORDER BY created_at DESC").
		WithArgs("seller-1", 2, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "creator_id", "seller_id", "rating", "title", "details", "created_at"}).
			AddRow(newer.ID, newer.CreatorID, newer.SellerID, newer.Rating, newer.Title, newer.Details, newer.CreatedAt).
			AddRow(older.ID, older.CreatorID, older.SellerID, older.Rating, older.Title, older.Details, older.CreatedAt))

	reviews, total, err := repo.ListBySeller(context.Background(), "seller-1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, "rev-2", reviews[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListBySeller_CountError(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reviews`).
		WithArgs("seller-1").
		WillReturnError(errors.New("boom"))

	_, _, err := repo.ListBySeller(context.Background(), "seller-1", 0, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count reviews")
}
