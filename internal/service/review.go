package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/pagination"
)

// RecordReviewInput holds the parameters for reviewing a seller.
type RecordReviewInput struct {
	SellerID   string
	ReviewerID string
	Rating     float64
	Title      string
	Details    string
}

// SellerReviews is one page of a seller's reviews with the seller's rating.
type SellerReviews struct {
	Summary domain.ReviewSummary             `json:"summary"`
	Reviews pagination.Result[domain.Review] `json:"reviews"`
}

// ReviewService records reviews and keeps seller ratings, and the breeder
// rating of every listing they own, consistent with them.
type ReviewService struct {
	store  repository.Store
	events EventPublisher
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store repository.Store, events EventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, events: events, logger: logger}
}

// RecordReview stores a review of a seller. In one transaction it folds the
// rating into the seller's running mean, copies the new mean onto every
// listing of the seller and inserts the review. Either all of it is
// committed or none of it is.
func (s *ReviewService) RecordReview(ctx context.Context, in RecordReviewInput) (*domain.Review, error) {
	start := time.Now()

	if !domain.ValidRating(in.Rating) {
		reviewFailures.WithLabelValues("INVALID_INPUT").Inc()
		return nil, apperrors.InvalidInput("rating must be between 1.0 and 5.0")
	}
	if in.SellerID == in.ReviewerID {
		reviewFailures.WithLabelValues("INVALID_INPUT").Inc()
		return nil, apperrors.InvalidInput("sellers cannot review themselves")
	}

	review := &domain.Review{
		ID:        uuid.NewString(),
		CreatorID: in.ReviewerID,
		SellerID:  in.SellerID,
		Rating:    in.Rating,
		Title:     in.Title,
		Details:   in.Details,
		CreatedAt: time.Now().UTC(),
	}

	var (
		rating   domain.SellerRating
		listings int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		seller, err := tx.Users().GetByIDForUpdate(ctx, in.SellerID)
		if err != nil {
			return notFound(err, "user", in.SellerID)
		}

		rating = seller.Rating.Add(in.Rating)
		if err := tx.Users().UpdateRating(ctx, seller.ID, rating); err != nil {
			return err
		}

		dogs, err := tx.Dogs().ListBySeller(ctx, seller.ID)
		if err != nil {
			return err
		}
		for _, dog := range dogs {
			if err := tx.Dogs().UpdateBreederRating(ctx, dog.ID, rating.Average()); err != nil {
				return err
			}
		}
		listings = len(dogs)

		return tx.Reviews().Create(ctx, review)
	})
	if err != nil {
		err = storeError("record review", err)
		reviewFailures.WithLabelValues(errorCode(err)).Inc()
		return nil, err
	}

	reviewsRecorded.Inc()
	cascadeListings.Observe(float64(listings))
	reviewDuration.Observe(time.Since(start).Seconds())

	if err := s.events.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.events.PublishSellerRatingUpdated(ctx, in.SellerID, rating, listings); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish seller.rating_updated event",
			slog.String("seller_id", in.SellerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review recorded",
		slog.String("review_id", review.ID),
		slog.String("seller_id", in.SellerID),
		slog.Int("review_count", rating.Count()),
		slog.Float64("review_rating_average", rating.Average()),
		slog.Int("listings_updated", listings),
	)

	return review, nil
}

// ListSellerReviews returns a page of a seller's reviews, newest first.
func (s *ReviewService) ListSellerReviews(ctx context.Context, sellerID string, page pagination.Params) (*SellerReviews, error) {
	seller, err := s.store.Users().GetByID(ctx, sellerID)
	if err != nil {
		return nil, storeError("get seller", notFound(err, "user", sellerID))
	}

	reviews, total, err := s.store.Reviews().ListBySeller(ctx, sellerID, page.Offset(), page.PerPage)
	if err != nil {
		return nil, storeError("list reviews", err)
	}

	return &SellerReviews{
		Summary: domain.SummaryOf(seller.Rating),
		Reviews: pagination.NewResult(reviews, total, page),
	}, nil
}

func errorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}
