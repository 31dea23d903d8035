package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository in memory.
type ReviewRepository struct {
	b backend
}

func (r *ReviewRepository) Create(_ context.Context, rv *domain.Review) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.users[rv.CreatorID]; !ok {
			return apperrors.NotFound("user", rv.CreatorID)
		}
		if _, ok := s.users[rv.SellerID]; !ok {
			return apperrors.NotFound("user", rv.SellerID)
		}
		if !domain.ValidRating(rv.Rating) {
			return apperrors.InvalidInput("rating must be between 1.0 and 5.0")
		}
		s.reviews = append(s.reviews, *rv)
		return nil
	})
}

func (r *ReviewRepository) ListBySeller(_ context.Context, sellerID string, offset, limit int) ([]domain.Review, int, error) {
	var all []domain.Review
	_ = r.b.read(func(s *state) error {
		for _, rv := range s.reviews {
			if rv.SellerID == sellerID {
				all = append(all, rv)
			}
		}
		return nil
	})

	slices.SortFunc(all, func(a, b domain.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := len(all)
	offset = min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}
	return append([]domain.Review{}, all[offset:end]...), total, nil
}
