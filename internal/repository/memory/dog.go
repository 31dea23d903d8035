package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// DogRepository implements repository.DogRepository in memory.
type DogRepository struct {
	b backend
}

func (r *DogRepository) Create(_ context.Context, d *domain.Dog) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.users[d.SellerID]; !ok {
			return apperrors.NotFound("user", d.SellerID)
		}
		if _, ok := s.dogs[d.ID]; ok {
			return apperrors.AlreadyExists("dog", "id", d.ID)
		}
		s.dogs[d.ID] = *d
		return nil
	})
}

func (r *DogRepository) GetByID(_ context.Context, id string) (*domain.Dog, error) {
	var out *domain.Dog
	err := r.b.read(func(s *state) error {
		d, ok := s.dogs[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &d
		return nil
	})
	return out, err
}

func (r *DogRepository) List(_ context.Context) ([]domain.Dog, error) {
	return r.collect(func(domain.Dog) bool { return true })
}

func (r *DogRepository) ListBySeller(_ context.Context, sellerID string) ([]domain.Dog, error) {
	return r.collect(func(d domain.Dog) bool { return d.SellerID == sellerID })
}

func (r *DogRepository) UpdateBreederRating(_ context.Context, id string, rating float64) error {
	return r.update(id, func(d *domain.Dog) { d.BreederRating = rating })
}

func (r *DogRepository) UpdateImageURL(_ context.Context, id, url string) error {
	return r.update(id, func(d *domain.Dog) { d.ImageURL = url })
}

func (r *DogRepository) update(id string, apply func(*domain.Dog)) error {
	return r.b.write(func(s *state) error {
		d, ok := s.dogs[id]
		if !ok {
			return apperrors.NotFound("dog", id)
		}
		apply(&d)
		d.UpdatedAt = time.Now().UTC()
		s.dogs[id] = d
		return nil
	})
}

func (r *DogRepository) collect(keep func(domain.Dog) bool) ([]domain.Dog, error) {
	dogs := []domain.Dog{}
	err := r.b.read(func(s *state) error {
		for _, d := range s.dogs {
			if keep(d) {
				dogs = append(dogs, d)
			}
		}
		return nil
	})
	slices.SortFunc(dogs, func(a, b domain.Dog) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return dogs, err
}
