package memory

import (
	"context"
	"time"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// UserRepository implements repository.UserRepository in memory.
type UserRepository struct {
	b backend
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	return r.b.write(func(s *state) error {
		if _, ok := s.users[u.ID]; ok {
			return apperrors.AlreadyExists("user", "id", u.ID)
		}
		if emailTaken(s, u.Email, "") {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		s.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.b.read(func(s *state) error {
		u, ok := s.users[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

// GetByIDForUpdate is GetByID; transactions are already serialized.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

// GetByIDForShare is GetByID; transactions are already serialized.
func (r *UserRepository) GetByIDForShare(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	want := domain.NormalizeEmail(email)
	var out *domain.User
	err := r.b.read(func(s *state) error {
		for _, u := range s.users {
			if domain.NormalizeEmail(u.Email) == want {
				out = &u
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
	return out, err
}

func (r *UserRepository) UpdateProfile(_ context.Context, u *domain.User) error {
	return r.b.write(func(s *state) error {
		cur, ok := s.users[u.ID]
		if !ok {
			return apperrors.NotFound("user", u.ID)
		}
		if emailTaken(s, u.Email, u.ID) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		u.UpdatedAt = time.Now().UTC()
		cur.Email = u.Email
		cur.Name = u.Name
		cur.About = u.About
		cur.PasswordHash = u.PasswordHash
		cur.ProfileImageURL = u.ProfileImageURL
		cur.UpdatedAt = u.UpdatedAt
		s.users[u.ID] = cur
		return nil
	})
}

func (r *UserRepository) UpdateRating(_ context.Context, id string, rating domain.SellerRating) error {
	return r.b.write(func(s *state) error {
		cur, ok := s.users[id]
		if !ok {
			return apperrors.NotFound("user", id)
		}
		cur.Rating = rating
		cur.UpdatedAt = time.Now().UTC()
		s.users[id] = cur
		return nil
	})
}

func emailTaken(s *state, email, exceptID string) bool {
	want := domain.NormalizeEmail(email)
	for id, u := range s.users {
		if id != exceptID && domain.NormalizeEmail(u.Email) == want {
			return true
		}
	}
	return false
}
