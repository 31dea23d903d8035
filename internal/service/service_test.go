package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository/memory"
)

var testHasher = Hasher{Cost: bcrypt.MinCost}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockPublisher) PublishSellerRatingUpdated(ctx context.Context, sellerID string, rating domain.SellerRating, listings int) error {
	return m.Called(ctx, sellerID, rating, listings).Error(0)
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishDogCreated(ctx context.Context, dog *domain.Dog) error {
	return m.Called(ctx, dog).Error(0)
}

// quietPublisher accepts every event.
func quietPublisher() *mockPublisher {
	p := new(mockPublisher)
	p.On("PublishReviewCreated", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishSellerRatingUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishUserRegistered", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishUserUpdated", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishDogCreated", mock.Anything, mock.Anything).Return(nil).Maybe()
	return p
}

// --- Fault injection ---

// faultyStore fails UpdateBreederRating for one listing inside transactions.
type faultyStore struct {
	*memory.Store
	failDogID string
}

func (f *faultyStore) WithinTx(ctx context.Context, fn func(context.Context, repository.Repositories) error) error {
	return f.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		return fn(ctx, faultyRepos{Repositories: tx, failDogID: f.failDogID})
	})
}

type faultyRepos struct {
	repository.Repositories
	failDogID string
}

func (r faultyRepos) Dogs() repository.DogRepository {
	return faultyDogs{DogRepository: r.Repositories.Dogs(), failID: r.failDogID}
}

type faultyDogs struct {
	repository.DogRepository
	failID string
}

var errDiskIO = errors.New("disk I/O error")

func (d faultyDogs) UpdateBreederRating(ctx context.Context, id string, rating float64) error {
	if id == d.failID {
		return errDiskIO
	}
	return d.DogRepository.UpdateBreederRating(ctx, id, rating)
}

// --- Fixtures ---

var fixtureTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func addUser(t *testing.T, store repository.Store, id, email string, rating domain.SellerRating) *domain.User {
	t.Helper()
	hash, err := testHasher.Hash("password")
	require.NoError(t, err)
	u := &domain.User{
		ID:           id,
		Email:        email,
		Name:         id,
		PasswordHash: hash,
		Rating:       rating,
		CreatedAt:    fixtureTime,
		UpdatedAt:    fixtureTime,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func addDog(t *testing.T, store repository.Store, id string, seller *domain.User, offset time.Duration) *domain.Dog {
	t.Helper()
	d := domain.DogBuilder{
		Name:   id,
		Breed:  "Poodle",
		Cost:   19999,
		Gender: domain.GenderMale,
	}.Build(id, seller, fixtureTime.Add(offset))
	require.NoError(t, store.Dogs().Create(context.Background(), d))
	return d
}
