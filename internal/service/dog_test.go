package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository/memory"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/storage"
	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/logger"
)

func newTestDogService() (*DogService, *memory.Store) {
	store := memory.NewStore()
	svc := NewDogService(store, storage.NewMemory(), quietPublisher(), logger.Discard())
	svc.now = func() time.Time { return fixtureTime }
	return svc, store
}

func lulu() domain.DogBuilder {
	return domain.DogBuilder{
		About:            "Lulu is a cute poodle",
		Breed:            "Poodle",
		Cost:             22599,
		Gender:           domain.GenderFemale,
		ImageURL:         "https://example.com/lulu.jpg",
		Name:             "Lulu",
		RelativeBirthday: 15_552_000,
		RelativeCreation: 14_400,
	}
}

func TestCreateDog_SnapshotsSellerAverage(t *testing.T) {
	svc, store := newTestDogService()
	addUser(t, store, "vicki", "vicki@example.com", domain.Rated(7, 5.0))

	dog, err := svc.CreateDog(context.Background(), "vicki", lulu())
	require.NoError(t, err)
	assert.Equal(t, 5.0, dog.BreederRating)
	assert.Equal(t, fixtureTime.Add(-4*time.Hour), dog.CreatedAt)
	assert.Equal(t, fixtureTime.Add(-180*24*time.Hour), dog.Birthday)

	stored := getDog(t, store, dog.ID)
	assert.Equal(t, "vicki", stored.SellerID)
}

func TestCreateDog_NewSellerGetsDefault(t *testing.T) {
	svc, store := newTestDogService()
	addUser(t, store, "new", "new@example.com", domain.NoReviews())

	dog, err := svc.CreateDog(context.Background(), "new", lulu())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultReviewValue, dog.BreederRating)
}

func TestCreateDog_ThenReviewUpdatesIt(t *testing.T) {
	svc, store := newTestDogService()
	addUser(t, store, "seller", "seller@example.com", domain.NoReviews())
	addUser(t, store, "buyer", "buyer@example.com", domain.NoReviews())
	reviews := newTestReviewService(store, quietPublisher())

	dog, err := svc.CreateDog(context.Background(), "seller", lulu())
	require.NoError(t, err)
	_, err = reviews.RecordReview(context.Background(), review("seller", "buyer", 2.0))
	require.NoError(t, err)

	assert.Equal(t, 2.0, getDog(t, store, dog.ID).BreederRating)
}

func TestCreateDog_ConcurrentWithReviewsStaysConsistent(t *testing.T) {
	svc, store := newTestDogService()
	addUser(t, store, "seller", "seller@example.com", domain.NoReviews())
	addUser(t, store, "buyer", "buyer@example.com", domain.NoReviews())
	reviews := newTestReviewService(store, quietPublisher())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.CreateDog(context.Background(), "seller", lulu())
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := reviews.RecordReview(context.Background(), review("seller", "buyer", 1.0+float64(i%5)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seller := getUser(t, store, "seller")
	dogs, err := store.Dogs().ListBySeller(context.Background(), "seller")
	require.NoError(t, err)
	require.Len(t, dogs, 10)
	for _, d := range dogs {
		assert.InDelta(t, seller.Rating.Average(), d.BreederRating, tolerance)
	}
}

func TestCreateDog_Validation(t *testing.T) {
	svc, store := newTestDogService()
	addUser(t, store, "s", "s@example.com", domain.NoReviews())

	bad := []func(*domain.DogBuilder){
		func(b *domain.DogBuilder) { b.Name = " " },
		func(b *domain.DogBuilder) { b.Cost = -1 },
		func(b *domain.DogBuilder) { b.Gender = "unknown" },
		func(b *domain.DogBuilder) { b.RelativeBirthday = -5 },
	}
	for _, mutate := range bad {
		b := lulu()
		mutate(&b)
		_, err := svc.CreateDog(context.Background(), "s", b)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	}
}

func TestCreateDog_UnknownSeller(t *testing.T) {
	svc, _ := newTestDogService()
	_, err := svc.CreateDog(context.Background(), "ghost", lulu())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListAndGetDogs(t *testing.T) {
	svc, store := newTestDogService()
	seller := addUser(t, store, "s", "s@example.com", domain.NoReviews())
	addDog(t, store, "later", seller, time.Hour)
	addDog(t, store, "earlier", seller, -time.Hour)

	dogs, err := svc.ListDogs(context.Background())
	require.NoError(t, err)
	require.Len(t, dogs, 2)
	assert.Equal(t, "earlier", dogs[0].ID)

	d, err := svc.GetDog(context.Background(), "later")
	require.NoError(t, err)
	assert.Equal(t, "later", d.Name)

	owner, err := svc.GetDogSeller(context.Background(), "later")
	require.NoError(t, err)
	assert.Equal(t, "s", owner.ID)

	_, err = svc.GetDog(context.Background(), "nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	_, err = svc.GetDogSeller(context.Background(), "nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUploadDogImage(t *testing.T) {
	svc, store := newTestDogService()
	seller := addUser(t, store, "s", "s@example.com", domain.NoReviews())
	addUser(t, store, "intruder", "i@example.com", domain.NoReviews())
	addDog(t, store, "d1", seller, 0)

	_, err := svc.UploadDogImage(context.Background(), "intruder", "d1", domain.Image{Data: []byte("x"), Extension: "png"})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = svc.UploadDogImage(context.Background(), "s", "d1", domain.Image{Data: []byte("x")})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	dog, err := svc.UploadDogImage(context.Background(), "s", "d1", domain.Image{Data: []byte("x"), Extension: "png"})
	require.NoError(t, err)
	assert.Contains(t, dog.ImageURL, "users/s/images/")
	assert.Equal(t, dog.ImageURL, getDog(t, store, "d1").ImageURL)
}
