package event

import (
	"context"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
)

// Noop discards every event. It is used when no Kafka brokers are configured.
type Noop struct{}

func (Noop) PublishReviewCreated(context.Context, *domain.Review) error { return nil }

func (Noop) PublishSellerRatingUpdated(context.Context, string, domain.SellerRating, int) error {
	return nil
}

func (Noop) PublishUserRegistered(context.Context, *domain.User) error { return nil }

func (Noop) PublishUserUpdated(context.Context, *domain.User) error { return nil }

func (Noop) PublishDogCreated(context.Context, *domain.Dog) error { return nil }
