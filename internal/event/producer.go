package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	pkgkafka "github.com/kodecocodes/iTDD-DogPatchServer/pkg/kafka"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/logger"
)

// Kafka topics for marketplace domain events.
var (
	TopicReviewCreated       = pkgkafka.Topic("review", "created")
	TopicSellerRatingUpdated = pkgkafka.Topic("seller", "rating_updated")
	TopicUserRegistered      = pkgkafka.Topic("user", "registered")
	TopicUserUpdated         = pkgkafka.Topic("user", "updated")
	TopicDogCreated          = pkgkafka.Topic("dog", "created")
)

// Aggregate types.
const (
	AggregateReview = "review"
	AggregateSeller = "seller"
	AggregateUser   = "user"
	AggregateDog    = "dog"
)

// Source identifies events written by this service.
const Source = "dogpatch-server"

// MetadataActorID holds the authenticated user that caused the event.
const MetadataActorID = "actor_id"

// ReviewCreatedData is the payload of review.created.
type ReviewCreatedData struct {
	ID        string  `json:"id"`
	SellerID  string  `json:"seller_id"`
	CreatorID string  `json:"creator_id"`
	Rating    float64 `json:"rating"`
	Title     string  `json:"title"`
}

// SellerRatingUpdatedData is the payload of seller.rating_updated.
type SellerRatingUpdatedData struct {
	SellerID            string  `json:"seller_id"`
	ReviewCount         int     `json:"review_count"`
	ReviewRatingAverage float64 `json:"review_rating_average"`
	ListingsUpdated     int     `json:"listings_updated"`
}

// UserRegisteredData is the payload of user.registered.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserUpdatedData is the payload of user.updated. It never carries the
// password hash.
type UserUpdatedData struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// DogCreatedData is the payload of dog.created.
type DogCreatedData struct {
	ID            string  `json:"id"`
	SellerID      string  `json:"seller_id"`
	Name          string  `json:"name"`
	Breed         string  `json:"breed"`
	Cost          int64   `json:"cost"`
	BreederRating float64 `json:"breeder_rating"`
}

// Producer publishes marketplace events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:        review.ID,
		SellerID:  review.SellerID,
		CreatorID: review.CreatorID,
		Rating:    review.Rating,
		Title:     review.Title,
	}
	return p.publish(ctx, TopicReviewCreated, review.SellerID, AggregateReview, data)
}

// PublishSellerRatingUpdated publishes a seller.rating_updated event.
func (p *Producer) PublishSellerRatingUpdated(ctx context.Context, sellerID string, rating domain.SellerRating, listings int) error {
	data := SellerRatingUpdatedData{
		SellerID:            sellerID,
		ReviewCount:         rating.Count(),
		ReviewRatingAverage: rating.Average(),
		ListingsUpdated:     listings,
	}
	return p.publish(ctx, TopicSellerRatingUpdated, sellerID, AggregateSeller, data)
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{ID: user.ID, Email: user.Email, Name: user.Name}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateUser, data)
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	data := UserUpdatedData{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		ProfileImageURL: user.ProfileImageURL,
	}
	return p.publish(ctx, TopicUserUpdated, user.ID, AggregateUser, data)
}

// PublishDogCreated publishes a dog.created event.
func (p *Producer) PublishDogCreated(ctx context.Context, dog *domain.Dog) error {
	data := DogCreatedData{
		ID:            dog.ID,
		SellerID:      dog.SellerID,
		Name:          dog.Name,
		Breed:         dog.Breed,
		Cost:          dog.Cost,
		BreederRating: dog.BreederRating,
	}
	return p.publish(ctx, TopicDogCreated, dog.ID, AggregateDog, data)
}

// publish keys every event by aggregateID so one seller's events keep their order.
func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}
	if actor := logger.UserIDFromContext(ctx); actor != "" {
		ev.WithMetadata(MetadataActorID, actor)
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
