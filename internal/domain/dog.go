package domain

import (
	"fmt"
	"strings"
	"time"
)

// Gender of a dog.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts "male" or "female" in any case.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g, nil
	default:
		return "", fmt.Errorf("unknown gender %q", s)
	}
}

// Dog is a listing. BreederRating mirrors the seller's average and is only
// changed by the review cascade.
type Dog struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	Name          string    `json:"name"`
	About         string    `json:"about"`
	Breed         string    `json:"breed"`
	BreederRating float64   `json:"breeder_rating"`
	Cost          int64     `json:"cost"`
	Gender        Gender    `json:"gender"`
	ImageURL      string    `json:"image_url"`
	Birthday      time.Time `json:"birthday"`
	CreatedAt     time.Time `json:"created"`
	UpdatedAt     time.Time `json:"-"`
}

// DogBuilder carries the fields a seller supplies for a new listing.
// Relative values are seconds before the moment of creation.
type DogBuilder struct {
	About            string
	Breed            string
	Cost             int64
	Gender           Gender
	ImageURL         string
	Name             string
	RelativeBirthday float64
	RelativeCreation float64
}

// Build materializes a listing for seller at now, snapshotting rating.
func (b DogBuilder) Build(id string, seller *User, now time.Time) *Dog {
	return &Dog{
		ID:            id,
		SellerID:      seller.ID,
		Name:          b.Name,
		About:         b.About,
		Breed:         b.Breed,
		BreederRating: seller.Rating.Average(),
		Cost:          b.Cost,
		Gender:        b.Gender,
		ImageURL:      b.ImageURL,
		Birthday:      now.Add(-secondsToDuration(b.RelativeBirthday)),
		CreatedAt:     now.Add(-secondsToDuration(b.RelativeCreation)),
		UpdatedAt:     now,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
