package domain

import (
	"strings"
	"time"
)

// User is a registered account. Every user can sell dogs and receive reviews.
type User struct {
	ID              string
	Email           string
	Name            string
	About           *string
	PasswordHash    string
	ProfileImageURL *string
	Rating          SellerRating
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizeEmail trims and lowercases an address. Uniqueness and lookups
// always compare normalized addresses.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Image is an uploaded image payload.
type Image struct {
	Data      []byte
	Extension string
}

// UserUpdate is a sparse update: nil fields are left untouched, while a
// non-nil pointer to "" is applied as given.
type UserUpdate struct {
	About        *string
	Email        *string
	Name         *string
	Password     *string
	ProfileImage *Image
}

// IsEmpty reports whether the update carries no fields.
func (u UserUpdate) IsEmpty() bool {
	return u.About == nil && u.Email == nil && u.Name == nil && u.Password == nil && u.ProfileImage == nil
}
