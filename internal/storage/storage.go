// Package storage persists uploaded images and returns the locator clients
// use to fetch them.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
)

// Categories of stored blobs.
const (
	CategoryProfileImages = "profile-images"
	CategoryDogImages     = "images"
)

// BlobStore stores bytes for an owner and returns a locator.
type BlobStore interface {
	Store(ctx context.Context, ownerID, category string, data []byte, ext string) (string, error)
}

// ErrMissingExtension is returned when a blob has no file extension.
var ErrMissingExtension = apperrors.InvalidInput("Image is missing a path extension")

// imageExtensions are the only extensions accepted. Stored files are served
// from the API origin, so markup types such as html or svg stay out.
var imageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// objectKey validates the inputs and builds
// users/<ownerID>/<category>/<uuid>.<ext>.
func objectKey(ownerID, category, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return "", ErrMissingExtension
	}
	if !imageExtensions[ext] {
		return "", apperrors.InvalidInput(fmt.Sprintf("unsupported image extension %q", ext))
	}
	if !isSegment(ownerID) || !isSegment(category) {
		return "", apperrors.InvalidInput("invalid blob owner or category")
	}
	return path.Join("users", ownerID, category, uuid.NewString()+"."+ext), nil
}

// isSegment accepts letters, digits, '-' and '_' only.
func isSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
