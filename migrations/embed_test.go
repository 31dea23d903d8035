package migrations

import (
	"io/fs"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
)

func TestFS_ContainsOrderedMigrations(t *testing.T) {
	files, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"001_create_users.up.sql",
		"002_create_dogs.up.sql",
		"003_create_reviews.up.sql",
	}, files)
}

func TestUsers_RatingDefaultMatchesNoReviews(t *testing.T) {
	raw, err := fs.ReadFile(FS, "001_create_users.up.sql")
	require.NoError(t, err)

	m := regexp.MustCompile(`review_rating_average\s+DOUBLE PRECISION NOT NULL DEFAULT ([0-9.]+)`).FindSubmatch(raw)
	require.Len(t, m, 2)
	def, err := strconv.ParseFloat(string(m[1]), 64)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultReviewValue, def)
	assert.Equal(t, domain.NoReviews().Average(), def)
}
