package domain

import "math"

// Review rating bounds. A seller without reviews reports DefaultReviewValue.
const (
	MinReviewValue     = 1.0
	MaxReviewValue     = 5.0
	DefaultReviewValue = MaxReviewValue - 0.5
)

// SellerRating is a seller's review aggregate. The zero value is the
// NoReviews state; Rated states always have a positive count and hold the
// running mean of every rating received.
type SellerRating struct {
	count   int
	average float64
}

// NoReviews returns the rating of a seller nobody has reviewed yet.
func NoReviews() SellerRating { return SellerRating{} }

// Rated rebuilds a stored aggregate. A non-positive count yields NoReviews
// and the stored average is ignored.
func Rated(count int, average float64) SellerRating {
	if count <= 0 {
		return SellerRating{}
	}
	return SellerRating{count: count, average: average}
}

// HasReviews reports whether the rating is in the Rated state.
func (r SellerRating) HasReviews() bool { return r.count > 0 }

// Count is the number of reviews received.
func (r SellerRating) Count() int { return r.count }

// Average is the mean rating, or DefaultReviewValue with no reviews.
func (r SellerRating) Average() float64 {
	if r.count == 0 {
		return DefaultReviewValue
	}
	return r.average
}

// Add folds rating into the aggregate with the incremental mean
// avg += (rating - avg) / n. The first review starts from zero so the
// default value never dilutes it. The caller validates the rating.
func (r SellerRating) Add(rating float64) SellerRating {
	avg := r.average
	if r.count == 0 {
		avg = 0
	}
	n := r.count + 1
	avg += (rating - avg) / float64(n)
	return SellerRating{count: n, average: avg}
}

// ValidRating reports whether rating lies within [MinReviewValue, MaxReviewValue].
func ValidRating(rating float64) bool {
	return !math.IsNaN(rating) && rating >= MinReviewValue && rating <= MaxReviewValue
}
