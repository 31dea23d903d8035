package domain

import "time"

// Review is an immutable rating of a seller by another user.
type Review struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	SellerID  string    `json:"seller_id"`
	Rating    float64   `json:"rating"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewSummary is the rating aggregate shown next to a seller's reviews.
type ReviewSummary struct {
	ReviewCount         int     `json:"review_count"`
	ReviewRatingAverage float64 `json:"review_rating_average"`
}

// SummaryOf projects a SellerRating for display.
func SummaryOf(r SellerRating) ReviewSummary {
	return ReviewSummary{ReviewCount: r.Count(), ReviewRatingAverage: r.Average()}
}
