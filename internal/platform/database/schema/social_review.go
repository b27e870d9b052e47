package schema

// SocialReviewTable represents the 'reviews' table
type SocialReviewTable struct {
	Table      string
	ID         string
	BookID     string
	BookTitle  string
	Author     string
	Genre      string
	Rating     string
	ReviewText string
	CreatedAt  string
}

// SocialReview is the schema definition for reviews
var SocialReview = SocialReviewTable{
	Table:      "reviews",
	ID:         "id",
	BookID:     "book_id",
	BookTitle:  "book_title",
	Author:     "author",
	Genre:      "genre",
	Rating:     "rating",
	ReviewText: "review_text",
	CreatedAt:  "created_at",
}
