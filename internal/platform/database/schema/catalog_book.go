package schema

// CatalogBookTable represents the 'books' table (catalog entries).
type CatalogBookTable struct {
	Table         string
	ID            string
	Title         string
	Author        string
	Genre         string
	RatingSum     string
	TotalReviews  string
	AverageRating string
	CreatedAt     string
	UpdatedAt     string

	// TitleAuthorKey is the unique constraint over (title, author).
	TitleAuthorKey string
}

// CatalogBook is the schema definition for books
var CatalogBook = CatalogBookTable{
	Table:          "books",
	ID:             "id",
	Title:          "title",
	Author:         "author",
	Genre:          "genre",
	RatingSum:      "rating_sum",
	TotalReviews:   "total_reviews",
	AverageRating:  "average_rating",
	CreatedAt:      "created_at",
	UpdatedAt:      "updated_at",
	TitleAuthorKey: "books_title_author_key",
}

func (t CatalogBookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Author, t.Genre, t.AverageRating, t.TotalReviews, t.CreatedAt,
	}
}
