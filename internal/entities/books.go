package entities

import (
	"time"
)

// Book is a work as shown in search results and on the detail screen.
// Optional fields are nil when OpenLibrary has no value for them.
type Book struct {
	ID               string   `json:"id"` // OpenLibrary work id, e.g. "OL45804W"
	Title            string   `json:"title"`
	ImageURL         string   `json:"image_url"`
	Authors          []string `json:"authors"`
	Description      *string  `json:"description,omitempty"`
	Languages        []string `json:"languages"`
	FirstPublishYear *string  `json:"first_publish_year,omitempty"`
	AverageRating    *float64 `json:"average_rating,omitempty"`
	RatingCount      *int     `json:"rating_count,omitempty"`
	NumPages         *int     `json:"num_pages,omitempty"`
	NumEditions      int      `json:"num_editions"`
}

// FavoriteBook is the stored form of a favorite. List columns are kept as
// JSON text.
type FavoriteBook struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	Title            string    `gorm:"size:512" json:"title"`
	Description      *string   `gorm:"type:text" json:"description,omitempty"`
	ImageURL         string    `gorm:"size:2048" json:"image_url"`
	Languages        []string  `gorm:"serializer:json;type:text" json:"languages"`
	Authors          []string  `gorm:"serializer:json;type:text" json:"authors"`
	FirstPublishYear *string   `gorm:"size:16" json:"first_publish_year,omitempty"`
	RatingsAverage   *float64  `json:"ratings_average,omitempty"`
	RatingsCount     *int      `json:"ratings_count,omitempty"`
	NumPagesMedian   *int      `json:"num_pages_median,omitempty"`
	NumEditions      int       `json:"num_editions"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (FavoriteBook) TableName() string {
	return "favorite_books"
}

// FavoriteFromBook converts a book into its stored form.
func FavoriteFromBook(b Book) FavoriteBook {
	return FavoriteBook{
		ID:               b.ID,
		Title:            b.Title,
		Description:      b.Description,
		ImageURL:         b.ImageURL,
		Languages:        nonNil(b.Languages),
		Authors:          nonNil(b.Authors),
		FirstPublishYear: b.FirstPublishYear,
		RatingsAverage:   b.AverageRating,
		RatingsCount:     b.RatingCount,
		NumPagesMedian:   b.NumPages,
		NumEditions:      b.NumEditions,
	}
}

// ToBook converts a stored favorite back into a book.
func (f FavoriteBook) ToBook() Book {
	return Book{
		ID:               f.ID,
		Title:            f.Title,
		ImageURL:         f.ImageURL,
		Authors:          nonNil(f.Authors),
		Description:      f.Description,
		Languages:        nonNil(f.Languages),
		FirstPublishYear: f.FirstPublishYear,
		AverageRating:    f.RatingsAverage,
		RatingCount:      f.RatingsCount,
		NumPages:         f.NumPagesMedian,
		NumEditions:      f.NumEditions,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
