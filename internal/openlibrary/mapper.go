package openlibrary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/bookfinder/internal/entities"
)

const coversBaseURL = "https://covers.openlibrary.org/b"

// ToBook maps a search result onto the domain book.
func (d SearchDoc) ToBook() entities.Book {
	book := entities.Book{
		ID:            WorkID(d.Key),
		Title:         d.Title,
		ImageURL:      CoverURL(d.CoverID, d.CoverEditionKey),
		Authors:       orEmpty(d.AuthorNames),
		Languages:     orEmpty(d.Languages),
		AverageRating: d.RatingsAverage,
		RatingCount:   d.RatingsCount,
		NumPages:      d.NumberOfPagesMedian,
		NumEditions:   d.EditionCount,
	}
	if d.FirstPublishYear != nil {
		year := strconv.Itoa(*d.FirstPublishYear)
		book.FirstPublishYear = &year
	}
	return book
}

// WorkID strips the "/works/" prefix from a work key.
func WorkID(key string) string {
	return strings.TrimPrefix(key, "/works/")
}

// CoverURL builds a large cover URL, preferring the numeric cover id over the
// cover edition key. Returns "" when neither is known.
func CoverURL(coverID int64, coverEditionKey string) string {
	switch {
	case coverID > 0:
		return fmt.Sprintf("%s/id/%d-L.jpg", coversBaseURL, coverID)
	case coverEditionKey != "":
		return fmt.Sprintf("%s/olid/%s-L.jpg", coversBaseURL, coverEditionKey)
	default:
		return ""
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
