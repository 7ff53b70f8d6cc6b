package booklist

import (
	"encoding/json"
	"fmt"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// Intent is a user action on the search screen.
type Intent interface {
	isIntent()
}

// QueryChanged is sent on every edit of the search field.
type QueryChanged struct {
	Query string
}

// TabSelected switches between search results and favorites.
type TabSelected struct {
	Index int
}

// BookClicked records the book the user opened.
type BookClicked struct {
	Book entities.Book
}

func (QueryChanged) isIntent() {}
func (TabSelected) isIntent()  {}
func (BookClicked) isIntent()  {}

// IntentRequest is the wire form of an intent:
//
//	{"type": "query_changed", "query": "dune"}
//	{"type": "tab_selected", "index": 1}
//	{"type": "book_clicked", "book": {...}}
type IntentRequest struct {
	Type  string          `json:"type" binding:"required"`
	Query *string         `json:"query"`
	Index *int            `json:"index"`
	Book  json.RawMessage `json:"book"`
}

// Intent converts the request into an intent.
func (r IntentRequest) Intent() (Intent, error) {
	switch r.Type {
	case "query_changed":
		if r.Query == nil {
			return nil, fmt.Errorf("query is required")
		}
		return QueryChanged{Query: *r.Query}, nil
	case "tab_selected":
		if r.Index == nil {
			return nil, fmt.Errorf("index is required")
		}
		if *r.Index != TabSearchResults && *r.Index != TabFavorites {
			return nil, fmt.Errorf("unknown tab index %d", *r.Index)
		}
		return TabSelected{Index: *r.Index}, nil
	case "book_clicked":
		if len(r.Book) == 0 {
			return nil, fmt.Errorf("book is required")
		}
		var book entities.Book
		if err := json.Unmarshal(r.Book, &book); err != nil {
			return nil, fmt.Errorf("invalid book: %w", err)
		}
		if book.ID == "" {
			return nil, fmt.Errorf("book id is required")
		}
		return BookClicked{Book: book}, nil
	default:
		return nil, fmt.Errorf("unknown intent type %q", r.Type)
	}
}
