package bookdetail

import (
	"encoding/json"
	"fmt"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// Action is a user action on the detail screen.
type Action interface {
	isAction()
}

// SelectedBookChanged replaces the shown book.
type SelectedBookChanged struct {
	Book entities.Book
}

// FavoriteClicked toggles the favorite status of the shown book.
type FavoriteClicked struct{}

// BookClicked marks that the user navigated back.
type BookClicked struct{}

func (SelectedBookChanged) isAction() {}
func (FavoriteClicked) isAction()     {}
func (BookClicked) isAction()         {}

// ActionRequest is the wire form of an action:
//
//	{"type": "selected_book_changed", "book": {...}}
//	{"type": "favorite_clicked"}
//	{"type": "book_clicked"}
type ActionRequest struct {
	Type string          `json:"type" binding:"required"`
	Book json.RawMessage `json:"book"`
}

// Action converts the request into an action.
func (r ActionRequest) Action() (Action, error) {
	switch r.Type {
	case "selected_book_changed":
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
		return SelectedBookChanged{Book: book}, nil
	case "favorite_clicked":
		return FavoriteClicked{}, nil
	case "book_clicked":
		return BookClicked{}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", r.Type)
	}
}
