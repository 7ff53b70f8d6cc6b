// Package bookdetail holds the state of the book detail screen: the selected
// book, its fetched description and its favorite status.
package bookdetail

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/bookfinder/internal/dataerror"
	"github.com/mrlokans/bookfinder/internal/entities"
)

// Books is the book data the detail screen reads and writes.
type Books interface {
	GetBookDescription(ctx context.Context, id string) (*string, error)
	WatchIsFavorite(ctx context.Context, id string) <-chan bool
	MarkAsFavorite(ctx context.Context, book entities.Book) error
	DeleteFromFavorites(ctx context.Context, id string) error
}

// State is a snapshot of the detail screen.
type State struct {
	IsLoading     bool           `json:"is_loading"`
	IsFavorite    bool           `json:"is_favorite"`
	Book          *entities.Book `json:"book"`
	ErrorMessage  *string        `json:"error_message,omitempty"`
	NavigatedBack bool           `json:"navigated_back"`
}

// Model is the state holder of one detail screen.
type Model struct {
	books  Books
	bookID string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       State
	subscribers map[int]chan State
	nextSubID   int
	lastActive  time.Time
}

// New opens the detail screen for book. The description fetch and the
// favorite status observation start right away.
func New(books Books, book entities.Book) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		books:  books,
		bookID: book.ID,
		ctx:    ctx,
		cancel: cancel,
		state: State{
			IsLoading: true,
			Book:      &book,
		},
		subscribers: make(map[int]chan State),
		lastActive:  time.Now(),
	}

	m.wg.Add(2)
	go m.fetchDescription()
	go m.observeFavoriteStatus()

	return m
}

// BookID returns the id the screen was opened for.
func (m *Model) BookID() string {
	return m.bookID
}

// Dispatch applies an action. FavoriteClicked writes to the store before
// returning.
func (m *Model) Dispatch(action Action) {
	m.touch()

	switch a := action.(type) {
	case SelectedBookChanged:
		m.update(func(s *State) {
			book := a.Book
			if (book.Description == nil || *book.Description == "") && s.Book != nil && s.Book.ID == book.ID {
				book.Description = s.Book.Description
			}
			s.Book = &book
		})
	case FavoriteClicked:
		m.toggleFavorite()
	case BookClicked:
		m.update(func(s *State) {
			s.NavigatedBack = true
		})
	}
}

// State returns the current state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActive = time.Now()
	return m.state
}

// Subscribe returns a stream of states, starting with the current one. A
// slow reader only sees the latest state. Call the returned func to stop.
func (m *Model) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	ch := make(chan State, 1)
	ch <- m.state
	if m.ctx.Err() != nil {
		close(ch)
		return ch, func() {}
	}
	m.subscribers[id] = ch
	m.lastActive = time.Now()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.lastActive = time.Now()
			if _, ok := m.subscribers[id]; ok {
				delete(m.subscribers, id)
				close(ch)
			}
		})
	}
}

// LastActive returns when an action was last dispatched or the state was last
// read. A model with a subscriber attached counts as active now.
func (m *Model) LastActive() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.subscribers) > 0 {
		return time.Now()
	}
	return m.lastActive
}

// Close stops the background work and closes all subscriber streams.
func (m *Model) Close() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.subscribers {
		delete(m.subscribers, id)
		close(ch)
	}
}

func (m *Model) touch() {
	m.mu.Lock()
	m.lastActive = time.Now()
	m.mu.Unlock()
}

func (m *Model) update(fn func(s *State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
	m.publishLocked()
}

func (m *Model) publishLocked() {
	for _, ch := range m.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- m.state
	}
}

func (m *Model) fetchDescription() {
	defer m.wg.Done()

	desc, err := m.books.GetBookDescription(m.ctx, m.bookID)
	if err != nil {
		if errors.Is(err, context.Canceled) || m.ctx.Err() != nil {
			return
		}
		log.Printf("[DETAIL] Failed to fetch description for %s: %v", m.bookID, err)
		msg := dataerror.Message(err)
		m.update(func(s *State) {
			s.IsLoading = false
			s.ErrorMessage = &msg
		})
		return
	}

	m.update(func(s *State) {
		s.IsLoading = false
		if s.Book != nil && desc != nil {
			book := *s.Book
			book.Description = desc
			s.Book = &book
		}
	})
}

func (m *Model) observeFavoriteStatus() {
	defer m.wg.Done()

	for isFavorite := range m.books.WatchIsFavorite(m.ctx, m.bookID) {
		m.update(func(s *State) {
			s.IsFavorite = isFavorite
		})
	}
}

func (m *Model) toggleFavorite() {
	m.mu.Lock()
	isFavorite := m.state.IsFavorite
	var book entities.Book
	if m.state.Book != nil {
		book = *m.state.Book
	}
	m.mu.Unlock()

	if book.ID == "" {
		return
	}

	var err error
	if isFavorite {
		err = m.books.DeleteFromFavorites(m.ctx, book.ID)
	} else {
		err = m.books.MarkAsFavorite(m.ctx, book)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[DETAIL] Failed to toggle favorite %s: %v", book.ID, err)
		msg := dataerror.Message(err)
		m.update(func(s *State) {
			s.ErrorMessage = &msg
		})
		return
	}

	m.update(func(s *State) {
		s.IsFavorite = !isFavorite
		s.ErrorMessage = nil
	})
}
