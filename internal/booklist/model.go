// Package booklist holds the state of the book search screen and reduces
// user intents into it.
//
// Query changes are debounced and de-duplicated before a search starts. A new
// search cancels the one in flight, so results of a superseded search never
// reach the state.
package booklist

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookfinder/internal/dataerror"
	"github.com/mrlokans/bookfinder/internal/entities"
)

// Tab indexes of the search screen.
const (
	TabSearchResults = 0
	TabFavorites     = 1
)

// Books is the book data the search screen reads.
type Books interface {
	SearchBooks(ctx context.Context, query string) ([]entities.Book, error)
	WatchFavorites(ctx context.Context) <-chan []entities.Book
}

// State is a snapshot of the search screen.
type State struct {
	SearchQuery      string          `json:"search_query"`
	SearchResults    []entities.Book `json:"search_results"`
	FavoriteBooks    []entities.Book `json:"favorite_books"`
	IsLoading        bool            `json:"is_loading"`
	SelectedTabIndex int             `json:"selected_tab_index"`
	SelectedBookID   string          `json:"selected_book_id,omitempty"`
	ErrorMessage     *string         `json:"error_message,omitempty"`
}

// Config tunes the query pipeline.
type Config struct {
	Debounce       time.Duration
	MinQueryLength int
	InitialQuery   string
}

// Model is the state holder of one search screen.
type Model struct {
	books Books
	cfg   Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	queries chan string

	mu           sync.Mutex
	state        State
	cachedBooks  []entities.Book
	searchCancel context.CancelFunc
	searchSeq    uint64
	subscribers  map[int]chan State
	nextSubID    int
	lastActive   time.Time
}

// New creates a model and starts its query pipeline and favorites
// observation. Close releases both.
func New(books Books, cfg Config) *Model {
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.MinQueryLength < 1 {
		cfg.MinQueryLength = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		books:   books,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		queries: make(chan string),
		state: State{
			SearchQuery:   cfg.InitialQuery,
			SearchResults: []entities.Book{},
			FavoriteBooks: []entities.Book{},
			IsLoading:     strings.TrimSpace(cfg.InitialQuery) != "",
		},
		cachedBooks: []entities.Book{},
		subscribers: make(map[int]chan State),
		lastActive:  time.Now(),
	}

	m.wg.Add(2)
	go m.observeSearchQuery()
	go m.observeFavorites()

	return m
}

// Dispatch applies an intent.
func (m *Model) Dispatch(intent Intent) {
	m.touch()

	switch in := intent.(type) {
	case QueryChanged:
		changed := false
		m.update(func(s *State) {
			changed = s.SearchQuery != in.Query
			s.SearchQuery = in.Query
		})
		if !changed {
			return
		}
		select {
		case m.queries <- in.Query:
		case <-m.ctx.Done():
		}
	case TabSelected:
		m.update(func(s *State) {
			s.SelectedTabIndex = in.Index
		})
	case BookClicked:
		m.update(func(s *State) {
			s.SelectedBookID = in.Book.ID
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

// LastActive returns when an intent was last dispatched or the state was last
// read. A model with a subscriber attached counts as active now.
func (m *Model) LastActive() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.subscribers) > 0 {
		return time.Now()
	}
	return m.lastActive
}

// Close stops the pipeline and any search in flight, and closes all
// subscriber streams.
func (m *Model) Close() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}
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

// update mutates the state under the lock and publishes the result.
func (m *Model) update(fn func(s *State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
	m.publishLocked()
}

func (m *Model) publishLocked() {
	for _, ch := range m.subscribers {
		// replace an unread state with the newer one
		select {
		case <-ch:
		default:
		}
		ch <- m.state
	}
}

// observeSearchQuery debounces query changes and acts on the settled query.
func (m *Model) observeSearchQuery() {
	defer m.wg.Done()

	pending := m.cfg.InitialQuery
	timer := time.NewTimer(m.cfg.Debounce)
	defer timer.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case q := <-m.queries:
			pending = q
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(m.cfg.Debounce)
		case <-timer.C:
			m.onQuerySettled(pending)
		}
	}
}

func (m *Model) onQuerySettled(query string) {
	switch {
	case strings.TrimSpace(query) == "":
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.searchCancel != nil {
			m.searchCancel()
			m.searchCancel = nil
		}
		m.state.ErrorMessage = nil
		m.state.SearchResults = m.cachedBooks
		m.state.IsLoading = false
		m.publishLocked()
	case len([]rune(query)) >= m.cfg.MinQueryLength:
		m.startSearch(query)
	}
}

// startSearch cancels the search in flight and launches a new one.
func (m *Model) startSearch(query string) {
	m.mu.Lock()
	if m.searchCancel != nil {
		m.searchCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.searchCancel = cancel
	m.searchSeq++
	seq := m.searchSeq
	m.state.IsLoading = true
	m.publishLocked()
	m.mu.Unlock()

	go m.search(ctx, seq, query)
}

func (m *Model) search(ctx context.Context, seq uint64, query string) {
	books, err := m.books.SearchBooks(ctx, query)

	m.mu.Lock()
	defer m.mu.Unlock()

	// superseded or closed
	if seq != m.searchSeq || ctx.Err() != nil {
		return
	}
	m.searchCancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[SEARCH] Search for %q failed: %v", query, err)
		msg := dataerror.Message(err)
		m.state.SearchResults = []entities.Book{}
		m.state.ErrorMessage = &msg
		m.state.IsLoading = false
		m.publishLocked()
		return
	}

	if books == nil {
		books = []entities.Book{}
	}
	m.cachedBooks = books
	m.state.SearchResults = books
	m.state.ErrorMessage = nil
	m.state.IsLoading = false
	m.publishLocked()
}

// observeFavorites keeps the favorites tab in sync with the store.
func (m *Model) observeFavorites() {
	defer m.wg.Done()

	for favs := range m.books.WatchFavorites(m.ctx) {
		m.update(func(s *State) {
			s.FavoriteBooks = favs
		})
	}
}
