package booklist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookfinder/internal/dataerror"
	"github.com/mrlokans/bookfinder/internal/entities"
	"github.com/mrlokans/bookfinder/internal/sessions"
)

type fakeBooks struct {
	mu       sync.Mutex
	queries  []string
	results  map[string][]entities.Book
	errs     map[string]error
	block    map[string]chan struct{}
	favs     chan []entities.Book
	canceled []string
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{
		results: map[string][]entities.Book{},
		errs:    map[string]error{},
		block:   map[string]chan struct{}{},
		favs:    make(chan []entities.Book),
	}
}

func (f *fakeBooks) SearchBooks(ctx context.Context, query string) ([]entities.Book, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	wait := f.block[query]
	f.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			f.mu.Lock()
			f.canceled = append(f.canceled, query)
			f.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func (f *fakeBooks) WatchFavorites(ctx context.Context) <-chan []entities.Book {
	out := make(chan []entities.Book)
	go func() {
		defer close(out)
		for {
			select {
			case favs := <-f.favs:
				select {
				case out <- favs:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (f *fakeBooks) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeBooks) canceledQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.canceled...)
}

func newTestModel(t *testing.T, books *fakeBooks, cfg Config) *Model {
	t.Helper()
	if cfg.Debounce == 0 {
		cfg.Debounce = 20 * time.Millisecond
	}
	if cfg.MinQueryLength == 0 {
		cfg.MinQueryLength = 2
	}
	m := New(books, cfg)
	t.Cleanup(m.Close)
	return m
}

func book(id string) entities.Book {
	return entities.Book{ID: id, Title: id, Authors: []string{}, Languages: []string{}}
}

func waitFor(t *testing.T, m *Model, cond func(State) bool) State {
	t.Helper()
	var last State
	require.Eventually(t, func() bool {
		last = m.State()
		return cond(last)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

func TestNew_InitialState(t *testing.T) {
	m := newTestModel(t, newFakeBooks(), Config{})

	s := m.State()
	assert.Equal(t, "", s.SearchQuery)
	assert.False(t, s.IsLoading)
	assert.Equal(t, TabSearchResults, s.SelectedTabIndex)
	assert.NotNil(t, s.SearchResults)
	assert.NotNil(t, s.FavoriteBooks)
	assert.Nil(t, s.ErrorMessage)
}

func TestNew_InitialQuerySearches(t *testing.T) {
	books := newFakeBooks()
	books.results["dune"] = []entities.Book{book("OL1W")}

	m := newTestModel(t, books, Config{InitialQuery: "dune"})
	assert.True(t, m.State().IsLoading)

	s := waitFor(t, m, func(s State) bool { return len(s.SearchResults) == 1 })
	assert.False(t, s.IsLoading)
	assert.Equal(t, []string{"dune"}, books.searched())
}

func TestQueryChanged_Debounced(t *testing.T) {
	books := newFakeBooks()
	books.results["dune"] = []entities.Book{book("OL1W"), book("OL2W")}
	m := newTestModel(t, books, Config{Debounce: 50 * time.Millisecond})

	for _, q := range []string{"d", "du", "dun", "dune"} {
		m.Dispatch(QueryChanged{Query: q})
	}
	assert.Equal(t, "dune", m.State().SearchQuery)

	s := waitFor(t, m, func(s State) bool { return len(s.SearchResults) == 2 })
	assert.False(t, s.IsLoading)
	assert.Nil(t, s.ErrorMessage)
	assert.Equal(t, []string{"dune"}, books.searched())
}

func TestQueryChanged_ShortQueryIgnored(t *testing.T) {
	books := newFakeBooks()
	m := newTestModel(t, books, Config{})

	m.Dispatch(QueryChanged{Query: "a"})
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, books.searched())
	assert.False(t, m.State().IsLoading)
}

func TestQueryChanged_RetypedQueryRetriesFailedSearch(t *testing.T) {
	books := newFakeBooks()
	books.errs["dune"] = dataerror.ErrNoInternet
	m := newTestModel(t, books, Config{})

	m.Dispatch(QueryChanged{Query: "dune"})
	waitFor(t, m, func(s State) bool { return s.ErrorMessage != nil })

	books.mu.Lock()
	delete(books.errs, "dune")
	books.results["dune"] = []entities.Book{book("OL1W")}
	books.mu.Unlock()

	// edit and revert within one debounce window
	m.Dispatch(QueryChanged{Query: "dun"})
	m.Dispatch(QueryChanged{Query: "dune"})

	s := waitFor(t, m, func(s State) bool { return len(s.SearchResults) == 1 })
	assert.Nil(t, s.ErrorMessage)
	assert.False(t, s.IsLoading)
	assert.Equal(t, []string{"dune", "dune"}, books.searched())
}

func TestQueryChanged_BlankRevertsToCache(t *testing.T) {
	books := newFakeBooks()
	books.results["dune"] = []entities.Book{book("OL1W")}
	books.errs["zzzz"] = dataerror.ErrNoInternet
	m := newTestModel(t, books, Config{})

	m.Dispatch(QueryChanged{Query: "dune"})
	waitFor(t, m, func(s State) bool { return len(s.SearchResults) == 1 })

	m.Dispatch(QueryChanged{Query: "zzzz"})
	s := waitFor(t, m, func(s State) bool { return s.ErrorMessage != nil })
	assert.Empty(t, s.SearchResults)
	assert.Equal(t, dataerror.Message(dataerror.ErrNoInternet), *s.ErrorMessage)
	assert.False(t, s.IsLoading)

	m.Dispatch(QueryChanged{Query: "   "})
	s = waitFor(t, m, func(s State) bool { return s.ErrorMessage == nil })
	require.Len(t, s.SearchResults, 1)
	assert.Equal(t, "OL1W", s.SearchResults[0].ID)
	assert.False(t, s.IsLoading)
}

func TestQueryChanged_NewSearchCancelsInFlight(t *testing.T) {
	books := newFakeBooks()
	books.block["slow"] = make(chan struct{})
	books.results["slow"] = []entities.Book{book("SLOW")}
	books.results["fast"] = []entities.Book{book("FAST")}
	m := newTestModel(t, books, Config{})

	m.Dispatch(QueryChanged{Query: "slow"})
	waitFor(t, m, func(s State) bool { return s.IsLoading })
	require.Eventually(t, func() bool { return len(books.searched()) == 1 }, time.Second, 5*time.Millisecond)

	m.Dispatch(QueryChanged{Query: "fast"})
	s := waitFor(t, m, func(s State) bool { return len(s.SearchResults) == 1 && !s.IsLoading })
	assert.Equal(t, "FAST", s.SearchResults[0].ID)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"slow"}, books.canceledQueries())
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, m.State().ErrorMessage, "a cancelled search must not report an error")
}

func TestQueryChanged_BlankCancelsInFlight(t *testing.T) {
	books := newFakeBooks()
	books.results["dune"] = []entities.Book{book("OL1W")}
	release := make(chan struct{})
	books.block["slow"] = release
	books.results["slow"] = []entities.Book{book("SLOW")}
	m := newTestModel(t, books, Config{})

	m.Dispatch(QueryChanged{Query: "dune"})
	waitFor(t, m, func(s State) bool { return len(s.SearchResults) == 1 })

	m.Dispatch(QueryChanged{Query: "slow"})
	require.Eventually(t, func() bool { return len(books.searched()) == 2 }, time.Second, 5*time.Millisecond)

	m.Dispatch(QueryChanged{Query: "   "})
	waitFor(t, m, func(s State) bool { return !s.IsLoading })

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"slow"}, books.canceledQueries())
	}, time.Second, 5*time.Millisecond)
	close(release)
	time.Sleep(50 * time.Millisecond)

	s := m.State()
	require.Len(t, s.SearchResults, 1)
	assert.Equal(t, "OL1W", s.SearchResults[0].ID)
	assert.False(t, s.IsLoading)
	assert.Nil(t, s.ErrorMessage)
}

func TestTabSelectedAndBookClicked(t *testing.T) {
	m := newTestModel(t, newFakeBooks(), Config{})

	m.Dispatch(TabSelected{Index: TabFavorites})
	m.Dispatch(BookClicked{Book: book("OL7W")})

	s := m.State()
	assert.Equal(t, TabFavorites, s.SelectedTabIndex)
	assert.Equal(t, "OL7W", s.SelectedBookID)
}

func TestFavoritesObserved(t *testing.T) {
	books := newFakeBooks()
	m := newTestModel(t, books, Config{})

	books.favs <- []entities.Book{book("OL1W"), book("OL2W")}
	s := waitFor(t, m, func(s State) bool { return len(s.FavoriteBooks) == 2 })
	assert.Equal(t, "OL1W", s.FavoriteBooks[0].ID)
}

func TestConcurrentIntentsNotLost(t *testing.T) {
	m := newTestModel(t, newFakeBooks(), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Dispatch(TabSelected{Index: TabFavorites})
		}()
		go func() {
			defer wg.Done()
			m.Dispatch(BookClicked{Book: book("OL1W")})
		}()
	}
	wg.Wait()

	s := m.State()
	assert.Equal(t, TabFavorites, s.SelectedTabIndex)
	assert.Equal(t, "OL1W", s.SelectedBookID)
}

func TestSubscribe(t *testing.T) {
	m := newTestModel(t, newFakeBooks(), Config{})

	states, unsubscribe := m.Subscribe()
	first := <-states
	assert.Equal(t, TabSearchResults, first.SelectedTabIndex)

	m.Dispatch(TabSelected{Index: TabFavorites})
	select {
	case s := <-states:
		assert.Equal(t, TabFavorites, s.SelectedTabIndex)
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}

	unsubscribe()
	unsubscribe()
	_, open := <-states
	assert.False(t, open)
}

func backdate(m *Model, d time.Duration) {
	m.mu.Lock()
	m.lastActive = time.Now().Add(-d)
	m.mu.Unlock()
}

func TestLastActive_ReadsAndSubscribersKeepModelActive(t *testing.T) {
	m := newTestModel(t, newFakeBooks(), Config{})

	backdate(m, time.Hour)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), m.LastActive(), time.Second)

	m.State()
	assert.WithinDuration(t, time.Now(), m.LastActive(), time.Second)

	_, unsubscribe := m.Subscribe()
	backdate(m, time.Hour)
	assert.WithinDuration(t, time.Now(), m.LastActive(), time.Second, "an attached subscriber counts as activity")

	unsubscribe()
	assert.WithinDuration(t, time.Now(), m.LastActive(), time.Second)
}

func TestRegistry_SubscribedModelNotEvicted(t *testing.T) {
	registry := sessions.NewRegistry[*Model]("search", sessions.Config{
		IdleTimeout:     30 * time.Millisecond,
		CleanupInterval: 5 * time.Millisecond,
	})
	t.Cleanup(registry.Stop)

	watched := New(newFakeBooks(), Config{Debounce: 20 * time.Millisecond, MinQueryLength: 2})
	idle := New(newFakeBooks(), Config{Debounce: 20 * time.Millisecond, MinQueryLength: 2})
	watchedID := registry.Add(watched)
	idleID := registry.Add(idle)

	_, unsubscribe := watched.Subscribe()
	defer unsubscribe()

	require.Eventually(t, func() bool {
		_, ok := registry.Get(idleID)
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok := registry.Get(watchedID)
	assert.True(t, ok)
}

func TestClose_ClosesSubscribers(t *testing.T) {
	m := New(newFakeBooks(), Config{Debounce: 10 * time.Millisecond, MinQueryLength: 2})

	states, _ := m.Subscribe()
	<-states
	m.Close()

	_, open := <-states
	assert.False(t, open)

	// dispatching after close does not block
	m.Dispatch(QueryChanged{Query: "dune"})
}

func TestIntentRequest(t *testing.T) {
	q := "dune"
	idx := 1
	bad := 5

	tests := []struct {
		name    string
		req     IntentRequest
		want    Intent
		wantErr bool
	}{
		{"query", IntentRequest{Type: "query_changed", Query: &q}, QueryChanged{Query: "dune"}, false},
		{"query missing", IntentRequest{Type: "query_changed"}, nil, true},
		{"tab", IntentRequest{Type: "tab_selected", Index: &idx}, TabSelected{Index: 1}, false},
		{"tab out of range", IntentRequest{Type: "tab_selected", Index: &bad}, nil, true},
		{"book", IntentRequest{Type: "book_clicked", Book: []byte(`{"id":"OL1W","title":"Dune"}`)}, BookClicked{Book: entities.Book{ID: "OL1W", Title: "Dune"}}, false},
		{"book without id", IntentRequest{Type: "book_clicked", Book: []byte(`{"title":"Dune"}`)}, nil, true},
		{"unknown", IntentRequest{Type: "nope"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Intent()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
