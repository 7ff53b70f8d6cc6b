package books

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookfinder/internal/database/favorites"
	"github.com/mrlokans/bookfinder/internal/dataerror"
	"github.com/mrlokans/bookfinder/internal/entities"
	"github.com/mrlokans/bookfinder/internal/openlibrary"
)

type fakeRemote struct {
	mu        sync.Mutex
	docs      []openlibrary.SearchDoc
	numFound  int
	works     map[string]*openlibrary.Work
	err       error
	lastReq   openlibrary.SearchRequest
	workCalls int
}

func (f *fakeRemote) SearchBooks(_ context.Context, req openlibrary.SearchRequest) (*openlibrary.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &openlibrary.SearchResponse{NumFound: f.numFound, Docs: f.docs}, nil
}

func (f *fakeRemote) GetWork(_ context.Context, id string) (*openlibrary.Work, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workCalls++
	if f.err != nil {
		return nil, f.err
	}
	if w, ok := f.works[id]; ok {
		return w, nil
	}
	return &openlibrary.Work{Key: "/works/" + id}, nil
}

type recordingHook struct {
	mu      sync.Mutex
	added   []string
	removed []string
}

func (h *recordingHook) FavoriteAdded(_ context.Context, book entities.Book) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.added = append(h.added, book.ID)
}

func (h *recordingHook) FavoriteRemoved(_ context.Context, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, id)
}

func newTestRepository(t *testing.T, remote *fakeRemote) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "books.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.FavoriteBook{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(remote, favorites.NewRepository(db), 20)
}

func strPtr(s string) *string { return &s }

func testBook(id, title string) entities.Book {
	return entities.Book{
		ID:        id,
		Title:     title,
		Authors:   []string{"Jane Austen"},
		Languages: []string{"eng"},
	}
}

func TestSearchBooks_MapsDocs(t *testing.T) {
	remote := &fakeRemote{
		numFound: 2,
		docs: []openlibrary.SearchDoc{
			{Key: "/works/OL1W", Title: "Emma", CoverID: 7},
			{Key: "/works/OL2W", Title: "Persuasion"},
		},
	}
	repo := newTestRepository(t, remote)

	books, err := repo.SearchBooks(context.Background(), "  austen ")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "OL1W", books[0].ID)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/7-L.jpg", books[0].ImageURL)
	assert.Equal(t, "austen", remote.lastReq.Query)
	assert.Equal(t, 20, remote.lastReq.Limit)
}

func TestSearchPage_HasMore(t *testing.T) {
	remote := &fakeRemote{numFound: 45, docs: []openlibrary.SearchDoc{{Key: "/works/OL1W"}}}
	repo := newTestRepository(t, remote)

	page, err := repo.SearchPage(context.Background(), "dune", 2, 20)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 45, page.NumFound)

	page, err = repo.SearchPage(context.Background(), "dune", 3, 20)
	require.NoError(t, err)
	assert.False(t, page.HasMore)

	page, err = repo.SearchPage(context.Background(), "dune", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestSearchBooks_RemoteError(t *testing.T) {
	remote := &fakeRemote{err: dataerror.ErrTooManyRequests}
	repo := newTestRepository(t, remote)

	_, err := repo.SearchBooks(context.Background(), "dune")
	assert.ErrorIs(t, err, dataerror.ErrTooManyRequests)
}

func TestGetBookDescription_RemoteWhenNotFavorite(t *testing.T) {
	remote := &fakeRemote{works: map[string]*openlibrary.Work{
		"OL1W": {Description: openlibrary.Description{Value: strPtr("A comedy of manners")}},
	}}
	repo := newTestRepository(t, remote)

	desc, err := repo.GetBookDescription(context.Background(), "OL1W")
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "A comedy of manners", *desc)
	assert.Equal(t, 1, remote.workCalls)
}

func TestGetBookDescription_LocalFirst(t *testing.T) {
	remote := &fakeRemote{}
	repo := newTestRepository(t, remote)

	book := testBook("OL1W", "Emma")
	book.Description = strPtr("Stored text")
	require.NoError(t, repo.MarkAsFavorite(context.Background(), book))

	desc, err := repo.GetBookDescription(context.Background(), "OL1W")
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "Stored text", *desc)
	assert.Equal(t, 0, remote.workCalls)
}

func TestGetBookDescription_NoDescription(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{})

	desc, err := repo.GetBookDescription(context.Background(), "OL9W")
	require.NoError(t, err)
	assert.Nil(t, desc)
}

func TestGetBookDescription_RemoteError(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{err: dataerror.ErrNoInternet})

	_, err := repo.GetBookDescription(context.Background(), "OL1W")
	assert.ErrorIs(t, err, dataerror.ErrNoInternet)
}

func TestRefreshDescription(t *testing.T) {
	remote := &fakeRemote{works: map[string]*openlibrary.Work{
		"OL1W": {Description: openlibrary.Description{Value: strPtr("Fetched")}},
	}}
	repo := newTestRepository(t, remote)

	stored, err := repo.RefreshDescription(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.False(t, stored, "not a favorite")

	require.NoError(t, repo.MarkAsFavorite(context.Background(), testBook("OL1W", "Emma")))
	missing, err := repo.FavoritesMissingDescription()
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "OL1W", missing[0].ID)

	stored, err = repo.RefreshDescription(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.True(t, stored)

	fav, err := repo.GetFavorite("OL1W")
	require.NoError(t, err)
	require.NotNil(t, fav.Description)
	assert.Equal(t, "Fetched", *fav.Description)

	missing, err = repo.FavoritesMissingDescription()
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMarkAsFavorite_KeepsStoredDescription(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{})
	ctx := context.Background()

	book := testBook("OL1W", "Emma")
	book.Description = strPtr("Kept")
	require.NoError(t, repo.MarkAsFavorite(ctx, book))

	// saving again from a search result without description
	require.NoError(t, repo.MarkAsFavorite(ctx, testBook("OL1W", "Emma")))

	fav, err := repo.GetFavorite("OL1W")
	require.NoError(t, err)
	require.NotNil(t, fav.Description)
	assert.Equal(t, "Kept", *fav.Description)
}

func TestMarkAsFavorite_RequiresID(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{})
	assert.Error(t, repo.MarkAsFavorite(context.Background(), entities.Book{Title: "No id"}))
}

func TestFavorites_RoundTripAndHook(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{})
	hook := &recordingHook{}
	repo.SetFavoriteHook(hook)
	ctx := context.Background()

	require.NoError(t, repo.MarkAsFavorite(ctx, testBook("OL1W", "Emma")))
	require.NoError(t, repo.MarkAsFavorite(ctx, testBook("OL2W", "Persuasion")))

	ok, err := repo.IsBookFavorite("OL1W")
	require.NoError(t, err)
	assert.True(t, ok)

	favs, err := repo.FavoriteBooks()
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "OL1W", favs[0].ID)

	require.NoError(t, repo.DeleteFromFavorites(ctx, "OL1W"))
	ok, err = repo.IsBookFavorite("OL1W")
	require.NoError(t, err)
	assert.False(t, ok)

	missing, err := repo.GetFavorite("OL1W")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Equal(t, []string{"OL1W", "OL2W"}, hook.added)
	assert.Equal(t, []string{"OL1W"}, hook.removed)
}

func TestFavorites_CancelledContext(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.MarkAsFavorite(ctx, testBook("OL1W", "Emma")), context.Canceled)
	assert.ErrorIs(t, repo.DeleteFromFavorites(ctx, "OL1W"), context.Canceled)
}

func TestWatchFavorites(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := repo.WatchFavorites(ctx)

	first := receive(t, updates)
	assert.Empty(t, first)

	require.NoError(t, repo.MarkAsFavorite(context.Background(), testBook("OL1W", "Emma")))
	second := receive(t, updates)
	require.Len(t, second, 1)
	assert.Equal(t, "OL1W", second[0].ID)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestWatchIsFavorite_EmitsOnChangeOnly(t *testing.T) {
	repo := newTestRepository(t, &fakeRemote{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := repo.WatchIsFavorite(ctx, "OL1W")
	assert.False(t, receive(t, updates))

	// unrelated favorite does not produce a value
	require.NoError(t, repo.MarkAsFavorite(context.Background(), testBook("OL2W", "Persuasion")))
	require.NoError(t, repo.MarkAsFavorite(context.Background(), testBook("OL1W", "Emma")))
	assert.True(t, receive(t, updates))

	require.NoError(t, repo.DeleteFromFavorites(context.Background(), "OL1W"))
	assert.False(t, receive(t, updates))
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}
