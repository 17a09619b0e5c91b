package library

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/legalshelf/internal/entities"
	"github.com/mrlokans/legalshelf/internal/search"
)

const testUser = "user-1"

func bookIDs(books []entities.Book) []uint {
	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestNewStore_RequiresCollaborators(t *testing.T) {
	_, err := NewStore(Options{})
	assert.Error(t, err)
}

func TestStore_Books(t *testing.T) {
	t.Run("fetches once and caches", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		books, err := env.store.Books(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 4)

		_, err = env.store.Books(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, env.catalog.Calls())

		state, fetchErr := env.store.Status()
		assert.Equal(t, StateReady, state)
		assert.NoError(t, fetchErr)
	})

	t.Run("applies defaults to catalog records", func(t *testing.T) {
		env := newTestEnv(t)

		books, err := env.store.Books(context.Background())
		require.NoError(t, err)
		for _, b := range books {
			assert.Equal(t, entities.PlaceholderCover, b.Image)
		}
	})

	t.Run("retries with backoff before succeeding", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.failFirst = 2

		books, err := env.store.Books(context.Background())
		require.NoError(t, err)
		assert.Len(t, books, 4)
		assert.Equal(t, 3, env.catalog.Calls())

		state, _ := env.store.Status()
		assert.Equal(t, StateReady, state)
	})

	t.Run("falls back to the sample catalog after retries", func(t *testing.T) {
		fallback := entities.Book{ID: 99, Area: "Geral", Title: "Vade Mecum"}
		env := newTestEnv(t, fallback)
		env.catalog.failFirst = 100

		books, err := env.store.Books(context.Background())
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, uint(99), books[0].ID)
		assert.Equal(t, entities.PlaceholderCover, books[0].Image)
		assert.Equal(t, 3, env.catalog.Calls())

		state, fetchErr := env.store.Status()
		assert.Equal(t, StateFallback, state)
		assert.ErrorIs(t, fetchErr, errBackend)

		// Fallback is a ready state: no refetch until invalidated.
		_, err = env.store.Books(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, env.catalog.Calls())

		env.catalog.mu.Lock()
		env.catalog.failFirst = 0
		env.catalog.mu.Unlock()

		books, err = env.store.RefetchBooks(context.Background())
		require.NoError(t, err)
		assert.Len(t, books, 4)
		state, _ = env.store.Status()
		assert.Equal(t, StateReady, state)
	})

	t.Run("discards a fetch superseded by invalidation", func(t *testing.T) {
		env := newTestEnv(t)
		started := make(chan struct{})
		release := make(chan struct{})
		env.catalog.hook = func(call int) {
			if call == 1 {
				close(started)
				<-release
			}
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = env.store.Books(context.Background())
		}()

		<-started
		env.store.InvalidateBooks()
		close(release)
		<-done

		state, _ := env.store.Status()
		assert.Equal(t, StateLoading, state, "stale result must not be applied")

		_, err := env.store.Books(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, env.catalog.Calls())
		state, _ = env.store.Status()
		assert.Equal(t, StateReady, state)
	})
}

func TestStore_EnrichedBooks(t *testing.T) {
	env := newTestEnv(t)
	env.favorites.set[testUser] = map[uint]bool{2: true}
	env.progress.values = map[string]map[uint]int{testUser: {3: 75}}

	books, err := env.store.EnrichedBooks(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, books, 4)

	for _, b := range books {
		assert.Equal(t, b.ID == 2, b.Favorite, "favorite flag of book %d", b.ID)
	}
	assert.Equal(t, 75, books[2].Progress)
	assert.Equal(t, 0, books[0].Progress)

	other, err := env.store.EnrichedBooks(context.Background(), "someone-else")
	require.NoError(t, err)
	for _, b := range other {
		assert.False(t, b.Favorite)
	}
	assert.Equal(t, 40, other[2].Progress, "catalog progress is kept without a user override")
}

func TestStore_FilteredBooks(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []uint
	}{
		{"no filter", Filter{}, []uint{1, 2, 3, 4}},
		{"area only", Filter{Area: "Civil"}, []uint{1, 3}},
		{"area and fuzzy term", Filter{Area: "Civil", SearchTerm: "codigo"}, []uint{3}},
		{"term via title substring", Filter{SearchTerm: "penal"}, []uint{2}},
		{"term via synopsis", Filter{SearchTerm: "fundamentais"}, []uint{4}},
		{"blank term is ignored", Filter{SearchTerm: "   "}, []uint{1, 2, 3, 4}},
		{"area and term compose with AND", Filter{Area: "Penal", SearchTerm: "codigo"}, []uint{}},
		{"unknown area", Filter{Area: "Tributário"}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			books, err := env.store.FilteredBooks(context.Background(), testUser, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bookIDs(books))
		})
	}
}

func TestStore_FavoriteBooks(t *testing.T) {
	env := newTestEnv(t)
	env.favorites.set[testUser] = map[uint]bool{1: true, 4: true}

	books, err := env.store.FavoriteBooks(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 4}, bookIDs(books))
}

func TestStore_FavoritesFetchFailureFallsBackToEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.favorites.set[testUser] = map[uint]bool{1: true}
	env.favorites.listErr = errBackend

	books, err := env.store.FavoriteBooks(context.Background(), testUser)
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Equal(t, 3, env.favorites.listCalls)

	env.favorites.mu.Lock()
	env.favorites.listErr = nil
	env.favorites.mu.Unlock()

	books, err = env.store.FavoriteBooks(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, bookIDs(books), "a failed fetch is retried on the next read")
}

func TestStore_SearchBooks(t *testing.T) {
	env := newTestEnv(t)

	results, err := env.store.SearchBooks(context.Background(), testUser, "codigo", 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, uint(3), results[0].Item.ID)
	assert.Equal(t, search.MatchFuzzy, results[0].MatchType)

	all, err := env.store.SearchBooks(context.Background(), testUser, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStore_Book(t *testing.T) {
	env := newTestEnv(t)

	book, ok, err := env.store.Book(context.Background(), testUser, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Manual de Direito Penal", book.Title)

	_, ok, err = env.store.Book(context.Background(), testUser, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Areas(t *testing.T) {
	env := newTestEnv(t)

	areas, err := env.store.Areas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Civil", "Penal", "Constitucional"}, areas)
}

func TestStore_Refresh(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.store.Refresh(context.Background(), testUser))
	assert.Equal(t, 1, env.catalog.Calls())
	assert.Equal(t, 1, env.favorites.listCalls)
	assert.Equal(t, 1, env.notes.listCalls)
}

func TestStore_Close(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Close())

	_, err := env.store.Books(context.Background())
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = env.store.ToggleFavorite(context.Background(), testUser, 1)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = env.store.AddNote(context.Background(), testUser, 1, "nota")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestStore_Invalidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.Notes(ctx, testUser)
	require.NoError(t, err)
	_, err = env.store.Notes(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, env.notes.listCalls)

	env.store.Invalidate(KindNotes, testUser)
	_, err = env.store.Notes(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, env.notes.listCalls)
}

func TestStore_Books_CancelledCallerDoesNotFailOthers(t *testing.T) {
	env := newTestEnv(t, entities.Book{ID: 99, Title: "Fallback"})
	env.catalog.failFirst = 1

	started := make(chan struct{})
	release := make(chan struct{})
	env.catalog.hook = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := env.store.Books(ctxA)
		errA <- err
	}()
	<-started

	type result struct {
		books []entities.Book
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		books, err := env.store.Books(context.Background())
		resB <- result{books, err}
	}()
	// Let the second caller join the fetch in flight.
	time.Sleep(50 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	got := <-resB
	require.NoError(t, got.err)
	assert.Len(t, got.books, 4)

	state, fetchErr := env.store.Status()
	assert.Equal(t, StateReady, state)
	assert.NoError(t, fetchErr)
	assert.Equal(t, 2, env.catalog.Calls())
}

func TestStore_Favorites_CancelledCallerDoesNotEmptyOthers(t *testing.T) {
	env := newTestEnv(t)
	env.favorites.set[testUser] = map[uint]bool{3: true}

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env.favorites.listHook = func() {
		once.Do(func() { close(started) })
		<-release
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := env.store.IsFavorite(ctxA, testUser, 3)
		errA <- err
	}()
	<-started

	favB := make(chan bool, 1)
	go func() {
		fav, _ := env.store.IsFavorite(context.Background(), testUser, 3)
		favB <- fav
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	assert.True(t, <-favB)
	assert.Contains(t, localFavorites(env.store, testUser), uint(3))
}
