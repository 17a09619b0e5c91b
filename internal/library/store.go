// Package library is the in-memory projection of the book catalog and of each
// user's favorites, notes and reading progress.
//
// The Store is built once by the composition root with its collaborators
// injected and is shared by every consumer. Consumers only read derived views
// and call the mutating operations; they never touch the collections directly.
//
// # Consistency
//
// Favorite toggles are optimistic: the local set changes before persistence is
// confirmed and is rolled back on failure. Every toggle remembers what it saw
// and rolls back only while it is still the latest toggle of that book, so a
// late failure never undoes a newer toggle. Notes are confirmed first and then
// refreshed from the store.
//
// Fetches that finish after an invalidation are discarded.
package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mrlokans/legalshelf/internal/entities"
	"github.com/mrlokans/legalshelf/internal/search"
)

var (
	ErrStoreClosed     = errors.New("library store is closed")
	ErrEmptyNote       = errors.New("note content must not be empty")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
)

// LoadState describes the book collection.
type LoadState string

const (
	StateLoading  LoadState = "loading"
	StateReady    LoadState = "ready"
	StateFallback LoadState = "fallback" // ready, serving the local sample catalog
)

// Options configures a Store.
type Options struct {
	Catalog   CatalogStore
	Favorites FavoriteStore
	Notes     NoteStore
	Progress  ProgressStore // optional
	Notifier  Notifier      // optional

	// Fallback is served when the catalog cannot be fetched.
	Fallback []entities.Book

	Retry           RetryPolicy
	SearchThreshold float64
	Logger          zerolog.Logger

	// FetchTimeout bounds a shared fetch including its retries. Default 30s.
	FetchTimeout time.Duration
}

const defaultFetchTimeout = 30 * time.Second

type favoriteKey struct {
	user string
	book uint
}

type Store struct {
	catalog       CatalogStore
	favoriteStore FavoriteStore
	noteStore     NoteStore
	progressStore ProgressStore
	notifier      Notifier

	fallback     []entities.Book
	retry        RetryPolicy
	fetchTimeout time.Duration
	threshold    float64
	log          zerolog.Logger

	group singleflight.Group

	mu         sync.Mutex
	closed     bool
	books      []entities.Book
	booksState LoadState
	booksErr   error
	booksGen   uint64

	favorites *userCache[map[uint]struct{}]
	notes     *userCache[[]entities.Note]
	progress  *userCache[map[uint]int]

	// toggles tracks the in-flight toggles of each (user, book).
	toggles map[favoriteKey]*toggleState
}

// NewStore creates a Store. Catalog, Favorites and Notes are required.
func NewStore(opts Options) (*Store, error) {
	if opts.Catalog == nil || opts.Favorites == nil || opts.Notes == nil {
		return nil, fmt.Errorf("library: catalog, favorites and notes stores are required")
	}
	if opts.SearchThreshold <= 0 {
		opts.SearchThreshold = search.DefaultThreshold
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}

	fallback := make([]entities.Book, len(opts.Fallback))
	copy(fallback, opts.Fallback)
	for i := range fallback {
		fallback[i].ApplyDefaults()
	}

	return &Store{
		catalog:       opts.Catalog,
		favoriteStore: opts.Favorites,
		noteStore:     opts.Notes,
		progressStore: opts.Progress,
		notifier:      opts.Notifier,
		fallback:      fallback,
		retry:         opts.Retry,
		threshold:     opts.SearchThreshold,
		log:           opts.Logger,
		booksState:    StateLoading,
		favorites:     newUserCache[map[uint]struct{}](KindFavorites),
		notes:         newUserCache[[]entities.Note](KindNotes),
		progress:      newUserCache[map[uint]int](KindProgress),
		toggles:       make(map[favoriteKey]*toggleState),
		fetchTimeout:  opts.FetchTimeout,
	}, nil
}

// Close drops all cached state. The store rejects further use.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.books = nil
	s.favorites = newUserCache[map[uint]struct{}](KindFavorites)
	s.notes = newUserCache[[]entities.Note](KindNotes)
	s.progress = newUserCache[map[uint]int](KindProgress)
	s.toggles = make(map[favoriteKey]*toggleState)
	return nil
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Status reports the state of the book collection and the error that caused
// a fallback, if any.
func (s *Store) Status() (LoadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.booksState, s.booksErr
}

// Books returns the raw catalog, fetching it if needed. When every attempt
// fails the fixed sample catalog is served instead.
func (s *Store) Books(ctx context.Context) ([]entities.Book, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	if s.booksState != StateLoading {
		books := s.books
		s.mu.Unlock()
		return books, nil
	}
	gen := s.booksGen
	s.mu.Unlock()

	res, err := s.shared(ctx, "books", func(ctx context.Context) (any, error) {
		return withRetry(ctx, s.retry, s.fetchBooks)
	})

	state := StateReady
	var books []entities.Book
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.Warn().Err(err).Int("fallback_books", len(s.fallback)).Msg("Catalog fetch failed, serving sample catalog")
		state = StateFallback
		books = s.fallback
	} else {
		books = res.([]entities.Book)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.booksGen != gen || s.closed {
		return books, nil
	}
	s.books = books
	s.booksState = state
	s.booksErr = err
	return books, nil
}

// shared runs fetch once per key for all concurrent callers. The fetch is
// detached from the caller that started it, so a caller giving up only ends
// its own wait and never fails the others.
func (s *Store) shared(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Store) fetchBooks(ctx context.Context) ([]entities.Book, error) {
	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		books[i].ApplyDefaults()
	}
	return books, nil
}

// InvalidateBooks moves the book collection back to loading; the next read
// refetches it and a fetch already in flight is discarded.
func (s *Store) InvalidateBooks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.booksState = StateLoading
	s.booksGen++
	s.group.Forget("books")
}

// RefetchBooks invalidates and immediately reloads the catalog.
func (s *Store) RefetchBooks(ctx context.Context) ([]entities.Book, error) {
	s.InvalidateBooks()
	return s.Books(ctx)
}

// Refresh loads the catalog and every collection of userID concurrently.
func (s *Store) Refresh(ctx context.Context, userID string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := s.Books(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.favoriteSet(ctx, userID)
		return err
	})
	g.Go(func() error {
		_, err := s.Notes(ctx, userID)
		return err
	})
	g.Go(func() error {
		_, err := s.progressMap(ctx, userID)
		return err
	})

	return g.Wait()
}
