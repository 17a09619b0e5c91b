package library

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/legalshelf/internal/entities"
)

var errBackend = errors.New("backend unavailable")

type fakeCatalog struct {
	mu    sync.Mutex
	books []entities.Book
	calls int
	// failFirst makes the first n calls fail.
	failFirst int
	// hook, when set, runs inside ListBooks after the call is counted.
	hook func(call int)
}

func (f *fakeCatalog) ListBooks(ctx context.Context) ([]entities.Book, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	fail := call <= f.failFirst
	books := make([]entities.Book, len(f.books))
	copy(books, f.books)
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if fail {
		return nil, errBackend
	}
	return books, nil
}

func (f *fakeCatalog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFavorites struct {
	mu        sync.Mutex
	set       map[string]map[uint]bool
	listCalls int
	listErr   error
	listHook  func()
	addCalls  int
	remCalls  int
	// addFn / removeFn override persistence when set.
	addFn    func(bookID uint) error
	removeFn func(bookID uint) error
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{set: make(map[string]map[uint]bool)}
}

func (f *fakeFavorites) ListFavorites(ctx context.Context, userID string) ([]uint, error) {
	f.mu.Lock()
	hook := f.listHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]uint, 0)
	for id := range f.set[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeFavorites) AddFavorite(ctx context.Context, userID string, bookID uint) error {
	f.mu.Lock()
	f.addCalls++
	fn := f.addFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(bookID); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set[userID] == nil {
		f.set[userID] = make(map[uint]bool)
	}
	f.set[userID][bookID] = true
	return nil
}

func (f *fakeFavorites) RemoveFavorite(ctx context.Context, userID string, bookID uint) error {
	f.mu.Lock()
	f.remCalls++
	fn := f.removeFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(bookID); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.set[userID], bookID)
	return nil
}

type fakeNotes struct {
	mu          sync.Mutex
	notes       []entities.Note
	nextID      uint
	listCalls   int
	createCalls int
	createErr   error
	deleteErr   error
}

func (f *fakeNotes) ListNotes(ctx context.Context, userID string) ([]entities.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]entities.Note, 0)
	for i := len(f.notes) - 1; i >= 0; i-- {
		if f.notes[i].UserID == userID {
			out = append(out, f.notes[i])
		}
	}
	return out, nil
}

func (f *fakeNotes) CreateNote(ctx context.Context, userID string, bookID uint, content string) (*entities.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	n := entities.Note{ID: f.nextID, UserID: userID, BookID: bookID, Content: content, CreatedAt: time.Now()}
	f.notes = append(f.notes, n)
	return &n, nil
}

func (f *fakeNotes) DeleteNote(ctx context.Context, userID string, noteID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, n := range f.notes {
		if n.ID == noteID && n.UserID == userID {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeProgress struct {
	mu      sync.Mutex
	values  map[string]map[uint]int
	saveErr error
}

func (f *fakeProgress) ListProgress(ctx context.Context, userID string) (map[uint]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uint]int)
	for k, v := range f.values[userID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeProgress) SaveProgress(ctx context.Context, userID string, bookID uint, percent int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.values == nil {
		f.values = make(map[string]map[uint]int)
	}
	if f.values[userID] == nil {
		f.values[userID] = make(map[uint]int)
	}
	f.values[userID][bookID] = percent
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recordingNotifier) Notify(userID string, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func sampleBooks() []entities.Book {
	return []entities.Book{
		{ID: 1, Area: "Civil", Title: "Direito Civil Brasileiro", About: "Obrigações e contratos"},
		{ID: 2, Area: "Penal", Title: "Manual de Direito Penal", About: "Teoria do crime"},
		{ID: 3, Area: "Civil", Title: "Código Civil Comentado", About: "Comentários artigo por artigo", Progress: 40},
		{ID: 4, Area: "Constitucional", Title: "Curso de Direito Constitucional", About: "Direitos fundamentais"},
	}
}

type testEnv struct {
	store     *Store
	catalog   *fakeCatalog
	favorites *fakeFavorites
	notes     *fakeNotes
	progress  *fakeProgress
	notifier  *recordingNotifier
}

func newTestEnv(t *testing.T, fallback ...entities.Book) *testEnv {
	t.Helper()

	env := &testEnv{
		catalog:   &fakeCatalog{books: sampleBooks()},
		favorites: newFakeFavorites(),
		notes:     &fakeNotes{},
		progress:  &fakeProgress{},
		notifier:  &recordingNotifier{},
	}

	store, err := NewStore(Options{
		Catalog:   env.catalog,
		Favorites: env.favorites,
		Notes:     env.notes,
		Progress:  env.progress,
		Notifier:  env.notifier,
		Fallback:  fallback,
		Retry:     RetryPolicy{Retries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	env.store = store
	return env
}
