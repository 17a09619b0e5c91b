package http

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/legalshelf/internal/ai"
	"github.com/mrlokans/legalshelf/internal/database/notes"
	"github.com/mrlokans/legalshelf/internal/entities"
	"github.com/mrlokans/legalshelf/internal/library"
	"github.com/mrlokans/legalshelf/internal/search"
)

var errBackend = errors.New("backend unavailable")

// fakeLibrary is an in-memory stand-in for *library.Store.
type fakeLibrary struct {
	mu        sync.Mutex
	books     []entities.Book
	state     library.LoadState
	favorites map[string]map[uint]bool
	notes     []entities.Note
	progress  map[string]map[uint]int
	nextNote  uint
	refetches int

	toggleErr   error
	addNoteErr  error
	progressErr error
	booksErr    error
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		books: []entities.Book{
			{ID: 1, Area: "Civil", Title: "Código Civil Anotado", About: "Comentário ao código civil"},
			{ID: 2, Area: "Penal", Title: "Direito Penal", About: "Teoria geral do crime"},
			{ID: 3, Area: "Civil", Title: "Teoria Geral do Direito Civil", About: "Pessoas e negócio jurídico"},
		},
		state:     library.StateReady,
		favorites: make(map[string]map[uint]bool),
		progress:  make(map[string]map[uint]int),
		nextNote:  1,
	}
}

func (f *fakeLibrary) Status() (library.LoadState, error) {
	return f.state, nil
}

func (f *fakeLibrary) enriched(userID string) []entities.Book {
	out := make([]entities.Book, len(f.books))
	for i, b := range f.books {
		b.Favorite = f.favorites[userID][b.ID]
		if p, ok := f.progress[userID][b.ID]; ok {
			b.Progress = p
		}
		out[i] = b
	}
	return out
}

func (f *fakeLibrary) FilteredBooks(_ context.Context, userID string, flt library.Filter) ([]entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.booksErr != nil {
		return nil, f.booksErr
	}
	out := make([]entities.Book, 0)
	for _, b := range f.enriched(userID) {
		if flt.Area != "" && b.Area != flt.Area {
			continue
		}
		if flt.SearchTerm != "" && !search.FuzzyMatch(flt.SearchTerm, b.SearchText(), search.DefaultThreshold) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeLibrary) SearchBooks(_ context.Context, userID, query string, threshold float64) ([]search.Result[entities.Book], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if threshold <= 0 {
		threshold = search.DefaultThreshold
	}
	return search.RankedSearch(f.enriched(userID), query, entities.Book.SearchText, threshold), nil
}

func (f *fakeLibrary) FavoriteBooks(_ context.Context, userID string) ([]entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.Book, 0)
	for _, b := range f.enriched(userID) {
		if b.Favorite {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeLibrary) Book(_ context.Context, userID string, bookID uint) (*entities.Book, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.booksErr != nil {
		return nil, false, f.booksErr
	}
	for _, b := range f.enriched(userID) {
		if b.ID == bookID {
			return &b, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeLibrary) Areas(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	areas := make([]string, 0)
	for _, b := range f.books {
		if !seen[b.Area] {
			seen[b.Area] = true
			areas = append(areas, b.Area)
		}
	}
	return areas, nil
}

func (f *fakeLibrary) ToggleFavorite(_ context.Context, userID string, bookID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.favorites[userID][bookID]
	if f.toggleErr != nil {
		return was, f.toggleErr
	}
	if f.favorites[userID] == nil {
		f.favorites[userID] = make(map[uint]bool)
	}
	f.favorites[userID][bookID] = !was
	return !was, nil
}

func (f *fakeLibrary) UpdateProgress(_ context.Context, userID string, bookID uint, percent int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if percent < 0 || percent > 100 {
		return library.ErrInvalidProgress
	}
	if f.progressErr != nil {
		return f.progressErr
	}
	if f.progress[userID] == nil {
		f.progress[userID] = make(map[uint]int)
	}
	f.progress[userID][bookID] = percent
	return nil
}

func (f *fakeLibrary) NotesByBook(_ context.Context, userID string, bookID uint) ([]entities.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.Note, 0)
	for _, n := range f.notes {
		if n.UserID == userID && n.BookID == bookID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeLibrary) AddNote(_ context.Context, userID string, bookID uint, content string) (*entities.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, library.ErrEmptyNote
	}
	if f.addNoteErr != nil {
		return nil, f.addNoteErr
	}
	n := entities.Note{ID: f.nextNote, UserID: userID, BookID: bookID, Content: content, CreatedAt: time.Now()}
	f.nextNote++
	f.notes = append([]entities.Note{n}, f.notes...)
	return &n, nil
}

func (f *fakeLibrary) DeleteNote(_ context.Context, userID string, noteID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notes {
		if n.ID == noteID && n.UserID == userID {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return notes.ErrNoteNotFound
}

func (f *fakeLibrary) RefetchBooks(context.Context) ([]entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refetches++
	return f.books, nil
}

func (f *fakeLibrary) Refresh(context.Context, string) error {
	return nil
}

// fakeAssistant records the last request and answers with a canned result.
type fakeAssistant struct {
	enabled bool
	last    ai.Request
	resp    *ai.Response
	err     error
}

func (a *fakeAssistant) Enabled() bool { return a.enabled }

func (a *fakeAssistant) Complete(_ context.Context, req ai.Request) (*ai.Response, error) {
	a.last = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return a.resp, a.err
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
	err      error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	if s, ok := q.statuses[taskID]; ok {
		return s, nil
	}
	return backlite.TaskStatusNotFound, nil
}
