package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/legalshelf/internal/ai"
	"github.com/mrlokans/legalshelf/internal/entities"
	"github.com/mrlokans/legalshelf/internal/library"
	"github.com/mrlokans/legalshelf/internal/search"
)

// Each controller depends on the narrow slice of the library store it uses.
// *library.Store satisfies all of the library interfaces below.

// LibraryStatus reports the catalog load state.
type LibraryStatus interface {
	Status() (library.LoadState, error)
}

// BookViews provides the read-only book views.
type BookViews interface {
	LibraryStatus
	FilteredBooks(ctx context.Context, userID string, f library.Filter) ([]entities.Book, error)
	SearchBooks(ctx context.Context, userID, query string, threshold float64) ([]search.Result[entities.Book], error)
	FavoriteBooks(ctx context.Context, userID string) ([]entities.Book, error)
	Book(ctx context.Context, userID string, bookID uint) (*entities.Book, bool, error)
	Areas(ctx context.Context) ([]string, error)
}

// FavoriteToggler flips a book in or out of the user's favorites.
type FavoriteToggler interface {
	ToggleFavorite(ctx context.Context, userID string, bookID uint) (bool, error)
}

// ProgressUpdater records how far a user has read.
type ProgressUpdater interface {
	UpdateProgress(ctx context.Context, userID string, bookID uint, percent int) error
}

// NoteManager lists, creates and deletes notes.
type NoteManager interface {
	Book(ctx context.Context, userID string, bookID uint) (*entities.Book, bool, error)
	NotesByBook(ctx context.Context, userID string, bookID uint) ([]entities.Note, error)
	AddNote(ctx context.Context, userID string, bookID uint, content string) (*entities.Note, error)
	DeleteNote(ctx context.Context, userID string, noteID uint) error
}

// LibraryRefresher reloads cached state.
type LibraryRefresher interface {
	RefetchBooks(ctx context.Context) ([]entities.Book, error)
	Refresh(ctx context.Context, userID string) error
}

// NotificationInbox hands out pending failure notifications.
type NotificationInbox interface {
	Drain(userID string) []library.Notification
}

// Assistant forwards requests to the completion service.
type Assistant interface {
	Enabled() bool
	Complete(ctx context.Context, req ai.Request) (*ai.Response, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
