package library

import (
	"context"

	"github.com/mrlokans/legalshelf/internal/entities"
)

// CatalogStore lists the raw book catalog, ordered by id ascending.
type CatalogStore interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
}

// FavoriteStore persists the favorite relation.
type FavoriteStore interface {
	ListFavorites(ctx context.Context, userID string) ([]uint, error)
	AddFavorite(ctx context.Context, userID string, bookID uint) error
	RemoveFavorite(ctx context.Context, userID string, bookID uint) error
}

// NoteStore persists notes. ListNotes returns the newest note first.
type NoteStore interface {
	ListNotes(ctx context.Context, userID string) ([]entities.Note, error)
	CreateNote(ctx context.Context, userID string, bookID uint, content string) (*entities.Note, error)
	DeleteNote(ctx context.Context, userID string, noteID uint) error
}

// ProgressStore persists per-user reading progress.
type ProgressStore interface {
	ListProgress(ctx context.Context, userID string) (map[uint]int, error)
	SaveProgress(ctx context.Context, userID string, bookID uint, percent int) error
}

// Notifier receives user-visible failure notifications.
type Notifier interface {
	Notify(userID string, n Notification)
}
