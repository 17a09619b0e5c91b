// Package notes provides database operations for user notes on books.
package notes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/legalshelf/internal/entities"
)

var ErrNoteNotFound = errors.New("note not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListNotes returns every note of userID, newest first.
func (r *Repository) ListNotes(ctx context.Context, userID string) ([]entities.Note, error) {
	notes := make([]entities.Note, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (r *Repository) CreateNote(ctx context.Context, userID string, bookID uint, content string) (*entities.Note, error) {
	note := &entities.Note{UserID: userID, BookID: bookID, Content: content}
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// DeleteNote removes noteID if it belongs to userID.
func (r *Repository) DeleteNote(ctx context.Context, userID string, noteID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", noteID, userID).
		Delete(&entities.Note{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
