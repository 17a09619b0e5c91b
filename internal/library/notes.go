package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/legalshelf/internal/entities"
)

// Notes returns every note of userID, newest first.
func (s *Store) Notes(ctx context.Context, userID string) ([]entities.Note, error) {
	return load(ctx, s, s.notes, userID,
		func(ctx context.Context) ([]entities.Note, error) {
			return s.noteStore.ListNotes(ctx, userID)
		},
		func() []entities.Note { return []entities.Note{} },
	)
}

// NotesByBook returns the notes of userID attached to bookID, in collection order.
func (s *Store) NotesByBook(ctx context.Context, userID string, bookID uint) ([]entities.Note, error) {
	notes, err := s.Notes(ctx, userID)
	if err != nil {
		return nil, err
	}

	byBook := make([]entities.Note, 0)
	for _, n := range notes {
		if n.BookID == bookID {
			byBook = append(byBook, n)
		}
	}
	return byBook, nil
}

// AddNote stores a note on bookID. Blank content is rejected with ErrEmptyNote
// before the note store is contacted. The local collection is refreshed only
// after the store confirms.
func (s *Store) AddNote(ctx context.Context, userID string, bookID uint, content string) (*entities.Note, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyNote
	}

	note, err := s.noteStore.CreateNote(ctx, userID, bookID, content)
	if err != nil {
		s.notify(userID, Notification{
			Operation: OperationAddNote,
			BookID:    bookID,
			Message:   "Could not save the note, please try again",
		})
		return nil, fmt.Errorf("create note on book %d: %w", bookID, err)
	}

	s.Invalidate(KindNotes, userID)
	if _, err := s.Notes(ctx, userID); err != nil {
		return note, err
	}
	return note, nil
}

// DeleteNote removes noteID. Ownership is enforced by the note store.
func (s *Store) DeleteNote(ctx context.Context, userID string, noteID uint) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if err := s.noteStore.DeleteNote(ctx, userID, noteID); err != nil {
		s.notify(userID, Notification{
			Operation: OperationDeleteNote,
			NoteID:    noteID,
			Message:   "Could not delete the note, please try again",
		})
		return fmt.Errorf("delete note %d: %w", noteID, err)
	}

	s.Invalidate(KindNotes, userID)
	_, err := s.Notes(ctx, userID)
	return err
}
