package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/legalshelf/internal/database/notes"
	"github.com/mrlokans/legalshelf/internal/library"
)

// NotesController manages the caller's notes on books.
type NotesController struct {
	notes NoteManager
}

func NewNotesController(store NoteManager) *NotesController {
	return &NotesController{notes: store}
}

// AddNoteRequest is the body of POST /api/books/:id/notes.
type AddNoteRequest struct {
	Content string `json:"content" binding:"required,notblank,max=10000"`
}

// GetBookNotes handles GET /api/books/:id/notes
func (nc *NotesController) GetBookNotes(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := nc.notes.NotesByBook(c.Request.Context(), GetUserID(c), bookID)
	if err != nil {
		respondLibraryError(c, err, "list notes")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: list, Total: len(list)})
}

// AddNote handles POST /api/books/:id/notes
func (nc *NotesController) AddNote(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddNoteRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := GetUserID(c)
	if _, found, err := nc.notes.Book(c.Request.Context(), userID, bookID); err != nil {
		respondLibraryError(c, err, "get book")
		return
	} else if !found {
		respondNotFound(c, "book")
		return
	}

	note, err := nc.notes.AddNote(c.Request.Context(), userID, bookID, req.Content)
	switch {
	case errors.Is(err, library.ErrEmptyNote):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, library.ErrStoreClosed):
		respondLibraryError(c, err, "add note")
		return
	case err != nil && note == nil:
		logRequestError(c, err, "add note")
		respondError(c, http.StatusBadGateway, "could not save the note, please try again")
		return
	case err != nil:
		// Saved, but the refreshed list could not be loaded. The note itself is valid.
		logRequestError(c, err, "reload notes")
	}

	respondCreated(c, note)
}

// DeleteNote handles DELETE /api/notes/:id
func (nc *NotesController) DeleteNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := nc.notes.DeleteNote(c.Request.Context(), GetUserID(c), noteID)
	switch {
	case err == nil:
		respondSuccess(c, "note deleted")
	case errors.Is(err, notes.ErrNoteNotFound):
		respondNotFound(c, "note")
	case errors.Is(err, library.ErrStoreClosed):
		respondLibraryError(c, err, "delete note")
	default:
		logRequestError(c, err, "delete note")
		respondError(c, http.StatusBadGateway, "could not delete the note, please try again")
	}
}

// ProgressController records reading progress.
type ProgressController struct {
	books    BookViews
	progress ProgressUpdater
}

func NewProgressController(books BookViews, progress ProgressUpdater) *ProgressController {
	return &ProgressController{books: books, progress: progress}
}

// UpdateProgressRequest is the body of PUT /api/books/:id/progress.
// Range checks happen in the library so every caller gets the same rule.
type UpdateProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

// ProgressResponse confirms the stored percentage.
type ProgressResponse struct {
	BookID   uint `json:"book_id"`
	Progress int  `json:"progress"`
}

// UpdateProgress handles PUT /api/books/:id/progress
func (pc *ProgressController) UpdateProgress(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := GetUserID(c)
	if _, found, err := pc.books.Book(c.Request.Context(), userID, bookID); err != nil {
		respondLibraryError(c, err, "get book")
		return
	} else if !found {
		respondNotFound(c, "book")
		return
	}

	err := pc.progress.UpdateProgress(c.Request.Context(), userID, bookID, *req.Progress)
	switch {
	case errors.Is(err, library.ErrInvalidProgress):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, library.ErrStoreClosed):
		respondLibraryError(c, err, "update progress")
		return
	case err != nil:
		logRequestError(c, err, "update progress")
		respondError(c, http.StatusBadGateway, "could not save reading progress")
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{BookID: bookID, Progress: *req.Progress})
}
