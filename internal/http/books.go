package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/legalshelf/internal/entities"
	"github.com/mrlokans/legalshelf/internal/library"
	"github.com/mrlokans/legalshelf/internal/search"
)

// BooksController serves the per-user views of the catalog.
type BooksController struct {
	library BookViews
}

func NewBooksController(lib BookViews) *BooksController {
	return &BooksController{library: lib}
}

// SearchResponse is the body of GET /api/books/search.
type SearchResponse struct {
	Query     string                         `json:"query"`
	Threshold float64                        `json:"threshold,omitempty"`
	Results   []search.Result[entities.Book] `json:"results"`
	Total     int                            `json:"total"`
}

// GetBooks handles GET /api/books?area=&q=
func (bc *BooksController) GetBooks(c *gin.Context) {
	filter := library.Filter{
		Area:       strings.TrimSpace(c.Query("area")),
		SearchTerm: c.Query("q"),
	}

	books, err := bc.library.FilteredBooks(c.Request.Context(), GetUserID(c), filter)
	if err != nil {
		respondLibraryError(c, err, "list books")
		return
	}
	bc.respondList(c, books, len(books))
}

// SearchBooks handles GET /api/books/search?q=&threshold=
func (bc *BooksController) SearchBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	threshold, ok := parseThreshold(c, "threshold")
	if !ok {
		return
	}

	results, err := bc.library.SearchBooks(c.Request.Context(), GetUserID(c), query, threshold)
	if err != nil {
		respondLibraryError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		Query:     query,
		Threshold: threshold,
		Results:   results,
		Total:     len(results),
	})
}

// GetFavoriteBooks handles GET /api/books/favorites
func (bc *BooksController) GetFavoriteBooks(c *gin.Context) {
	books, err := bc.library.FavoriteBooks(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondLibraryError(c, err, "list favorite books")
		return
	}
	bc.respondList(c, books, len(books))
}

// GetAreas handles GET /api/books/areas
func (bc *BooksController) GetAreas(c *gin.Context) {
	areas, err := bc.library.Areas(c.Request.Context())
	if err != nil {
		respondLibraryError(c, err, "list areas")
		return
	}
	bc.respondList(c, areas, len(areas))
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, found, err := bc.library.Book(c.Request.Context(), GetUserID(c), bookID)
	if err != nil {
		respondLibraryError(c, err, "get book")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (bc *BooksController) respondList(c *gin.Context, data any, total int) {
	state, _ := bc.library.Status()
	c.JSON(http.StatusOK, ListResponse{Data: data, Total: total, State: string(state)})
}

// respondLibraryError maps library store errors shared by several controllers.
func respondLibraryError(c *gin.Context, err error, context string) {
	if errors.Is(err, library.ErrStoreClosed) {
		respondError(c, http.StatusServiceUnavailable, "library is shutting down")
		return
	}
	respondInternalError(c, err, context)
}
