package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/legalshelf/internal/library"
)

// FavouritesController toggles books in and out of the caller's favorites.
type FavouritesController struct {
	books   BookViews
	toggler FavoriteToggler
}

func NewFavouritesController(books BookViews, toggler FavoriteToggler) *FavouritesController {
	return &FavouritesController{books: books, toggler: toggler}
}

// FavoriteResponse reports the membership after a toggle.
type FavoriteResponse struct {
	BookID   uint   `json:"book_id"`
	Favorite bool   `json:"favorite"`
	Error    string `json:"error,omitempty"`
}

// ToggleFavorite handles POST /api/books/:id/favorite
func (fc *FavouritesController) ToggleFavorite(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	_, found, err := fc.books.Book(c.Request.Context(), userID, bookID)
	if err != nil {
		respondLibraryError(c, err, "get book")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}

	favorite, err := fc.toggler.ToggleFavorite(c.Request.Context(), userID, bookID)
	if errors.Is(err, library.ErrStoreClosed) {
		respondLibraryError(c, err, "toggle favorite")
		return
	}
	if err != nil {
		// The store already rolled back; report the membership the caller should show.
		logRequestError(c, err, "toggle favorite")
		c.JSON(http.StatusBadGateway, FavoriteResponse{
			BookID:   bookID,
			Favorite: favorite,
			Error:    "could not update favorites, please try again",
		})
		return
	}

	c.JSON(http.StatusOK, FavoriteResponse{BookID: bookID, Favorite: favorite})
}
