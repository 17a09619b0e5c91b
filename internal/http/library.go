package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/legalshelf/internal/auth"
)

// LibraryController exposes cache refresh and the notification inbox.
type LibraryController struct {
	library LibraryRefresher
	inbox   NotificationInbox
}

func NewLibraryController(lib LibraryRefresher, inbox NotificationInbox) *LibraryController {
	return &LibraryController{library: lib, inbox: inbox}
}

// RefreshResponse reports the outcome of an explicit refresh.
type RefreshResponse struct {
	Books int `json:"books"`
}

// Refresh handles POST /api/library/refresh
// Invalidates the catalog, refetches it and reloads the caller's collections.
func (lc *LibraryController) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	books, err := lc.library.RefetchBooks(ctx)
	if err != nil {
		respondLibraryError(c, err, "refetch books")
		return
	}
	if err := lc.library.Refresh(ctx, GetUserID(c)); err != nil {
		respondLibraryError(c, err, "refresh user collections")
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{Books: len(books)})
}

// Notifications handles GET /api/notifications
// Returns and clears the caller's pending failure notifications.
func (lc *LibraryController) Notifications(c *gin.Context) {
	if lc.inbox == nil {
		c.JSON(http.StatusOK, ListResponse{Data: []any{}, Total: 0})
		return
	}
	items := lc.inbox.Drain(GetUserID(c))
	c.JSON(http.StatusOK, ListResponse{Data: items, Total: len(items)})
}

// SessionResponse tells a client who it is and which token unsafe requests need.
type SessionResponse struct {
	UserID    string `json:"user_id"`
	CSRFToken string `json:"csrf_token,omitempty"`
}

// Session handles GET /api/session
func (lc *LibraryController) Session(c *gin.Context) {
	c.JSON(http.StatusOK, SessionResponse{
		UserID:    GetUserID(c),
		CSRFToken: auth.GetCSRFToken(c),
	})
}
