package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/legalshelf/internal/ai"
)

// AssistantController proxies the reader's assistant panel to the completion service.
type AssistantController struct {
	assistant Assistant
	books     BookViews
}

func NewAssistantController(assistant Assistant, books BookViews) *AssistantController {
	return &AssistantController{assistant: assistant, books: books}
}

// AssistantRequest is the body of POST /api/assistant. Title and area are
// taken from the catalog when book_id is known.
type AssistantRequest struct {
	BookID    uint   `json:"bookId" binding:"required"`
	BookTitle string `json:"bookTitle" binding:"max=512"`
	BookArea  string `json:"bookArea" binding:"max=100"`
	Action    string `json:"action" binding:"required,oneof=qa summarize mindmap"`
	Query     string `json:"query" binding:"max=4000"`
}

// Ask handles POST /api/assistant
func (ac *AssistantController) Ask(c *gin.Context) {
	if ac.assistant == nil || !ac.assistant.Enabled() {
		c.JSON(http.StatusServiceUnavailable, ai.Response{Success: false, Error: ai.ErrDisabled.Error()})
		return
	}

	var body AssistantRequest
	if !bindJSON(c, &body) {
		return
	}

	userID := GetUserID(c)
	req := ai.Request{
		BookTitle: body.BookTitle,
		BookArea:  body.BookArea,
		Action:    ai.Action(body.Action),
		Query:     body.Query,
		UserID:    userID,
		BookID:    body.BookID,
	}

	if ac.books != nil {
		book, found, err := ac.books.Book(c.Request.Context(), userID, body.BookID)
		if err != nil {
			respondLibraryError(c, err, "get book")
			return
		}
		if !found {
			respondNotFound(c, "book")
			return
		}
		req.BookTitle = book.Title
		req.BookArea = book.Area
	}

	resp, err := ac.assistant.Complete(c.Request.Context(), req)
	if err != nil {
		status := assistantErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logRequestError(c, err, "assistant")
		}
		msg := err.Error()
		var serviceErr *ai.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.Message != "" {
			msg = serviceErr.Message
		}
		c.JSON(status, ai.Response{Success: false, Error: msg})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func assistantErrorStatus(err error) int {
	switch {
	case errors.Is(err, ai.ErrInvalidAction), errors.Is(err, ai.ErrMissingQuery):
		return http.StatusBadRequest
	case errors.Is(err, ai.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ai.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
