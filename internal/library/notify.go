package library

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Operation names the mutation a notification is about.
type Operation string

const (
	OperationToggleFavorite Operation = "toggle_favorite"
	OperationAddNote        Operation = "add_note"
	OperationDeleteNote     Operation = "delete_note"
	OperationUpdateProgress Operation = "update_progress"
)

// Notification is a user-visible report of a failed mutation.
type Notification struct {
	Operation Operation `json:"operation"`
	BookID    uint      `json:"book_id,omitempty"`
	NoteID    uint      `json:"note_id,omitempty"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Inbox keeps the most recent notifications per user until they are drained.
type Inbox struct {
	mu    sync.Mutex
	items map[string][]Notification
	limit int
	log   zerolog.Logger
}

// NewInbox creates an inbox holding at most limit notifications per user.
func NewInbox(limit int, log zerolog.Logger) *Inbox {
	if limit <= 0 {
		limit = 50
	}
	return &Inbox{
		items: make(map[string][]Notification),
		limit: limit,
		log:   log,
	}
}

// Notify records n for userID, dropping the oldest entry once the inbox is full.
func (i *Inbox) Notify(userID string, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	i.log.Warn().
		Str("user_id", userID).
		Str("operation", string(n.Operation)).
		Uint("book_id", n.BookID).
		Msg(n.Message)

	i.mu.Lock()
	defer i.mu.Unlock()

	items := append(i.items[userID], n)
	if len(items) > i.limit {
		items = items[len(items)-i.limit:]
	}
	i.items[userID] = items
}

// Drain returns and clears the pending notifications of userID, oldest first.
func (i *Inbox) Drain(userID string) []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	items := i.items[userID]
	delete(i.items, userID)
	if items == nil {
		return []Notification{}
	}
	return items
}
