package http

import (
	"github.com/rs/zerolog"

	"github.com/mrlokans/legalshelf/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Library is the shared store behind every book, favorite, note and
	// progress endpoint. *library.Store satisfies it.
	Library interface {
		BookViews
		FavoriteToggler
		ProgressUpdater
		NoteManager
		LibraryRefresher
	}
	Inbox NotificationInbox

	// Optional collaborators; their routes are skipped when nil.
	Assistant Assistant
	TaskQueue TaskQueue
	Database  HealthChecker

	// Identity. Without a session manager every request must carry X-User-ID.
	SessionManager *auth.SessionManager
	CSRFKey        []byte // nil disables CSRF protection
	SecureCookies  bool

	Version string
	Logger  zerolog.Logger
}
