package auth

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserIDHeader lets API clients bring their own identity token.
const UserIDHeader = "X-User-ID"

// ContextKeyUserID is the gin context key holding the resolved identity.
const ContextKeyUserID = "user_id"

var validUserID = regexp.MustCompile(`^[A-Za-z0-9._:@-]{1,64}$`)

// ValidUserID reports whether id can be used as an identity token.
func ValidUserID(id string) bool {
	return validUserID.MatchString(id)
}

// IdentityMiddleware resolves the identity of every request: the X-User-ID
// header when present, otherwise the identity stored in the session, otherwise
// a fresh uuid which is then stored in the session.
func IdentityMiddleware(sm *SessionManager, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader(UserIDHeader); header != "" {
			if !ValidUserID(header) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + UserIDHeader + " header"})
				return
			}
			c.Set(ContextKeyUserID, header)
			c.Next()
			return
		}

		if sm == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UserIDHeader + " header is required"})
			return
		}

		userID := sm.UserID(c.Request)
		if userID == "" {
			userID = uuid.NewString()
			if err := sm.PutUserID(c.Request, userID); err != nil {
				log.Error().Err(err).Msg("Failed to store identity in session")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
				return
			}
			log.Debug().Str("user_id", userID).Msg("Issued anonymous identity")
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the identity resolved by IdentityMiddleware, or "".
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
