package util

import (
	"net/http"

	"github.com/flixsy/backend/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionContextKey is where the auth middleware stores the current session.
const SessionContextKey = "flixsy_session"

// GetSessionFromContext extracts the authenticated session from the Gin
// context. If no session is present it responds 401 and returns false.
func GetSessionFromContext(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(SessionContextKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return nil, false
	}
	sess, ok := v.(*session.Session)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "invalid session data in context"})
		return nil, false
	}
	return sess, true
}

// GetUserIDFromContext extracts the authenticated user's ID from the Gin
// context, responding 401 when absent.
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	sess, ok := GetSessionFromContext(c)
	if !ok {
		return 0, false
	}
	return sess.UserID, true
}
