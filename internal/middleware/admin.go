package middleware

import (
	"net/http"

	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/session"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireAdmin ensures the request carries a session belonging to an admin.
// Admin status is read from the database on every request so a revoked admin
// loses access immediately, and the response is the same "forbidden" whether
// the session is missing, the user is gone, or the user is not an admin.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	forbid := func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "forbidden"})
		c.Abort()
	}

	return func(c *gin.Context) {
		v, exists := c.Get(util.SessionContextKey)
		if !exists {
			forbid(c)
			return
		}
		sess, ok := v.(*session.Session)
		if !ok {
			forbid(c)
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, sess.UserID).Error; err != nil {
			forbid(c)
			return
		}
		if !user.IsAdmin || user.IsBanned {
			forbid(c)
			return
		}

		c.Next()
	}
}
