package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flixsy/backend/internal/logger"
	"github.com/flixsy/backend/internal/session"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie browser clients carry their token in. API
// clients use Authorization: Bearer instead.
const SessionCookie = "flixsy_session"

// CSRFHeader carries the CSRF token on cookie-authenticated mutations.
const CSRFHeader = "X-CSRF-Token"

func extractToken(c *gin.Context) (token string, fromCookie bool) {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer "), false
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// RequireSession authenticates the request against the session store.
// Fetching the session slides its expiry, so authenticated traffic is what
// keeps a session alive. Cookie-authenticated mutations must additionally
// present the session's CSRF token; Bearer clients are exempt because a
// cross-site page cannot set that header.
func RequireSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := extractToken(c)
		if token == "" {
			util.RespondUnauthorized(c, "authentication required")
			c.Abort()
			return
		}

		sess, err := store.Get(c.Request.Context(), token)
		if errors.Is(err, session.ErrNotFound) {
			util.RespondUnauthorized(c, "session expired")
			c.Abort()
			return
		} else if err != nil {
			logger.Error("session lookup failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal server error"})
			c.Abort()
			return
		}

		if fromCookie && mutating(c.Request.Method) {
			if !session.VerifyCSRF(sess, c.GetHeader(CSRFHeader)) {
				c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "invalid csrf token"})
				c.Abort()
				return
			}
		}

		c.Set(util.SessionContextKey, sess)
		c.Next()
	}
}

// OptionalSession resolves a session when a token is presented but lets
// anonymous requests through. Read-only endpoints use it to personalize
// responses without requiring login.
func OptionalSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := extractToken(c)
		if token != "" {
			if sess, err := store.Get(c.Request.Context(), token); err == nil {
				c.Set(util.SessionContextKey, sess)
			}
		}
		c.Next()
	}
}
