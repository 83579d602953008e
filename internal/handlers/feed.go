package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/feed"
	"github.com/flixsy/backend/internal/session"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// viewerID resolves the optional session into a user ID, zero when anonymous.
func viewerID(c *gin.Context) uint {
	if v, exists := c.Get(util.SessionContextKey); exists {
		if sess, ok := v.(*session.Session); ok {
			return sess.UserID
		}
	}
	return 0
}

// GetFeed returns the personalized home feed.
func (h *Handlers) GetFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	limit, offset := util.Pagination(c, 20, 100)

	posts, err := h.feed.GetFeed(c.Request.Context(), userID, limit, offset)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"posts": posts})
}

// GetTrending returns the top public posts of the trailing window.
func (h *Handlers) GetTrending(c *gin.Context) {
	limit, _ := util.Pagination(c, 20, 100)
	days := util.ParseInt(c.DefaultQuery("days", "7"), 7)

	posts, err := h.feed.GetTrendingPosts(c.Request.Context(), limit, days)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"posts": posts})
}

// GetProfile returns a user with live counts, plus follow state for a
// logged-in viewer.
func (h *Handlers) GetProfile(c *gin.Context) {
	userID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid user id")
		return
	}

	profile, err := h.feed.GetUserProfile(c.Request.Context(), userID, viewerID(c))
	if err != nil {
		if stderrors.Is(err, feed.ErrUserNotFound) {
			util.RespondNotFound(c, "user")
			return
		}
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"profile": profile})
}

// GetUserPosts lists a user's posts under profile visibility rules.
func (h *Handlers) GetUserPosts(c *gin.Context) {
	userID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid user id")
		return
	}
	limit, offset := util.Pagination(c, 20, 100)

	posts, err := h.feed.GetUserPosts(c.Request.Context(), userID, viewerID(c), limit, offset)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"posts": posts})
}

// Explore serves the discovery page: accounts worth following and the most
// used hashtags.
func (h *Handlers) Explore(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	users, err := h.feed.SuggestedUsers(c.Request.Context(), userID, 10)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	tags, err := h.feed.TrendingHashtags(c.Request.Context(), 10)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, "", gin.H{
		"suggested_users":   users,
		"trending_hashtags": tags,
	})
}
