package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/social"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// ToggleFollow follows the target when no edge exists and unfollows when one
// does. The response names the action taken plus live counts.
func (h *Handlers) ToggleFollow(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid user id")
		return
	}

	result, err := h.social.ToggleFollow(c.Request.Context(), userID, targetID)
	if err != nil {
		switch {
		case stderrors.Is(err, social.ErrSelfFollow):
			util.RespondBadRequest(c, "you cannot follow yourself")
		case stderrors.Is(err, social.ErrInvalidTarget):
			util.RespondNotFound(c, "user")
		default:
			util.RespondError(c, err)
		}
		return
	}

	util.RespondSuccess(c, "", gin.H{
		"action":           result.Action,
		"target_followers": result.FollowerCount,
		"your_following":   result.FollowingCount,
	})
}

// ToggleLike likes the post when no edge exists and unlikes when one does.
func (h *Handlers) ToggleLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	result, err := h.social.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		if stderrors.Is(err, social.ErrPostNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, "", gin.H{
		"action":    result.Action,
		"new_count": result.NewCount,
	})
}
