package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/comments"
	"github.com/flixsy/backend/internal/errors"
	"github.com/flixsy/backend/internal/metrics"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// ListComments returns a post's comment threads.
func (h *Handlers) ListComments(c *gin.Context) {
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	threads, err := h.comments.ListComments(c.Request.Context(), postID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"comments": threads})
}

type addCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// AddComment creates a comment or reply on a post.
func (h *Handlers) AddComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), userID, postID, req.Content, req.ParentID)
	if err != nil {
		switch {
		case stderrors.Is(err, comments.ErrEmptyContent):
			util.RespondWithAPIError(c, errors.ValidationError("content", "comment cannot be empty"))
		case stderrors.Is(err, comments.ErrContentTooLong):
			util.RespondWithAPIError(c, errors.ValidationError("content", "comment must be 1000 characters or fewer"))
		case stderrors.Is(err, comments.ErrPostNotFound):
			util.RespondNotFound(c, "post")
		case stderrors.Is(err, comments.ErrParentNotFound):
			util.RespondNotFound(c, "parent comment")
		default:
			util.RespondError(c, err)
		}
		return
	}

	metrics.Get().CommentsCreated.Inc()
	util.RespondCreated(c, "comment added", gin.H{"comment": comment})
}

// DeleteComment removes a comment and its replies. Author or admin only.
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	commentID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid comment id")
		return
	}

	deleted, err := h.comments.DeleteComment(c.Request.Context(), userID, commentID)
	if err != nil {
		switch {
		case stderrors.Is(err, comments.ErrCommentNotFound):
			util.RespondNotFound(c, "comment")
		case stderrors.Is(err, comments.ErrForbidden):
			util.RespondForbidden(c)
		default:
			util.RespondError(c, err)
		}
		return
	}

	util.RespondSuccess(c, "comment deleted", gin.H{"deleted": deleted})
}
