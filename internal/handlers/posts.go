package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/errors"
	"github.com/flixsy/backend/internal/feed"
	"github.com/flixsy/backend/internal/metrics"
	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/posts"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

type createPostRequest struct {
	Caption   string `json:"caption"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
	Privacy   string `json:"privacy"`
}

// CreatePost publishes a post. Media must already be uploaded; this endpoint
// only records its URL.
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, posts.CreateInput{
		Caption:   req.Caption,
		MediaURL:  req.MediaURL,
		MediaType: models.MediaType(req.MediaType),
		Privacy:   models.Privacy(req.Privacy),
	})
	if err != nil {
		if stderrors.Is(err, posts.ErrEmptyPost) {
			util.RespondWithAPIError(c, errors.ValidationError("caption", "post needs a caption or media"))
			return
		}
		util.RespondError(c, err)
		return
	}

	metrics.Get().PostsCreated.Inc()
	util.RespondCreated(c, "post created", gin.H{"post": post})
}

// GetPost returns one post under feed visibility rules.
func (h *Handlers) GetPost(c *gin.Context) {
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	post, err := h.feed.GetPost(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		if stderrors.Is(err, feed.ErrPostNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"post": post})
}

type archivePostRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

// ArchivePost hides or unhides the caller's post.
func (h *Handlers) ArchivePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	var req archivePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "archived flag is required")
		return
	}

	err := h.posts.Archive(c.Request.Context(), userID, postID, *req.Archived)
	if err != nil {
		respondPostWriteError(c, err)
		return
	}
	util.RespondSuccess(c, "post updated", nil)
}

// DeletePost removes a post. Owner or admin only.
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	if err := h.posts.Delete(c.Request.Context(), userID, postID); err != nil {
		respondPostWriteError(c, err)
		return
	}
	util.RespondSuccess(c, "post deleted", nil)
}

func respondPostWriteError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, posts.ErrPostNotFound):
		util.RespondNotFound(c, "post")
	case stderrors.Is(err, posts.ErrForbidden):
		util.RespondForbidden(c)
	default:
		util.RespondError(c, err)
	}
}
