package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/errors"
	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/stories"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

type createStoryRequest struct {
	MediaURL  string `json:"media_url" binding:"required"`
	MediaType string `json:"media_type"`
}

// CreateStory posts an ephemeral story.
func (h *Handlers) CreateStory(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithAPIError(c, errors.ValidationError("media_url", "story needs media"))
		return
	}

	story, err := h.stories.Create(c.Request.Context(), userID, req.MediaURL, models.MediaType(req.MediaType))
	if err != nil {
		if stderrors.Is(err, stories.ErrMissingMedia) {
			util.RespondWithAPIError(c, errors.ValidationError("media_url", "story needs media"))
			return
		}
		util.RespondError(c, err)
		return
	}
	util.RespondCreated(c, "story posted", gin.H{"story": story})
}

// GetStories returns the caller's active story reel.
func (h *Handlers) GetStories(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	reel, err := h.stories.ActiveForViewer(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"stories": reel})
}

// ViewStory records that the caller watched a story.
func (h *Handlers) ViewStory(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	storyID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid story id")
		return
	}

	if err := h.stories.View(c.Request.Context(), storyID, userID); err != nil {
		if stderrors.Is(err, stories.ErrStoryNotFound) {
			util.RespondNotFound(c, "story")
			return
		}
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "story viewed", nil)
}
