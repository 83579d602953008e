package handlers

import (
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetLeaderboard ranks users by XP, optionally within one sector.
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	sector := c.DefaultQuery("sector", "all")
	limit, _ := util.Pagination(c, 25, 100)

	entries, err := h.gamification.GetLeaderboard(c.Request.Context(), sector, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"leaderboard": entries})
}

// GetBadges lists a user's earned badges.
func (h *Handlers) GetBadges(c *gin.Context) {
	userID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid user id")
		return
	}

	badges, err := h.gamification.Badges(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"badges": badges})
}
