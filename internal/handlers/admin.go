package handlers

import (
	stderrors "errors"
	"time"

	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardStats is the admin overview payload.
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalPosts    int64 `json:"total_posts"`
	TotalComments int64 `json:"total_comments"`
	TotalLikes    int64 `json:"total_likes"`
	ActiveStories int64 `json:"active_stories"`
	BannedUsers   int64 `json:"banned_users"`
	SignupsToday  int64 `json:"signups_today"`
	PostsToday    int64 `json:"posts_today"`

	TopUsers        []models.User   `json:"top_users"`
	SectorBreakdown []SectorSummary `json:"sector_breakdown"`
}

// SectorSummary is one row of the per-sector user count.
type SectorSummary struct {
	Sector string `json:"sector"`
	Users  int64  `json:"users"`
}

// AdminStats builds the dashboard numbers.
func (h *Handlers) AdminStats(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var stats DashboardStats
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{})},
		{&stats.TotalPosts, db.Model(&models.Post{})},
		{&stats.TotalComments, db.Model(&models.Comment{})},
		{&stats.TotalLikes, db.Model(&models.Like{})},
		{&stats.ActiveStories, db.Model(&models.Story{}).Where("expires_at > ?", now)},
		{&stats.BannedUsers, db.Model(&models.User{}).Where("is_banned = ?", true)},
		{&stats.SignupsToday, db.Model(&models.User{}).Where("created_at >= ?", startOfDay)},
		{&stats.PostsToday, db.Model(&models.Post{}).Where("created_at >= ?", startOfDay)},
	}
	for _, cnt := range counts {
		if err := cnt.query.Count(cnt.dest).Error; err != nil {
			util.RespondError(c, err)
			return
		}
	}

	if err := db.Where("is_banned = ?", false).
		Order("xp DESC").Limit(5).Find(&stats.TopUsers).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	if err := db.Model(&models.User{}).
		Select("sector, COUNT(*) AS users").
		Where("sector <> ''").
		Group("sector").
		Order("users DESC").
		Scan(&stats.SectorBreakdown).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, "", gin.H{"stats": stats})
}

// BanUser flags an account as banned. Banned users cannot log in and their
// content disappears from every feed.
func (h *Handlers) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

// UnbanUser lifts a ban.
func (h *Handlers) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *Handlers) setBanned(c *gin.Context, banned bool) {
	userID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid user id")
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	} else if err != nil {
		util.RespondError(c, err)
		return
	}

	if user.IsAdmin && banned {
		util.RespondForbidden(c, "admins cannot be banned")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(&user).
		Update("is_banned", banned).Error; err != nil {
		util.RespondError(c, err)
		return
	}

	msg := "user unbanned"
	if banned {
		msg = "user banned"
	}
	util.RespondSuccess(c, msg, gin.H{"user_id": userID, "is_banned": banned})
}
