package gamification

import (
	"context"
	"fmt"

	"github.com/flixsy/backend/internal/metrics"
	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/notifications"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// xpPerLevel is the XP required for each level step: level = floor(xp/100)+1.
const xpPerLevel = 100

// badgeLevelInterval controls which level-ups award a milestone badge.
const badgeLevelInterval = 5

// xpTable maps user actions to XP amounts. Unknown actions are a no-op.
var xpTable = map[string]int{
	"post":        10,
	"comment":     5,
	"like":        2,
	"follow":      3,
	"story":       8,
	"stream":      15,
	"daily_login": 5,
}

// LevelForXP computes the derived level for an XP total.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}

// Service maintains the XP ledger, levels and badges.
type Service struct {
	db *gorm.DB
}

// NewService creates a gamification service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Grant accrues XP for an action on the caller's handle. Callers already
// inside a transaction pass their tx so the ledger row, the counter bump and
// any level-up side effects commit atomically with the triggering action.
// Unknown actions do nothing and return nil.
func Grant(tx *gorm.DB, userID uint, action string) error {
	amount, ok := xpTable[action]
	if !ok {
		return nil
	}

	entry := models.XPLogEntry{UserID: userID, Action: action, XPAmount: amount}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append xp log: %w", err)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("xp", gorm.Expr("xp + ?", amount)).Error; err != nil {
		return fmt.Errorf("increment xp: %w", err)
	}

	metrics.Get().XPGrantedTotal.WithLabelValues(action).Add(float64(amount))
	return checkLevelUp(tx, userID)
}

// AddXP is the standalone entry point: it wraps Grant in its own transaction.
func (s *Service) AddXP(ctx context.Context, userID uint, action string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return Grant(tx, userID, action)
	})
}

// checkLevelUp recomputes the derived level and, when it rises, records it,
// celebrates with a system notification, and awards milestone badges. Level
// only ever moves up here, so it is monotonic even if XP rows race.
func checkLevelUp(tx *gorm.DB, userID uint) error {
	var user models.User
	if err := tx.Select("id", "xp", "level").First(&user, userID).Error; err != nil {
		return fmt.Errorf("load user for level check: %w", err)
	}

	newLevel := LevelForXP(user.XP)
	if newLevel <= user.Level {
		return nil
	}

	if err := tx.Model(&user).UpdateColumn("level", newLevel).Error; err != nil {
		return fmt.Errorf("update level: %w", err)
	}

	msg := fmt.Sprintf("Congratulations! You've reached level %d!", newLevel)
	if err := notifications.Create(tx, userID, nil, models.NotificationSystem, msg, "/profile"); err != nil {
		return err
	}

	if newLevel%badgeLevelInterval == 0 {
		name := fmt.Sprintf("Level %d Master", newLevel)
		desc := fmt.Sprintf("Reached level %d", newLevel)
		if err := AwardBadge(tx, userID, name, desc); err != nil {
			return err
		}
	}
	return nil
}

// AwardBadge awards a named badge once per user. Re-awarding the same badge
// is a no-op thanks to the (user_id, name) unique index plus conflict-ignore,
// and only a fresh award produces a notification.
func AwardBadge(tx *gorm.DB, userID uint, name, description string) error {
	badge := models.Badge{UserID: userID, Name: name, Description: description}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge)
	if res.Error != nil {
		return fmt.Errorf("award badge: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	msg := fmt.Sprintf("You earned the %q badge!", name)
	return notifications.Create(tx, userID, nil, models.NotificationBadge, msg, "/profile")
}

// LeaderboardEntry is a ranked user with a live follower count.
type LeaderboardEntry struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	ProfilePic     string `json:"profile_pic"`
	Sector         string `json:"sector"`
	XP             int    `json:"xp"`
	Level          int    `json:"level"`
	IsVerified     bool   `json:"is_verified"`
	FollowersCount int64  `json:"followers_count"`
}

// GetLeaderboard ranks unbanned users by XP then level, optionally filtered
// by sector ("all" or empty means no filter).
func (s *Service) GetLeaderboard(ctx context.Context, sector string, limit int) ([]LeaderboardEntry, error) {
	q := s.db.WithContext(ctx).
		Table("users").
		Select(`users.id, users.username, users.profile_pic, users.sector, users.xp,
			users.level, users.is_verified,
			(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) AS followers_count`).
		Where("users.is_banned = ?", false)

	if sector != "" && sector != "all" {
		q = q.Where("users.sector = ?", sector)
	}

	var entries []LeaderboardEntry
	err := q.Order("users.xp DESC").Order("users.level DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	return entries, nil
}

// Badges lists a user's awards, newest first.
func (s *Service) Badges(ctx context.Context, userID uint) ([]models.Badge, error) {
	var badges []models.Badge
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&badges).Error
	return badges, err
}
