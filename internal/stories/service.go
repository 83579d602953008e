package stories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flixsy/backend/internal/gamification"
	"github.com/flixsy/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lifetime is how long a story stays visible after creation.
const Lifetime = 24 * time.Hour

var (
	ErrMissingMedia  = errors.New("story needs media")
	ErrStoryNotFound = errors.New("story not found")
)

// Service owns ephemeral stories: creation with a fixed expiry, the viewer
// feed, and per-viewer view tracking.
type Service struct {
	db *gorm.DB
}

// NewService creates a story service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create posts a story expiring 24 hours from now and grants XP in the same
// transaction.
func (s *Service) Create(ctx context.Context, userID uint, mediaURL string, mediaType models.MediaType) (*models.Story, error) {
	if mediaURL == "" {
		return nil, ErrMissingMedia
	}

	story := models.Story{
		UserID:    userID,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		ExpiresAt: time.Now().UTC().Add(Lifetime),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&story).Error; err != nil {
			return fmt.Errorf("insert story: %w", err)
		}
		return gamification.Grant(tx, userID, "story")
	})
	if err != nil {
		return nil, err
	}

	return &story, nil
}

// StoryView is a story annotated with its author and whether the requesting
// viewer has already seen it.
type StoryView struct {
	models.Story
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	Seen       bool   `json:"seen"`
}

// ActiveForViewer returns unexpired stories from the viewer and the users
// they follow, oldest first so clients play them in posting order.
func (s *Service) ActiveForViewer(ctx context.Context, viewerID uint) ([]StoryView, error) {
	var stories []StoryView
	err := s.db.WithContext(ctx).
		Table("stories").
		Select("stories.*, users.username, users.profile_pic, "+
			"EXISTS(SELECT 1 FROM story_views WHERE story_views.story_id = stories.id AND story_views.user_id = ?) AS seen",
			viewerID).
		Joins("JOIN users ON users.id = stories.user_id").
		Where("users.is_banned = ?", false).
		Where("stories.is_archived = ?", false).
		Where("stories.expires_at > ?", time.Now().UTC()).
		Where("(stories.user_id = ? OR stories.user_id IN (?))",
			viewerID,
			s.db.Table("follows").Select("followee_id").Where("follower_id = ?", viewerID)).
		Order("stories.created_at ASC, stories.id ASC").
		Scan(&stories).Error
	if err != nil {
		return nil, fmt.Errorf("active stories query: %w", err)
	}
	return stories, nil
}

// View records that a viewer watched a story. The first view per viewer
// bumps views_count; repeats are no-ops thanks to the unique pair index.
func (s *Service) View(ctx context.Context, storyID, viewerID uint) error {
	var story models.Story
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", storyID, time.Now().UTC()).
		First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStoryNotFound
	} else if err != nil {
		return fmt.Errorf("story lookup: %w", err)
	}

	if story.UserID == viewerID {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view := models.StoryView{StoryID: storyID, UserID: viewerID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view)
		if res.Error != nil {
			return fmt.Errorf("insert story view: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Story{}).Where("id = ?", storyID).
			UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	})
}
