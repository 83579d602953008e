package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/flixsy/backend/internal/gamification"
	"github.com/flixsy/backend/internal/logger"
	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/notifications"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSelfFollow    = errors.New("cannot follow yourself")
	ErrInvalidTarget = errors.New("target user not found or banned")
	ErrPostNotFound  = errors.New("post not found")
)

// Service owns the follow and like toggles. Edge mutation and counter
// maintenance always travel in one transaction so the denormalized counts
// cannot drift from the join tables.
type Service struct {
	db *gorm.DB
}

// NewService creates a social-graph service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FollowResult reports the toggle outcome with live counts.
type FollowResult struct {
	Action         string `json:"action"` // "followed" or "unfollowed"
	FollowerCount  int64  `json:"target_followers"`
	FollowingCount int64  `json:"your_following"`
}

// ToggleFollow follows the target if no edge exists, unfollows otherwise.
// The follow path grants XP and notifies the target; the unfollow path does
// neither. A concurrent insert losing to the unique index is reported as a
// successful follow: the edge exists, which is what the caller asked for.
func (s *Service) ToggleFollow(ctx context.Context, followerID, targetID uint) (*FollowResult, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	var target models.User
	err := s.db.WithContext(ctx).First(&target, targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidTarget
	} else if err != nil {
		return nil, fmt.Errorf("target lookup: %w", err)
	}
	if target.IsBanned {
		return nil, ErrInvalidTarget
	}

	result := &FollowResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Follow
		findErr := tx.Where("follower_id = ? AND followee_id = ?", followerID, targetID).
			First(&existing).Error

		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("delete follow edge: %w", err)
			}
			result.Action = "unfollowed"
			return nil

		case errors.Is(findErr, gorm.ErrRecordNotFound):
			edge := models.Follow{FollowerID: followerID, FolloweeID: targetID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
			if res.Error != nil {
				return fmt.Errorf("insert follow edge: %w", res.Error)
			}
			result.Action = "followed"
			if res.RowsAffected == 0 {
				// Lost a race with an identical follow; the edge exists,
				// so skip the side effects and report success.
				return nil
			}
			if err := gamification.Grant(tx, followerID, "follow"); err != nil {
				return err
			}
			link := fmt.Sprintf("/profile/%d", followerID)
			return notifications.Create(tx, targetID, &followerID, models.NotificationFollow,
				"started following you", link)

		default:
			return fmt.Errorf("follow lookup: %w", findErr)
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", targetID).Count(&result.FollowerCount).Error; err != nil {
		return nil, fmt.Errorf("follower count: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", followerID).Count(&result.FollowingCount).Error; err != nil {
		return nil, fmt.Errorf("following count: %w", err)
	}

	logger.Log.Debug("follow toggled",
		logger.WithUserID(followerID),
		zap.Uint("target_id", targetID),
		zap.String("action", result.Action),
	)
	return result, nil
}

// LikeResult reports the toggle outcome with the post's updated count.
type LikeResult struct {
	Action   string `json:"action"` // "liked" or "unliked"
	NewCount int    `json:"new_count"`
}

// ToggleLike likes the post if no edge exists, unlikes otherwise. The like
// path increments likes_count, grants XP and notifies the post owner (unless
// the actor owns the post); the unlike path decrements floored at zero.
func (s *Service) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, fmt.Errorf("post lookup: %w", err)
	}

	result := &LikeResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		findErr := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			First(&existing).Error

		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("delete like edge: %w", err)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count",
					gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error; err != nil {
				return fmt.Errorf("decrement likes_count: %w", err)
			}
			result.Action = "unliked"
			return nil

		case errors.Is(findErr, gorm.ErrRecordNotFound):
			edge := models.Like{UserID: userID, PostID: postID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
			if res.Error != nil {
				return fmt.Errorf("insert like edge: %w", res.Error)
			}
			result.Action = "liked"
			if res.RowsAffected == 0 {
				return nil
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return fmt.Errorf("increment likes_count: %w", err)
			}
			if err := gamification.Grant(tx, userID, "like"); err != nil {
				return err
			}
			if post.UserID != userID {
				link := fmt.Sprintf("/posts/%d", postID)
				return notifications.Create(tx, post.UserID, &userID, models.NotificationLike,
					"liked your post", link)
			}
			return nil

		default:
			return fmt.Errorf("like lookup: %w", findErr)
		}
	})
	if err != nil {
		return nil, err
	}

	var updated models.Post
	if err := s.db.WithContext(ctx).Select("likes_count").First(&updated, postID).Error; err != nil {
		return nil, fmt.Errorf("reload post count: %w", err)
	}
	result.NewCount = updated.LikesCount

	logger.Log.Debug("like toggled",
		logger.WithUserID(userID),
		logger.WithPostID(postID),
		zap.String("action", result.Action),
	)
	return result, nil
}
