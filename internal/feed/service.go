package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flixsy/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
)

// Service answers the read-side queries: the home feed, trending, profiles
// and the explore page. It never mutates anything except post view counts.
type Service struct {
	db *gorm.DB
}

// NewService creates a feed service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// PostView is a post annotated with its author's public fields and whether
// the requesting viewer has liked it.
type PostView struct {
	models.Post
	Username    string `json:"username"`
	ProfilePic  string `json:"profile_pic"`
	IsVerified  bool   `json:"is_verified"`
	ViewerLiked bool   `json:"viewer_liked"`
}

// Profile is a user with live graph counts.
type Profile struct {
	models.User
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
	PostCount      int64 `json:"post_count"`
	IsFollowing    bool  `json:"is_following"`
}

const postSelect = "posts.*, users.username, users.profile_pic, users.is_verified"

// visiblePosts applies the author and archive filters shared by every feed
// query: the author must not be banned and the post must not be archived.
func (s *Service) visiblePosts(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("posts").
		Joins("JOIN users ON users.id = posts.user_id").
		Where("users.is_banned = ?", false).
		Where("posts.is_archived = ?", false)
}

// withViewerLiked annotates each row with an EXISTS probe against likes so
// the client can render like state without a second round trip.
func withViewerLiked(q *gorm.DB, viewerID uint) *gorm.DB {
	return q.Select(postSelect+
		", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS viewer_liked",
		viewerID)
}

// GetFeed returns the viewer's own posts plus those of users they follow,
// newest first. Follower-only posts are included because followed authors
// have, by definition, granted the viewer access.
func (s *Service) GetFeed(ctx context.Context, viewerID uint, limit, offset int) ([]PostView, error) {
	var posts []PostView
	err := withViewerLiked(s.visiblePosts(ctx), viewerID).
		Where("(posts.user_id = ? OR posts.user_id IN (?))",
			viewerID,
			s.db.Table("follows").Select("followee_id").Where("follower_id = ?", viewerID)).
		Where("posts.privacy IN ?", []models.Privacy{models.PrivacyPublic, models.PrivacyFollowers}).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).Offset(offset).
		Scan(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("feed query: %w", err)
	}
	return posts, nil
}

// GetTrendingPosts ranks public posts from the trailing window by a weighted
// engagement score. The cutoff is computed here rather than in SQL so the
// query stays portable across drivers.
func (s *Service) GetTrendingPosts(ctx context.Context, limit, withinDays int) ([]PostView, error) {
	if withinDays <= 0 {
		withinDays = 7
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -withinDays)

	var posts []PostView
	err := s.visiblePosts(ctx).
		Select(postSelect).
		Where("posts.privacy = ?", models.PrivacyPublic).
		Where("posts.created_at >= ?", cutoff).
		Order("(3 * posts.likes_count + 5 * posts.comments_count + 10 * posts.shares_count + posts.views_count) DESC, posts.id ASC").
		Limit(limit).
		Scan(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("trending query: %w", err)
	}
	return posts, nil
}

// GetUserProfile loads a user with live counts. When viewerID is non-zero the
// is_following flag is resolved with a second parameterized query; there is
// no string-assembled SQL variant.
func (s *Service) GetUserProfile(ctx context.Context, userID, viewerID uint) (*Profile, error) {
	var profile Profile
	err := s.db.WithContext(ctx).First(&profile.User, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("profile lookup: %w", err)
	}

	base := s.db.WithContext(ctx)
	if err := base.Model(&models.Follow{}).Where("followee_id = ?", userID).
		Count(&profile.FollowerCount).Error; err != nil {
		return nil, fmt.Errorf("follower count: %w", err)
	}
	if err := base.Model(&models.Follow{}).Where("follower_id = ?", userID).
		Count(&profile.FollowingCount).Error; err != nil {
		return nil, fmt.Errorf("following count: %w", err)
	}
	if err := base.Model(&models.Post{}).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Count(&profile.PostCount).Error; err != nil {
		return nil, fmt.Errorf("post count: %w", err)
	}

	if viewerID != 0 && viewerID != userID {
		var edges int64
		if err := base.Model(&models.Follow{}).
			Where("follower_id = ? AND followee_id = ?", viewerID, userID).
			Count(&edges).Error; err != nil {
			return nil, fmt.Errorf("is_following probe: %w", err)
		}
		profile.IsFollowing = edges > 0
	}

	return &profile, nil
}

// GetUserPosts lists a user's posts for their profile page. The owner sees
// everything including archived posts; everyone else sees only what the
// privacy setting and follow state allow.
func (s *Service) GetUserPosts(ctx context.Context, userID, viewerID uint, limit, offset int) ([]PostView, error) {
	var posts []PostView

	if viewerID == userID {
		err := withViewerLiked(
			s.db.WithContext(ctx).Table("posts").
				Joins("JOIN users ON users.id = posts.user_id").
				Where("posts.user_id = ?", userID),
			viewerID).
			Order("posts.created_at DESC, posts.id DESC").
			Limit(limit).Offset(offset).
			Scan(&posts).Error
		if err != nil {
			return nil, fmt.Errorf("own posts query: %w", err)
		}
		return posts, nil
	}

	q := s.visiblePosts(ctx).Where("posts.user_id = ?", userID)
	if viewerID != 0 && s.follows(ctx, viewerID, userID) {
		q = q.Where("posts.privacy IN ?", []models.Privacy{models.PrivacyPublic, models.PrivacyFollowers})
	} else {
		q = q.Where("posts.privacy = ?", models.PrivacyPublic)
	}

	err := withViewerLiked(q, viewerID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).Offset(offset).
		Scan(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("user posts query: %w", err)
	}
	return posts, nil
}

// GetPost fetches a single post, enforcing the same visibility rules as the
// feed, and bumps its view count for non-owner viewers.
func (s *Service) GetPost(ctx context.Context, postID, viewerID uint) (*PostView, error) {
	var post PostView
	err := withViewerLiked(
		s.db.WithContext(ctx).Table("posts").
			Joins("JOIN users ON users.id = posts.user_id").
			Where("posts.id = ?", postID),
		viewerID).
		Scan(&post).Error
	if err != nil {
		return nil, fmt.Errorf("post query: %w", err)
	}
	if post.ID == 0 {
		return nil, ErrPostNotFound
	}

	if post.UserID != viewerID {
		if !s.canView(ctx, &post.Post, viewerID) {
			return nil, ErrPostNotFound
		}
		if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
			return nil, fmt.Errorf("bump views_count: %w", err)
		}
		post.ViewsCount++
	}

	return &post, nil
}

// SuggestedUsers returns unbanned users the viewer does not already follow,
// ordered by follower count so established accounts surface first.
func (s *Service) SuggestedUsers(ctx context.Context, viewerID uint, limit int) ([]Profile, error) {
	var users []Profile
	err := s.db.WithContext(ctx).
		Table("users").
		Select("users.*, (SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) AS follower_count").
		Where("users.is_banned = ?", false).
		Where("users.id <> ?", viewerID).
		Where("users.id NOT IN (?)",
			s.db.Table("follows").Select("followee_id").Where("follower_id = ?", viewerID)).
		Order("follower_count DESC, users.id ASC").
		Limit(limit).
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("suggested users query: %w", err)
	}
	return users, nil
}

// TrendingHashtags returns the most used tags.
func (s *Service) TrendingHashtags(ctx context.Context, limit int) ([]models.Hashtag, error) {
	var tags []models.Hashtag
	err := s.db.WithContext(ctx).
		Where("usage_count > 0").
		Order("usage_count DESC, tag ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("trending hashtags query: %w", err)
	}
	return tags, nil
}

func (s *Service) follows(ctx context.Context, followerID, followeeID uint) bool {
	var n int64
	s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n)
	return n > 0
}

func (s *Service) canView(ctx context.Context, post *models.Post, viewerID uint) bool {
	if post.IsArchived {
		return false
	}
	switch post.Privacy {
	case models.PrivacyPublic:
		return true
	case models.PrivacyFollowers:
		return viewerID != 0 && s.follows(ctx, viewerID, post.UserID)
	default:
		return false
	}
}
