package feed

import (
	"context"
	"testing"
	"time"

	"github.com/flixsy/backend/internal/database"
	"github.com/flixsy/backend/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type FeedServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	ctx     context.Context

	viewer   models.User
	followed models.User
	stranger models.User
}

func (s *FeedServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))

	s.db = db
	s.service = NewService(db)
	s.ctx = context.Background()

	s.viewer = models.User{Username: "viewer", Email: "viewer@example.com", PasswordHash: "x", Level: 1}
	s.followed = models.User{Username: "followed", Email: "followed@example.com", PasswordHash: "x", Level: 1}
	s.stranger = models.User{Username: "stranger", Email: "stranger@example.com", PasswordHash: "x", Level: 1}
	for _, u := range []*models.User{&s.viewer, &s.followed, &s.stranger} {
		s.Require().NoError(db.Create(u).Error)
	}
	s.Require().NoError(db.Create(&models.Follow{FollowerID: s.viewer.ID, FolloweeID: s.followed.ID}).Error)
}

func (s *FeedServiceTestSuite) createPost(userID uint, caption string, privacy models.Privacy, age time.Duration) models.Post {
	post := models.Post{
		UserID:    userID,
		Caption:   caption,
		Privacy:   privacy,
		CreatedAt: time.Now().UTC().Add(-age),
	}
	s.Require().NoError(s.db.Create(&post).Error)
	return post
}

func (s *FeedServiceTestSuite) captions(posts []PostView) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Caption
	}
	return out
}

func (s *FeedServiceTestSuite) TestFeedScopeAndOrder() {
	s.createPost(s.viewer.ID, "own", models.PrivacyPublic, 3*time.Hour)
	s.createPost(s.followed.ID, "followed public", models.PrivacyPublic, 2*time.Hour)
	s.createPost(s.followed.ID, "followed followers-only", models.PrivacyFollowers, time.Hour)
	s.createPost(s.followed.ID, "followed private", models.PrivacyPrivate, 30*time.Minute)
	s.createPost(s.stranger.ID, "stranger public", models.PrivacyPublic, time.Minute)

	posts, err := s.service.GetFeed(s.ctx, s.viewer.ID, 20, 0)
	s.Require().NoError(err)

	s.Equal([]string{"followed followers-only", "followed public", "own"}, s.captions(posts))
}

func (s *FeedServiceTestSuite) TestFeedExcludesArchivedAndBanned() {
	post := s.createPost(s.followed.ID, "soon archived", models.PrivacyPublic, time.Hour)
	s.createPost(s.followed.ID, "kept", models.PrivacyPublic, 2*time.Hour)

	s.db.Model(&models.Post{}).Where("id = ?", post.ID).Update("is_archived", true)

	posts, err := s.service.GetFeed(s.ctx, s.viewer.ID, 20, 0)
	s.Require().NoError(err)
	s.Equal([]string{"kept"}, s.captions(posts))

	s.db.Model(&models.User{}).Where("id = ?", s.followed.ID).Update("is_banned", true)
	posts, err = s.service.GetFeed(s.ctx, s.viewer.ID, 20, 0)
	s.Require().NoError(err)
	s.Empty(posts)
}

func (s *FeedServiceTestSuite) TestFeedAnnotatesViewerLiked() {
	post := s.createPost(s.followed.ID, "liked one", models.PrivacyPublic, time.Hour)
	s.createPost(s.followed.ID, "other", models.PrivacyPublic, 2*time.Hour)
	s.Require().NoError(s.db.Create(&models.Like{UserID: s.viewer.ID, PostID: post.ID}).Error)

	posts, err := s.service.GetFeed(s.ctx, s.viewer.ID, 20, 0)
	s.Require().NoError(err)
	s.Require().Len(posts, 2)
	s.True(posts[0].ViewerLiked)
	s.False(posts[1].ViewerLiked)
}

func (s *FeedServiceTestSuite) TestTrendingScore() {
	low := s.createPost(s.stranger.ID, "low", models.PrivacyPublic, time.Hour)
	high := s.createPost(s.stranger.ID, "high", models.PrivacyPublic, 2*time.Hour)
	s.createPost(s.stranger.ID, "stale", models.PrivacyPublic, 30*24*time.Hour)
	s.createPost(s.stranger.ID, "followers only", models.PrivacyFollowers, time.Hour)

	// high: 3*2 + 5*1 + 10*1 + 4 = 25; low: 3*1 = 3.
	s.db.Model(&models.Post{}).Where("id = ?", high.ID).Updates(map[string]interface{}{
		"likes_count": 2, "comments_count": 1, "shares_count": 1, "views_count": 4,
	})
	s.db.Model(&models.Post{}).Where("id = ?", low.ID).UpdateColumn("likes_count", 1)

	posts, err := s.service.GetTrendingPosts(s.ctx, 10, 7)
	s.Require().NoError(err)
	s.Equal([]string{"high", "low"}, s.captions(posts))
}

func (s *FeedServiceTestSuite) TestProfileCountsAndFollowState() {
	s.createPost(s.followed.ID, "a", models.PrivacyPublic, time.Hour)
	s.createPost(s.followed.ID, "b", models.PrivacyPublic, 2*time.Hour)
	archived := s.createPost(s.followed.ID, "c", models.PrivacyPublic, 3*time.Hour)
	s.db.Model(&models.Post{}).Where("id = ?", archived.ID).Update("is_archived", true)

	profile, err := s.service.GetUserProfile(s.ctx, s.followed.ID, s.viewer.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), profile.FollowerCount)
	s.Equal(int64(0), profile.FollowingCount)
	s.Equal(int64(2), profile.PostCount, "archived posts are not counted")
	s.True(profile.IsFollowing)

	anon, err := s.service.GetUserProfile(s.ctx, s.followed.ID, 0)
	s.Require().NoError(err)
	s.False(anon.IsFollowing)

	_, err = s.service.GetUserProfile(s.ctx, 9999, 0)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *FeedServiceTestSuite) TestUserPostsVisibility() {
	s.createPost(s.followed.ID, "public", models.PrivacyPublic, time.Hour)
	s.createPost(s.followed.ID, "followers", models.PrivacyFollowers, 2*time.Hour)
	s.createPost(s.followed.ID, "private", models.PrivacyPrivate, 3*time.Hour)

	// A follower sees public and followers-only.
	posts, err := s.service.GetUserPosts(s.ctx, s.followed.ID, s.viewer.ID, 20, 0)
	s.Require().NoError(err)
	s.Equal([]string{"public", "followers"}, s.captions(posts))

	// A stranger sees public only.
	posts, err = s.service.GetUserPosts(s.ctx, s.followed.ID, s.stranger.ID, 20, 0)
	s.Require().NoError(err)
	s.Equal([]string{"public"}, s.captions(posts))

	// The owner sees everything.
	posts, err = s.service.GetUserPosts(s.ctx, s.followed.ID, s.followed.ID, 20, 0)
	s.Require().NoError(err)
	s.Len(posts, 3)
}

func (s *FeedServiceTestSuite) TestGetPostVisibilityAndViews() {
	post := s.createPost(s.followed.ID, "followers only", models.PrivacyFollowers, time.Hour)

	// A follower can view; the view bumps the counter.
	got, err := s.service.GetPost(s.ctx, post.ID, s.viewer.ID)
	s.Require().NoError(err)
	s.Equal(1, got.ViewsCount)

	// A stranger gets not-found rather than forbidden, hiding existence.
	_, err = s.service.GetPost(s.ctx, post.ID, s.stranger.ID)
	s.ErrorIs(err, ErrPostNotFound)

	// The owner's view does not count.
	got, err = s.service.GetPost(s.ctx, post.ID, s.followed.ID)
	s.Require().NoError(err)
	s.Equal(1, got.ViewsCount)
}

func (s *FeedServiceTestSuite) TestSuggestedUsers() {
	suggestions, err := s.service.SuggestedUsers(s.ctx, s.viewer.ID, 10)
	s.Require().NoError(err)

	// Already-followed and self are excluded.
	s.Require().Len(suggestions, 1)
	s.Equal("stranger", suggestions[0].Username)
}

func (s *FeedServiceTestSuite) TestTrendingHashtags() {
	tags := []models.Hashtag{
		{Tag: "golang", UsageCount: 5},
		{Tag: "music", UsageCount: 9},
		{Tag: "unused", UsageCount: 0},
	}
	for i := range tags {
		s.Require().NoError(s.db.Create(&tags[i]).Error)
	}

	got, err := s.service.TrendingHashtags(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("music", got[0].Tag)
	s.Equal("golang", got[1].Tag)
}

func TestFeedServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FeedServiceTestSuite))
}
