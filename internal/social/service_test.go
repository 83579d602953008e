package social

import (
	"context"
	"testing"

	"github.com/flixsy/backend/internal/database"
	"github.com/flixsy/backend/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SocialServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	ctx     context.Context

	alice models.User
	bob   models.User
}

func (s *SocialServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))

	s.db = db
	s.service = NewService(db)
	s.ctx = context.Background()

	s.alice = models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Level: 1}
	s.bob = models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x", Level: 1}
	s.Require().NoError(db.Create(&s.alice).Error)
	s.Require().NoError(db.Create(&s.bob).Error)
}

func (s *SocialServiceTestSuite) notificationsFor(userID uint) []models.Notification {
	var out []models.Notification
	s.Require().NoError(s.db.Where("user_id = ?", userID).Find(&out).Error)
	return out
}

func (s *SocialServiceTestSuite) xpOf(userID uint) int {
	var user models.User
	s.Require().NoError(s.db.First(&user, userID).Error)
	return user.XP
}

func (s *SocialServiceTestSuite) TestFollowThenUnfollow() {
	result, err := s.service.ToggleFollow(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Equal("followed", result.Action)
	s.Equal(int64(1), result.FollowerCount)
	s.Equal(int64(1), result.FollowingCount)

	// Follower gains XP, target gets the only notification.
	s.Equal(3, s.xpOf(s.alice.ID))
	s.Equal(0, s.xpOf(s.bob.ID))
	s.Len(s.notificationsFor(s.bob.ID), 1)
	s.Empty(s.notificationsFor(s.alice.ID))

	bobNotifs := s.notificationsFor(s.bob.ID)
	s.Equal(models.NotificationFollow, bobNotifs[0].Type)
	s.Require().NotNil(bobNotifs[0].ActorID)
	s.Equal(s.alice.ID, *bobNotifs[0].ActorID)

	// Toggling again removes the edge but keeps the XP and notification.
	result, err = s.service.ToggleFollow(s.ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.Equal("unfollowed", result.Action)
	s.Equal(int64(0), result.FollowerCount)

	s.Equal(3, s.xpOf(s.alice.ID))
	s.Len(s.notificationsFor(s.bob.ID), 1)

	var edges int64
	s.db.Model(&models.Follow{}).Count(&edges)
	s.Equal(int64(0), edges)
}

func (s *SocialServiceTestSuite) TestFollowUnfollowRefollowGrantsXPEachFollow() {
	for i := 0; i < 3; i++ {
		_, err := s.service.ToggleFollow(s.ctx, s.alice.ID, s.bob.ID) // follow
		s.Require().NoError(err)
		_, err = s.service.ToggleFollow(s.ctx, s.alice.ID, s.bob.ID) // unfollow
		s.Require().NoError(err)
	}
	s.Equal(9, s.xpOf(s.alice.ID))
}

func (s *SocialServiceTestSuite) TestSelfFollowRejected() {
	_, err := s.service.ToggleFollow(s.ctx, s.alice.ID, s.alice.ID)
	s.ErrorIs(err, ErrSelfFollow)
}

func (s *SocialServiceTestSuite) TestFollowInvalidTarget() {
	_, err := s.service.ToggleFollow(s.ctx, s.alice.ID, 9999)
	s.ErrorIs(err, ErrInvalidTarget)

	s.db.Model(&models.User{}).Where("id = ?", s.bob.ID).Update("is_banned", true)
	_, err = s.service.ToggleFollow(s.ctx, s.alice.ID, s.bob.ID)
	s.ErrorIs(err, ErrInvalidTarget)
}

func (s *SocialServiceTestSuite) TestLikeTogglekeepsCounterConsistent() {
	post := models.Post{UserID: s.bob.ID, Caption: "hello", Privacy: models.PrivacyPublic}
	s.Require().NoError(s.db.Create(&post).Error)

	result, err := s.service.ToggleLike(s.ctx, s.alice.ID, post.ID)
	s.Require().NoError(err)
	s.Equal("liked", result.Action)
	s.Equal(1, result.NewCount)

	s.Equal(2, s.xpOf(s.alice.ID))
	s.Len(s.notificationsFor(s.bob.ID), 1)

	// Counter mirrors the edge table after each toggle.
	var post2 models.Post
	s.db.First(&post2, post.ID)
	var likeRows int64
	s.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeRows)
	s.Equal(int64(post2.LikesCount), likeRows)

	result, err = s.service.ToggleLike(s.ctx, s.alice.ID, post.ID)
	s.Require().NoError(err)
	s.Equal("unliked", result.Action)
	s.Equal(0, result.NewCount)

	s.db.First(&post2, post.ID)
	s.Equal(0, post2.LikesCount)
}

func (s *SocialServiceTestSuite) TestLikeOwnPostSkipsNotification() {
	post := models.Post{UserID: s.alice.ID, Caption: "mine", Privacy: models.PrivacyPublic}
	s.Require().NoError(s.db.Create(&post).Error)

	result, err := s.service.ToggleLike(s.ctx, s.alice.ID, post.ID)
	s.Require().NoError(err)
	s.Equal("liked", result.Action)

	s.Empty(s.notificationsFor(s.alice.ID))
	s.Equal(2, s.xpOf(s.alice.ID), "liking your own post still grants XP")
}

func (s *SocialServiceTestSuite) TestUnlikeNeverDrivesCounterNegative() {
	post := models.Post{UserID: s.bob.ID, Caption: "x", Privacy: models.PrivacyPublic}
	s.Require().NoError(s.db.Create(&post).Error)

	// Simulate drift: an edge exists but the counter was never incremented.
	s.Require().NoError(s.db.Create(&models.Like{UserID: s.alice.ID, PostID: post.ID}).Error)

	result, err := s.service.ToggleLike(s.ctx, s.alice.ID, post.ID)
	s.Require().NoError(err)
	s.Equal("unliked", result.Action)
	s.Equal(0, result.NewCount)
}

func (s *SocialServiceTestSuite) TestLikeMissingPost() {
	_, err := s.service.ToggleLike(s.ctx, s.alice.ID, 9999)
	s.ErrorIs(err, ErrPostNotFound)
}

func TestSocialServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SocialServiceTestSuite))
}
