package posts

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

type PostServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	ctx     context.Context
	user    models.User
}

func (s *PostServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))

	s.db = db
	s.service = NewService(db)
	s.ctx = context.Background()

	s.user = models.User{Username: "poster", Email: "poster@example.com", PasswordHash: "x", Level: 1}
	s.Require().NoError(db.Create(&s.user).Error)
}

func (s *PostServiceTestSuite) TestCreateGrantsXPAndDefaultsPrivacy() {
	post, err := s.service.Create(s.ctx, s.user.ID, CreateInput{Caption: "hello world"})
	s.Require().NoError(err)
	s.Equal(models.PrivacyPublic, post.Privacy)

	var user models.User
	s.db.First(&user, s.user.ID)
	s.Equal(10, user.XP)
}

func (s *PostServiceTestSuite) TestCreateRequiresCaptionOrMedia() {
	_, err := s.service.Create(s.ctx, s.user.ID, CreateInput{Caption: "   "})
	s.ErrorIs(err, ErrEmptyPost)

	_, err = s.service.Create(s.ctx, s.user.ID, CreateInput{MediaURL: "https://cdn.example.com/a.jpg"})
	s.NoError(err)
}

func (s *PostServiceTestSuite) TestHashtagIndexing() {
	_, err := s.service.Create(s.ctx, s.user.ID, CreateInput{Caption: "Loving #GoLang and #music today #golang"})
	s.Require().NoError(err)

	var tags []models.Hashtag
	s.db.Order("tag ASC").Find(&tags)
	s.Require().Len(tags, 2, "tags are lowercased and deduplicated")
	s.Equal("golang", tags[0].Tag)
	s.Equal(1, tags[0].UsageCount)
	s.Equal("music", tags[1].Tag)

	// A second post reuses the hashtag row and bumps its count.
	_, err = s.service.Create(s.ctx, s.user.ID, CreateInput{Caption: "more #golang"})
	s.Require().NoError(err)

	var golang models.Hashtag
	s.db.Where("tag = ?", "golang").First(&golang)
	s.Equal(2, golang.UsageCount)

	var links int64
	s.db.Model(&models.PostHashtag{}).Count(&links)
	s.Equal(int64(3), links)
}

func (s *PostServiceTestSuite) TestArchiveOwnership() {
	post, err := s.service.Create(s.ctx, s.user.ID, CreateInput{Caption: "to archive"})
	s.Require().NoError(err)

	other := models.User{Username: "other", Email: "other@example.com", PasswordHash: "x", Level: 1}
	s.Require().NoError(s.db.Create(&other).Error)

	s.ErrorIs(s.service.Archive(s.ctx, other.ID, post.ID, true), ErrForbidden)

	s.Require().NoError(s.service.Archive(s.ctx, s.user.ID, post.ID, true))
	var got models.Post
	s.db.First(&got, post.ID)
	s.True(got.IsArchived)

	s.Require().NoError(s.service.Archive(s.ctx, s.user.ID, post.ID, false))
	s.db.First(&got, post.ID)
	s.False(got.IsArchived)
}

func (s *PostServiceTestSuite) TestDeleteCascades() {
	post, err := s.service.Create(s.ctx, s.user.ID, CreateInput{Caption: "doomed #tag"})
	s.Require().NoError(err)

	other := models.User{Username: "other", Email: "other@example.com", PasswordHash: "x", Level: 1}
	s.Require().NoError(s.db.Create(&other).Error)
	s.Require().NoError(s.db.Create(&models.Like{UserID: other.ID, PostID: post.ID}).Error)
	s.Require().NoError(s.db.Create(&models.Comment{UserID: other.ID, PostID: post.ID, Content: "hi"}).Error)

	// A non-owner non-admin cannot delete.
	s.ErrorIs(s.service.Delete(s.ctx, other.ID, post.ID), ErrForbidden)

	s.Require().NoError(s.service.Delete(s.ctx, s.user.ID, post.ID))

	for name, count := range map[string]int64{
		"posts":         s.count(&models.Post{}),
		"likes":         s.count(&models.Like{}),
		"comments":      s.count(&models.Comment{}),
		"post_hashtags": s.count(&models.PostHashtag{}),
	} {
		s.Equal(int64(0), count, name)
	}

	s.ErrorIs(s.service.Delete(s.ctx, s.user.ID, post.ID), ErrPostNotFound)
}

func (s *PostServiceTestSuite) TestAdminMayDelete() {
	post, err := s.service.Create(s.ctx, s.user.ID, CreateInput{Caption: "reported"})
	s.Require().NoError(err)

	admin := models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x", Level: 1, IsAdmin: true}
	s.Require().NoError(s.db.Create(&admin).Error)

	s.NoError(s.service.Delete(s.ctx, admin.ID, post.ID))
}

func (s *PostServiceTestSuite) count(model interface{}) int64 {
	var n int64
	s.db.Model(model).Count(&n)
	return n
}

func TestPostServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostServiceTestSuite))
}
