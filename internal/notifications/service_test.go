package notifications

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

type NotificationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	ctx     context.Context

	recipient models.User
	actor     models.User
}

func (s *NotificationServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))

	s.db = db
	s.service = NewService(db)
	s.ctx = context.Background()

	s.recipient = models.User{Username: "recipient", Email: "r@example.com", PasswordHash: "x", Level: 1}
	s.actor = models.User{Username: "actor", Email: "a@example.com", PasswordHash: "x", ProfilePic: "pic.jpg", Level: 1}
	s.Require().NoError(db.Create(&s.recipient).Error)
	s.Require().NoError(db.Create(&s.actor).Error)
}

func (s *NotificationServiceTestSuite) insertAt(age time.Duration, typ models.NotificationType, actorID *uint, msg string) models.Notification {
	n := models.Notification{
		UserID:    s.recipient.ID,
		ActorID:   actorID,
		Type:      typ,
		Message:   msg,
		CreatedAt: time.Now().UTC().Add(-age),
	}
	s.Require().NoError(s.db.Create(&n).Error)
	return n
}

func (s *NotificationServiceTestSuite) TestListNewestFirstWithActor() {
	s.insertAt(2*time.Hour, models.NotificationLike, &s.actor.ID, "liked your post")
	s.insertAt(time.Hour, models.NotificationSystem, nil, "level up")

	items, err := s.service.List(s.ctx, s.recipient.ID, 20, 0)
	s.Require().NoError(err)
	s.Require().Len(items, 2)

	s.Equal("level up", items[0].Message)
	s.Empty(items[0].ActorUsername, "system notifications have no actor")

	s.Equal("liked your post", items[1].Message)
	s.Equal("actor", items[1].ActorUsername)
	s.Equal("pic.jpg", items[1].ActorPic)
}

func (s *NotificationServiceTestSuite) TestMarkReadScopedToOwner() {
	n := s.insertAt(time.Hour, models.NotificationLike, &s.actor.ID, "x")

	// Another user cannot mark it.
	err := s.service.MarkRead(s.ctx, n.ID, s.actor.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	unread, err := s.service.UnreadCount(s.ctx, s.recipient.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), unread)

	s.Require().NoError(s.service.MarkRead(s.ctx, n.ID, s.recipient.ID))

	unread, err = s.service.UnreadCount(s.ctx, s.recipient.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), unread)
}

func (s *NotificationServiceTestSuite) TestMarkAllRead() {
	for i := 0; i < 3; i++ {
		s.insertAt(time.Duration(i)*time.Hour, models.NotificationFollow, &s.actor.ID, "follow")
	}

	s.Require().NoError(s.service.MarkAllRead(s.ctx, s.recipient.ID))

	unread, err := s.service.UnreadCount(s.ctx, s.recipient.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), unread)

	// Idempotent on an already-clean inbox.
	s.NoError(s.service.MarkAllRead(s.ctx, s.recipient.ID))
}

func (s *NotificationServiceTestSuite) TestCreateInsideTransactionRollsBack() {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := Create(tx, s.recipient.ID, &s.actor.ID, models.NotificationLike, "will vanish", ""); err != nil {
			return err
		}
		return gorm.ErrInvalidData // force rollback
	})
	s.Error(err)

	var count int64
	s.db.Model(&models.Notification{}).Count(&count)
	s.Equal(int64(0), count)
}

func TestNotificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}
