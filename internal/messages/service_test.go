package messages

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

type MessageServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	ctx     context.Context

	alice models.User
	bob   models.User
	carol models.User
}

func (s *MessageServiceTestSuite) SetupTest() {
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
	s.bob = models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x", ProfilePic: "bob.jpg", Level: 1}
	s.carol = models.User{Username: "carol", Email: "carol@example.com", PasswordHash: "x", Level: 1}
	for _, u := range []*models.User{&s.alice, &s.bob, &s.carol} {
		s.Require().NoError(db.Create(u).Error)
	}
}

func (s *MessageServiceTestSuite) TestSendValidation() {
	_, err := s.service.Send(s.ctx, s.alice.ID, s.bob.ID, "   ")
	s.ErrorIs(err, ErrEmptyMessage)

	_, err = s.service.Send(s.ctx, s.alice.ID, s.alice.ID, "hi me")
	s.ErrorIs(err, ErrSelfMessage)

	_, err = s.service.Send(s.ctx, s.alice.ID, 9999, "hello?")
	s.ErrorIs(err, ErrRecipientMissing)

	msg, err := s.service.Send(s.ctx, s.alice.ID, s.bob.ID, "hello bob")
	s.Require().NoError(err)
	s.False(msg.IsRead)
}

func (s *MessageServiceTestSuite) TestConversationMarksTheirMessagesRead() {
	_, err := s.service.Send(s.ctx, s.alice.ID, s.bob.ID, "one")
	s.Require().NoError(err)
	_, err = s.service.Send(s.ctx, s.bob.ID, s.alice.ID, "two")
	s.Require().NoError(err)
	_, err = s.service.Send(s.ctx, s.bob.ID, s.alice.ID, "three")
	s.Require().NoError(err)

	msgs, err := s.service.Conversation(s.ctx, s.alice.ID, s.bob.ID, 50, 0)
	s.Require().NoError(err)
	s.Require().Len(msgs, 3)
	s.Equal("one", msgs[0].Content)
	s.Equal("three", msgs[2].Content)

	// Bob's messages to Alice are now read; Alice's to Bob are not.
	var unreadToAlice, unreadToBob int64
	s.db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", s.alice.ID, false).Count(&unreadToAlice)
	s.db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", s.bob.ID, false).Count(&unreadToBob)
	s.Equal(int64(0), unreadToAlice)
	s.Equal(int64(1), unreadToBob)
}

func (s *MessageServiceTestSuite) TestConversationsInbox() {
	_, err := s.service.Send(s.ctx, s.bob.ID, s.alice.ID, "from bob 1")
	s.Require().NoError(err)
	_, err = s.service.Send(s.ctx, s.bob.ID, s.alice.ID, "from bob 2")
	s.Require().NoError(err)
	_, err = s.service.Send(s.ctx, s.alice.ID, s.carol.ID, "to carol")
	s.Require().NoError(err)

	summaries, err := s.service.Conversations(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)

	byPartner := map[string]ConversationSummary{}
	for _, sum := range summaries {
		byPartner[sum.PartnerUsername] = sum
	}

	bob := byPartner["bob"]
	s.Equal(int64(2), bob.UnreadCount)
	s.Equal("from bob 2", bob.LastMessage)
	s.False(bob.LastSentByMe)
	s.Equal("bob.jpg", bob.PartnerPic)

	carol := byPartner["carol"]
	s.Equal(int64(0), carol.UnreadCount)
	s.True(carol.LastSentByMe)

	total, err := s.service.UnreadTotal(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
}

func TestMessageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceTestSuite))
}
