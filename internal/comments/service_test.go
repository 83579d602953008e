package comments

import (
	"context"
	"strings"
	"testing"

	"github.com/flixsy/backend/internal/database"
	"github.com/flixsy/backend/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CommentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	ctx     context.Context

	author    models.User
	commenter models.User
	post      models.Post
}

func (s *CommentServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))

	s.db = db
	s.service = NewService(db)
	s.ctx = context.Background()

	s.author = models.User{Username: "author", Email: "author@example.com", PasswordHash: "x", Level: 1}
	s.commenter = models.User{Username: "commenter", Email: "commenter@example.com", PasswordHash: "x", Level: 1}
	s.Require().NoError(db.Create(&s.author).Error)
	s.Require().NoError(db.Create(&s.commenter).Error)

	s.post = models.Post{UserID: s.author.ID, Caption: "post", Privacy: models.PrivacyPublic}
	s.Require().NoError(db.Create(&s.post).Error)
}

func (s *CommentServiceTestSuite) addComment(userID uint, content string, parentID *uint) *View {
	view, err := s.service.AddComment(s.ctx, userID, s.post.ID, content, parentID)
	s.Require().NoError(err)
	return view
}

func (s *CommentServiceTestSuite) commentsCount() int {
	var post models.Post
	s.Require().NoError(s.db.First(&post, s.post.ID).Error)
	return post.CommentsCount
}

func (s *CommentServiceTestSuite) TestThreadGrouping() {
	// Root A, root B, then a late reply to A: listing must keep A before B
	// with the reply attached to A, not interleaved by creation time.
	rootA := s.addComment(s.commenter.ID, "root A", nil)
	rootB := s.addComment(s.commenter.ID, "root B", nil)
	reply := s.addComment(s.author.ID, "reply to A", &rootA.ID)

	threads, err := s.service.ListComments(s.ctx, s.post.ID)
	s.Require().NoError(err)
	s.Require().Len(threads, 2)

	s.Equal(rootA.ID, threads[0].ID)
	s.Equal(rootB.ID, threads[1].ID)
	s.Require().Len(threads[0].Replies, 1)
	s.Equal(reply.ID, threads[0].Replies[0].ID)
	s.Equal(1, threads[0].ReplyCount)
	s.Equal(0, threads[1].ReplyCount)
	s.Equal("commenter", threads[0].Username)
}

func (s *CommentServiceTestSuite) TestReplyToReplyReRoots() {
	root := s.addComment(s.commenter.ID, "root", nil)
	reply := s.addComment(s.author.ID, "first reply", &root.ID)
	nested := s.addComment(s.commenter.ID, "reply to the reply", &reply.ID)

	s.Require().NotNil(nested.ParentID)
	s.Equal(root.ID, *nested.ParentID, "reply to a reply lands on the thread root")

	threads, err := s.service.ListComments(s.ctx, s.post.ID)
	s.Require().NoError(err)
	s.Require().Len(threads, 1)
	s.Len(threads[0].Replies, 2)
}

func (s *CommentServiceTestSuite) TestContentBoundary() {
	ok := strings.Repeat("a", 1000)
	view, err := s.service.AddComment(s.ctx, s.commenter.ID, s.post.ID, ok, nil)
	s.Require().NoError(err)
	s.Len(view.Content, 1000)

	tooLong := strings.Repeat("a", 1001)
	_, err = s.service.AddComment(s.ctx, s.commenter.ID, s.post.ID, tooLong, nil)
	s.ErrorIs(err, ErrContentTooLong)

	_, err = s.service.AddComment(s.ctx, s.commenter.ID, s.post.ID, "   \t\n", nil)
	s.ErrorIs(err, ErrEmptyContent)
}

func (s *CommentServiceTestSuite) TestAddCommentSideEffects() {
	s.addComment(s.commenter.ID, "nice post", nil)

	s.Equal(1, s.commentsCount())

	var commenter models.User
	s.db.First(&commenter, s.commenter.ID)
	s.Equal(5, commenter.XP)

	var authorNotifs []models.Notification
	s.db.Where("user_id = ?", s.author.ID).Find(&authorNotifs)
	s.Require().Len(authorNotifs, 1)
	s.Equal(models.NotificationComment, authorNotifs[0].Type)
}

func (s *CommentServiceTestSuite) TestCommentOwnPostSkipsNotification() {
	s.addComment(s.author.ID, "self comment", nil)

	var notifs []models.Notification
	s.db.Where("user_id = ?", s.author.ID).Find(&notifs)
	s.Empty(notifs)
}

func (s *CommentServiceTestSuite) TestReplyNotifiesParentAuthor() {
	root := s.addComment(s.commenter.ID, "root", nil)
	s.addComment(s.author.ID, "reply", &root.ID)

	// Commenter gets the reply notification; author is the post owner and
	// also the replier, so they get nothing.
	var commenterNotifs []models.Notification
	s.db.Where("user_id = ?", s.commenter.ID).Find(&commenterNotifs)
	s.Require().Len(commenterNotifs, 1)
	s.Contains(commenterNotifs[0].Message, "replied")

	var authorNotifs []models.Notification
	s.db.Where("user_id = ?", s.author.ID).Find(&authorNotifs)
	s.Len(authorNotifs, 1, "only the root comment notification")
}

func (s *CommentServiceTestSuite) TestInvalidPostAndParent() {
	_, err := s.service.AddComment(s.ctx, s.commenter.ID, 9999, "hi", nil)
	s.ErrorIs(err, ErrPostNotFound)

	badParent := uint(9999)
	_, err = s.service.AddComment(s.ctx, s.commenter.ID, s.post.ID, "hi", &badParent)
	s.ErrorIs(err, ErrParentNotFound)

	// A comment on a different post cannot be the parent.
	other := models.Post{UserID: s.author.ID, Caption: "other", Privacy: models.PrivacyPublic}
	s.Require().NoError(s.db.Create(&other).Error)
	foreign, err := s.service.AddComment(s.ctx, s.commenter.ID, other.ID, "elsewhere", nil)
	s.Require().NoError(err)

	_, err = s.service.AddComment(s.ctx, s.commenter.ID, s.post.ID, "hi", &foreign.ID)
	s.ErrorIs(err, ErrParentNotFound)
}

func (s *CommentServiceTestSuite) TestCascadeDeleteAccounting() {
	root := s.addComment(s.commenter.ID, "root", nil)
	s.addComment(s.author.ID, "reply 1", &root.ID)
	s.addComment(s.commenter.ID, "reply 2", &root.ID)
	survivor := s.addComment(s.author.ID, "unrelated root", nil)

	s.Equal(4, s.commentsCount())

	deleted, err := s.service.DeleteComment(s.ctx, s.commenter.ID, root.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), deleted)
	s.Equal(1, s.commentsCount())

	var remaining []models.Comment
	s.db.Where("post_id = ?", s.post.ID).Find(&remaining)
	s.Require().Len(remaining, 1)
	s.Equal(survivor.ID, remaining[0].ID)
}

func (s *CommentServiceTestSuite) TestDeletePermissions() {
	root := s.addComment(s.commenter.ID, "root", nil)

	// A random user may not delete someone else's comment.
	stranger := models.User{Username: "stranger", Email: "stranger@example.com", PasswordHash: "x", Level: 1}
	s.Require().NoError(s.db.Create(&stranger).Error)
	_, err := s.service.DeleteComment(s.ctx, stranger.ID, root.ID)
	s.ErrorIs(err, ErrForbidden)

	// An admin may.
	admin := models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x", Level: 1, IsAdmin: true}
	s.Require().NoError(s.db.Create(&admin).Error)
	deleted, err := s.service.DeleteComment(s.ctx, admin.ID, root.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.service.DeleteComment(s.ctx, admin.ID, root.ID)
	s.ErrorIs(err, ErrCommentNotFound)
}

func TestCommentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceTestSuite))
}
