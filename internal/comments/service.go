package comments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/flixsy/backend/internal/gamification"
	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/notifications"
	"gorm.io/gorm"
)

// MaxContentLength is the comment length cap in characters.
const MaxContentLength = 1000

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrParentNotFound  = errors.New("parent comment not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmptyContent    = errors.New("comment cannot be empty")
	ErrContentTooLong  = errors.New("comment too long")
	ErrForbidden       = errors.New("not allowed to delete this comment")
)

// Service owns comment threading: two-level create, cascade delete with
// counter reconciliation, and threaded listing.
type Service struct {
	db *gorm.DB
}

// NewService creates a comment service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// View is a comment annotated with its author's public fields.
type View struct {
	models.Comment
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	IsVerified bool   `json:"is_verified"`
}

// Thread is a root comment with its replies attached.
type Thread struct {
	View
	Replies    []View `json:"replies"`
	ReplyCount int    `json:"reply_count"`
}

// ListComments fetches a post's comments in one pass and groups them into
// threads. Roots are ordered by id ascending so a thread's replies always
// cluster under their root even when a younger root was created between
// them; replies are ordered by creation time within each thread.
func (s *Service) ListComments(ctx context.Context, postID uint) ([]Thread, error) {
	var rows []View
	err := s.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.username, users.profile_pic, users.is_verified").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	threads := make([]Thread, 0)
	index := make(map[uint]int)
	orphans := make(map[uint][]View)

	for _, row := range rows {
		if row.ParentID == nil {
			index[row.ID] = len(threads)
			threads = append(threads, Thread{View: row, Replies: []View{}})
		} else {
			orphans[*row.ParentID] = append(orphans[*row.ParentID], row)
		}
	}

	for parentID, replies := range orphans {
		i, ok := index[parentID]
		if !ok {
			// A reply whose root is gone has no bucket; it is unreachable
			// data and stays out of the thread list.
			continue
		}
		threads[i].Replies = append(threads[i].Replies, replies...)
	}

	for i := range threads {
		replies := threads[i].Replies
		sort.Slice(replies, func(a, b int) bool {
			if replies[a].CreatedAt.Equal(replies[b].CreatedAt) {
				return replies[a].ID < replies[b].ID
			}
			return replies[a].CreatedAt.Before(replies[b].CreatedAt)
		})
		threads[i].ReplyCount = len(replies)
	}

	return threads, nil
}

// AddComment creates a root comment or a reply. Replying to a reply re-roots
// the new comment onto the thread root at write time, so the tree can never
// grow past two levels. The insert, counter bump, XP grant and notification
// fan-out share one transaction.
func (s *Service) AddComment(ctx context.Context, userID, postID uint, content string, parentID *uint) (*View, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	var post models.Post
	err := s.db.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, fmt.Errorf("post lookup: %w", err)
	}

	var replyToAuthor uint
	if parentID != nil {
		var parent models.Comment
		err := s.db.WithContext(ctx).
			Where("id = ? AND post_id = ?", *parentID, postID).
			First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		} else if err != nil {
			return nil, fmt.Errorf("parent lookup: %w", err)
		}
		replyToAuthor = parent.UserID
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	comment := models.Comment{
		UserID:   userID,
		PostID:   postID,
		ParentID: parentID,
		Content:  content,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error; err != nil {
			return fmt.Errorf("increment comments_count: %w", err)
		}

		if err := gamification.Grant(tx, userID, "comment"); err != nil {
			return err
		}

		link := fmt.Sprintf("/posts/%d", postID)
		if post.UserID != userID {
			if err := notifications.Create(tx, post.UserID, &userID, models.NotificationComment,
				"commented on your post", link); err != nil {
				return err
			}
		}
		if parentID != nil && replyToAuthor != userID {
			if err := notifications.Create(tx, replyToAuthor, &userID, models.NotificationComment,
				"replied to your comment", link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var view View
	err = s.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.username, users.profile_pic, users.is_verified").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.id = ?", comment.ID).
		Scan(&view).Error
	if err != nil {
		return nil, fmt.Errorf("load created comment: %w", err)
	}
	return &view, nil
}

// DeleteComment removes a comment and its direct replies. The cascade is one
// level deep only, and comments_count is reconciled by 1+replyCount, floored
// at zero, in the same transaction as the deletes.
func (s *Service) DeleteComment(ctx context.Context, requesterID, commentID uint) (int64, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrCommentNotFound
	} else if err != nil {
		return 0, fmt.Errorf("comment lookup: %w", err)
	}

	if comment.UserID != requesterID {
		var requester models.User
		if err := s.db.WithContext(ctx).First(&requester, requesterID).Error; err != nil {
			return 0, fmt.Errorf("requester lookup: %w", err)
		}
		if !requester.IsAdmin {
			return 0, ErrForbidden
		}
	}

	var deleted int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyCount int64
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", commentID).Count(&replyCount).Error; err != nil {
			return fmt.Errorf("count replies: %w", err)
		}

		if err := tx.Where("parent_id = ?", commentID).
			Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete replies: %w", err)
		}
		if err := tx.Delete(&models.Comment{}, commentID).Error; err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}

		deleted = 1 + replyCount
		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count",
				gorm.Expr("CASE WHEN comments_count >= ? THEN comments_count - ? ELSE 0 END",
					deleted, deleted)).Error; err != nil {
			return fmt.Errorf("decrement comments_count: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
