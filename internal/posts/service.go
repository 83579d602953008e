package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flixsy/backend/internal/gamification"
	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyPost    = errors.New("post needs a caption or media")
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("not allowed to modify this post")
)

// Service owns the post write path: creation with hashtag indexing, archival
// and deletion.
type Service struct {
	db *gorm.DB
}

// NewService creates a post service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput carries the fields of a new post. MediaURL points at
// already-uploaded media; this service does not touch file storage.
type CreateInput struct {
	Caption   string
	MediaURL  string
	MediaType models.MediaType
	Privacy   models.Privacy
}

// Create inserts a post, indexes its hashtags and grants XP, all in one
// transaction. A post must carry a caption or media or both.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Post, error) {
	caption := strings.TrimSpace(in.Caption)
	if caption == "" && in.MediaURL == "" {
		return nil, ErrEmptyPost
	}

	privacy := in.Privacy
	switch privacy {
	case models.PrivacyPublic, models.PrivacyFollowers, models.PrivacyPrivate:
	default:
		privacy = models.PrivacyPublic
	}

	post := models.Post{
		UserID:    userID,
		Caption:   caption,
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
		Privacy:   privacy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		if err := indexHashtags(tx, post.ID, caption); err != nil {
			return err
		}

		return gamification.Grant(tx, userID, "post")
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// indexHashtags upserts every tag found in the caption and links it to the
// post. Tags already attached to the post are not double counted thanks to
// the unique pair index.
func indexHashtags(tx *gorm.DB, postID uint, caption string) error {
	for _, tag := range util.ExtractHashtags(caption) {
		var hashtag models.Hashtag
		err := tx.Where("tag = ?", tag).First(&hashtag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hashtag = models.Hashtag{Tag: tag, UsageCount: 0}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&hashtag).Error; err != nil {
				return fmt.Errorf("insert hashtag %q: %w", tag, err)
			}
			if hashtag.ID == 0 {
				// Lost an insert race; fetch the winner's row.
				if err := tx.Where("tag = ?", tag).First(&hashtag).Error; err != nil {
					return fmt.Errorf("refetch hashtag %q: %w", tag, err)
				}
			}
		} else if err != nil {
			return fmt.Errorf("lookup hashtag %q: %w", tag, err)
		}

		link := models.PostHashtag{PostID: postID, HashtagID: hashtag.ID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
		if res.Error != nil {
			return fmt.Errorf("link hashtag %q: %w", tag, res.Error)
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&models.Hashtag{}).Where("id = ?", hashtag.ID).
				UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
				return fmt.Errorf("bump hashtag %q: %w", tag, err)
			}
		}
	}
	return nil
}

// Archive hides a post from every feed without deleting it. Only the owner
// may archive.
func (s *Service) Archive(ctx context.Context, userID, postID uint, archived bool) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Model(post).
		UpdateColumn("is_archived", archived).Error
}

// Delete removes a post and its dependent rows. The owner or an admin may
// delete; everything goes in one transaction so counters never orphan.
func (s *Service) Delete(ctx context.Context, requesterID, postID uint) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != requesterID {
		var requester models.User
		if err := s.db.WithContext(ctx).First(&requester, requesterID).Error; err != nil {
			return fmt.Errorf("requester lookup: %w", err)
		}
		if !requester.IsAdmin {
			return ErrForbidden
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostHashtag{}).Error; err != nil {
			return fmt.Errorf("delete hashtag links: %w", err)
		}
		if err := tx.Delete(&models.Post{}, postID).Error; err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

func (s *Service) load(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, fmt.Errorf("post lookup: %w", err)
	}
	return &post, nil
}
