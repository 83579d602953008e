package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/flixsy/backend/internal/gamification"
	"github.com/flixsy/backend/internal/models"
	"github.com/flixsy/backend/internal/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost is the minimum work factor for stored password hashes.
const bcryptCost = 12

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBanned      = errors.New("account is banned")
	ErrUserExists         = errors.New("username or email already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrNothingToUpdate    = errors.New("no profile fields provided")
)

// ValidationErrors aggregates registration input violations.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// Service handles registration, login and session lifecycle.
type Service struct {
	db       *gorm.DB
	sessions session.Store
}

// NewService creates an authentication service bound to the given database
// handle and session store.
func NewService(db *gorm.DB, sessions session.Store) *Service {
	return &Service{db: db, sessions: sessions}
}

// AuthResult is returned by Register and Login: the account plus an
// established session.
type AuthResult struct {
	User    *models.User     `json:"user"`
	Session *session.Session `json:"session"`
}

// Register creates a new account and logs it in immediately.
//
// The uniqueness pre-check keeps the common-case error friendly; the unique
// indexes on username and email are the backstop for the insert race, which
// is surfaced as ErrUserExists rather than a persistence failure.
func (s *Service) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var verrs ValidationErrors
	if len(username) < 3 {
		verrs = append(verrs, "username must be at least 3 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		verrs = append(verrs, "invalid email address")
	}
	if len(password) < 8 {
		verrs = append(verrs, "password must be at least 8 characters")
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	var existing models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", username, email).
		First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Level:        1,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	return &AuthResult{User: &user, Session: sess}, nil
}

// Login verifies credentials and establishes a session. A missing account and
// a hash mismatch yield the same ErrInvalidCredentials; the banned check runs
// after existence since banned-state is not secret. The first login of a UTC
// day grants daily login XP.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.IsBanned {
		return nil, ErrAccountBanned
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	firstToday := user.LastActive == nil || user.LastActive.Before(midnight)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("last_active", now).Error; err != nil {
			return fmt.Errorf("failed to update last_active: %w", err)
		}
		if firstToday {
			return gamification.Grant(tx, user.ID, "daily_login")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-read so the response carries the post-login xp and level.
	if err := s.db.WithContext(ctx).First(&user, user.ID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	return &AuthResult{User: &user, Session: sess}, nil
}

// Logout destroys the session.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// CurrentUser loads the account behind a session.
func (s *Service) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileInput carries the editable profile fields. Nil means keep the
// stored value; an empty string clears it.
type ProfileInput struct {
	Bio        *string `json:"bio"`
	Sector     *string `json:"sector"`
	ProfilePic *string `json:"profile_pic"`
	BannerPic  *string `json:"banner_pic"`
}

// UpdateProfile applies the provided fields and returns the fresh account.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error) {
	updates := map[string]any{}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Sector != nil {
		updates["sector"] = *input.Sector
	}
	if input.ProfilePic != nil {
		updates["profile_pic"] = *input.ProfilePic
	}
	if input.BannerPic != nil {
		updates["banner_pic"] = *input.BannerPic
	}
	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return &user, nil
}

// DeleteAccount verifies the password, then removes the account and every row
// it owns in one transaction: posts with their engagement, the user's own
// engagement on other people's content (with the mirrored counters
// decremented), the social edges, messages, notifications, the XP ledger,
// badges and stories. The presented session is destroyed afterwards.
func (s *Service) DeleteAccount(ctx context.Context, userID uint, token, password string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", userID).
			Pluck("id", &postIDs).Error; err != nil {
			return fmt.Errorf("collect posts: %w", err)
		}
		if len(postIDs) > 0 {
			for _, m := range []any{&models.Like{}, &models.Comment{}, &models.PostHashtag{}} {
				if err := tx.Where("post_id IN ?", postIDs).Delete(m).Error; err != nil {
					return fmt.Errorf("delete post children: %w", err)
				}
			}
			if err := tx.Delete(&models.Post{}, postIDs).Error; err != nil {
				return fmt.Errorf("delete posts: %w", err)
			}
		}

		// Likes the user left on other people's posts.
		likedPosts := tx.Model(&models.Like{}).Select("post_id").Where("user_id = ?", userID)
		if err := tx.Model(&models.Post{}).Where("id IN (?)", likedPosts).
			UpdateColumn("likes_count",
				gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error; err != nil {
			return fmt.Errorf("decrement liked posts: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}

		// Comments elsewhere, plus other people's replies under them. The
		// per-post counts come first so the decrement matches what goes away.
		var rootIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", userID).
			Pluck("id", &rootIDs).Error; err != nil {
			return fmt.Errorf("collect comments: %w", err)
		}
		commentCond, commentArgs := "user_id = ?", []any{userID}
		if len(rootIDs) > 0 {
			commentCond = "user_id = ? OR parent_id IN ?"
			commentArgs = []any{userID, rootIDs}
		}
		var removed []struct {
			PostID uint
			N      int64
		}
		if err := tx.Model(&models.Comment{}).
			Select("post_id, COUNT(*) AS n").
			Where(commentCond, commentArgs...).
			Group("post_id").
			Scan(&removed).Error; err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		for _, r := range removed {
			if err := tx.Model(&models.Post{}).Where("id = ?", r.PostID).
				UpdateColumn("comments_count",
					gorm.Expr("CASE WHEN comments_count >= ? THEN comments_count - ? ELSE 0 END", r.N, r.N)).Error; err != nil {
				return fmt.Errorf("decrement comments_count: %w", err)
			}
		}
		if err := tx.Where(commentCond, commentArgs...).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}

		if err := tx.Where("follower_id = ? OR followee_id = ?", userID, userID).
			Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("delete follows: %w", err)
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", userID, userID).
			Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Where("user_id = ? OR actor_id = ?", userID, userID).
			Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.XPLogEntry{}).Error; err != nil {
			return fmt.Errorf("delete xp log: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Badge{}).Error; err != nil {
			return fmt.Errorf("delete badges: %w", err)
		}

		// Views left on other people's stories, then the user's own stories.
		viewedStories := tx.Model(&models.StoryView{}).Select("story_id").Where("user_id = ?", userID)
		if err := tx.Model(&models.Story{}).Where("id IN (?)", viewedStories).
			UpdateColumn("views_count",
				gorm.Expr("CASE WHEN views_count > 0 THEN views_count - 1 ELSE 0 END")).Error; err != nil {
			return fmt.Errorf("decrement viewed stories: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.StoryView{}).Error; err != nil {
			return fmt.Errorf("delete story views: %w", err)
		}
		var storyIDs []uint
		if err := tx.Model(&models.Story{}).Where("user_id = ?", userID).
			Pluck("id", &storyIDs).Error; err != nil {
			return fmt.Errorf("collect stories: %w", err)
		}
		if len(storyIDs) > 0 {
			if err := tx.Where("story_id IN ?", storyIDs).Delete(&models.StoryView{}).Error; err != nil {
				return fmt.Errorf("delete story audiences: %w", err)
			}
			if err := tx.Delete(&models.Story{}, storyIDs).Error; err != nil {
				return fmt.Errorf("delete stories: %w", err)
			}
		}

		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.sessions.Destroy(ctx, token)
}

// ChangePassword verifies the old password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return ValidationErrors{"new password must be at least 8 characters"}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashed)).Error
}
