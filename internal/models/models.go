package models

import (
	"time"
)

// Privacy controls who can see a post.
type Privacy string

const (
	PrivacyPublic    Privacy = "public"
	PrivacyFollowers Privacy = "followers"
	PrivacyPrivate   Privacy = "private"
)

// MediaType identifies the kind of media attached to a post or story.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// NotificationType categorizes notifications for client-side rendering.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationBadge   NotificationType = "badge"
	NotificationSystem  NotificationType = "system"
)

// User represents a Flixsy account.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:text;not null" json:"-"`

	Bio        string `gorm:"type:text" json:"bio"`
	ProfilePic string `json:"profile_pic"`
	BannerPic  string `json:"banner_pic"`
	Sector     string `gorm:"index" json:"sector"`

	// Gamification. Level is derived: floor(xp/100)+1, maintained by the
	// gamification service after every XP mutation.
	XP    int `gorm:"default:0" json:"xp"`
	Level int `gorm:"default:1" json:"level"`

	IsVerified bool `gorm:"default:false" json:"is_verified"`
	IsAdmin    bool `gorm:"default:false" json:"is_admin"`
	IsBanned   bool `gorm:"default:false" json:"is_banned"`

	LastActive *time.Time `json:"last_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Post represents a piece of shared content with optional media.
type Post struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Caption   string    `gorm:"type:text" json:"caption"`
	MediaURL  string    `json:"media_url"`
	MediaType MediaType `json:"media_type"`
	Privacy   Privacy   `gorm:"default:public;index" json:"privacy"`

	// Denormalized caches of child-table cardinality. Mutated only inside the
	// same transaction as the edge row they mirror.
	LikesCount    int `gorm:"default:0" json:"likes_count"`
	CommentsCount int `gorm:"default:0" json:"comments_count"`
	SharesCount   int `gorm:"default:0" json:"shares_count"`
	ViewsCount    int `gorm:"default:0" json:"views_count"`

	IsArchived bool      `gorm:"default:false" json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Follow is a directed edge in the social graph. A reciprocal follow is a
// distinct row. The unique index is the correctness backstop for concurrent
// toggle requests.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_edge" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follows_edge;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Like marks that a user liked a post. Presence implies Post.LikesCount was
// incremented in the same transaction.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_edge" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_edge;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is either a thread root (ParentID nil) or a reply to a root.
// Replies to replies are re-rooted onto the thread root at write time, so the
// tree is never deeper than two levels.
type Comment struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID uint `gorm:"not null;index" json:"post_id"`

	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	Content  string `gorm:"type:varchar(1000);not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// Notification is created as a side effect of another entity's creation and
// only ever mutated by its read flag. ActorID is nil for system-generated
// notifications.
type Notification struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	UserID  uint  `gorm:"not null;index" json:"user_id"`
	ActorID *uint `gorm:"index" json:"actor_id,omitempty"`
	Actor   *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	Type    NotificationType `gorm:"not null" json:"type"`
	Message string           `gorm:"type:text" json:"message"`
	Link    string           `json:"link"`
	IsRead  bool             `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

// Hashtag tracks tag usage across posts. Tags are stored lowercase.
type Hashtag struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Tag        string `gorm:"uniqueIndex;not null" json:"tag"`
	UsageCount int    `gorm:"default:0" json:"usage_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostHashtag links posts to hashtags.
type PostHashtag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_hashtags_pair" json:"post_id"`
	HashtagID uint      `gorm:"not null;uniqueIndex:idx_post_hashtags_pair;index" json:"hashtag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// XPLogEntry is an append-only audit row for every XP grant.
type XPLogEntry struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Action   string `gorm:"not null" json:"action"`
	XPAmount int    `gorm:"not null" json:"xp_amount"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the audit table singular to match its ledger role.
func (XPLogEntry) TableName() string {
	return "xp_log"
}

// Badge is a milestone award. The unique index makes awarding idempotent.
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_badges_user_name" json:"user_id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_badges_user_name" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	AwardedAt   time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// Message is a persisted direct-message row. Delivery is the real-time
// transport's job; this core only stores content and read state.
type Message struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	SenderID    uint `gorm:"not null;index" json:"sender_id"`
	RecipientID uint `gorm:"not null;index" json:"recipient_id"`

	Content string `gorm:"type:text;not null" json:"content"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

// Story is an ephemeral media post that expires 24 hours after creation.
type Story struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	MediaURL  string    `gorm:"not null" json:"media_url"`
	MediaType MediaType `json:"media_type"`

	ViewsCount int  `gorm:"default:0" json:"views_count"`
	IsArchived bool `gorm:"default:false" json:"is_archived"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// StoryView tracks who viewed a story, one row per viewer.
type StoryView struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	StoryID  uint      `gorm:"not null;uniqueIndex:idx_story_views_pair" json:"story_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_story_views_pair" json:"user_id"`
	ViewedAt time.Time `gorm:"autoCreateTime" json:"viewed_at"`
}
