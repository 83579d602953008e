package handlers

import (
	"github.com/flixsy/backend/internal/auth"
	"github.com/flixsy/backend/internal/comments"
	"github.com/flixsy/backend/internal/feed"
	"github.com/flixsy/backend/internal/gamification"
	"github.com/flixsy/backend/internal/messages"
	"github.com/flixsy/backend/internal/notifications"
	"github.com/flixsy/backend/internal/posts"
	"github.com/flixsy/backend/internal/session"
	"github.com/flixsy/backend/internal/social"
	"github.com/flixsy/backend/internal/stories"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the API. Every dependency is
// injected; handlers never reach for globals.
type Handlers struct {
	db            *gorm.DB
	sessions      session.Store
	auth          *auth.Service
	social        *social.Service
	feed          *feed.Service
	posts         *posts.Service
	comments      *comments.Service
	gamification  *gamification.Service
	notifications *notifications.Service
	messages      *messages.Service
	stories       *stories.Service
}

// NewHandlers wires the handler layer onto a database and session store.
func NewHandlers(db *gorm.DB, sessions session.Store) *Handlers {
	return &Handlers{
		db:            db,
		sessions:      sessions,
		auth:          auth.NewService(db, sessions),
		social:        social.NewService(db),
		feed:          feed.NewService(db),
		posts:         posts.NewService(db),
		comments:      comments.NewService(db),
		gamification:  gamification.NewService(db),
		notifications: notifications.NewService(db),
		messages:      messages.NewService(db),
		stories:       stories.NewService(db),
	}
}
