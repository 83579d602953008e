package handlers

import (
	"net/http"
	"time"

	"github.com/flixsy/backend/internal/errors"
	"github.com/flixsy/backend/internal/middleware"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	// AllowedOrigins for CORS. Empty means same-origin only.
	AllowedOrigins []string
	// RedisClient enables the distributed rate limiter on auth routes.
	// Nil disables it.
	RedisClient *redis.Client
}

// SetupRouter builds the gin engine with the full route table.
func SetupRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		util.RespondWithAPIError(c, errors.MethodNotAllowed())
	})
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.CSRFHeader, "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimit := middleware.RedisRateLimit(cfg.RedisClient, 10, time.Minute)
	requireSession := middleware.RequireSession(h.sessions)
	optionalSession := middleware.OptionalSession(h.sessions)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", authLimit, h.Register)
		api.POST("/auth/login", authLimit, h.Login)
		api.POST("/auth/logout", requireSession, h.Logout)
		api.GET("/auth/me", requireSession, h.Me)
		api.POST("/auth/password", requireSession, h.ChangePassword)
		api.PATCH("/auth/profile", requireSession, h.UpdateProfile)
		api.DELETE("/auth/account", requireSession, h.DeleteAccount)
		api.GET("/auth/csrf", requireSession, h.CSRFToken)

		api.GET("/feed", requireSession, h.GetFeed)
		api.GET("/trending", h.GetTrending)
		api.GET("/explore", requireSession, h.Explore)

		api.POST("/posts", requireSession, h.CreatePost)
		api.GET("/posts/:id", optionalSession, h.GetPost)
		api.PATCH("/posts/:id/archive", requireSession, h.ArchivePost)
		api.DELETE("/posts/:id", requireSession, h.DeletePost)
		api.POST("/posts/:id/like", requireSession, h.ToggleLike)

		api.GET("/posts/:id/comments", h.ListComments)
		api.POST("/posts/:id/comments", requireSession, h.AddComment)
		api.DELETE("/comments/:id", requireSession, h.DeleteComment)

		api.GET("/users/:id", optionalSession, h.GetProfile)
		api.GET("/users/:id/posts", optionalSession, h.GetUserPosts)
		api.GET("/users/:id/badges", h.GetBadges)
		api.POST("/users/:id/follow", requireSession, h.ToggleFollow)

		api.GET("/leaderboard", h.GetLeaderboard)

		api.GET("/notifications", requireSession, h.ListNotifications)
		api.POST("/notifications/:id/read", requireSession, h.MarkNotificationRead)
		api.POST("/notifications/read-all", requireSession, h.MarkAllNotificationsRead)

		api.POST("/messages", requireSession, h.SendMessage)
		api.GET("/messages", requireSession, h.GetConversations)
		api.GET("/messages/:id", requireSession, h.GetConversation)

		api.POST("/stories", requireSession, h.CreateStory)
		api.GET("/stories", requireSession, h.GetStories)
		api.POST("/stories/:id/view", requireSession, h.ViewStory)

		admin := api.Group("/admin", requireSession, middleware.RequireAdmin(h.db))
		{
			admin.GET("/stats", h.AdminStats)
			admin.POST("/users/:id/ban", h.BanUser)
			admin.POST("/users/:id/unban", h.UnbanUser)
		}
	}

	return router
}
