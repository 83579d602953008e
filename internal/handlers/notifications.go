package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListNotifications returns the caller's notifications, newest first, with
// the unread count for the badge.
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	limit, offset := util.Pagination(c, 20, 100)

	items, err := h.notifications.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, "", gin.H{
		"notifications": items,
		"unread_count":  unread,
	})
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	notificationID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid notification id")
		return
	}

	err := h.notifications.MarkRead(c.Request.Context(), notificationID, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "notification")
			return
		}
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "notification marked read", nil)
}

// MarkAllNotificationsRead flags every unread notification as read.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "all notifications marked read", nil)
}
