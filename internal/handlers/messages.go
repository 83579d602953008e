package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/messages"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

// SendMessage persists a direct message.
func (h *Handlers) SendMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "recipient_id and content are required")
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), userID, req.RecipientID, req.Content)
	if err != nil {
		switch {
		case stderrors.Is(err, messages.ErrEmptyMessage):
			util.RespondBadRequest(c, "message cannot be empty")
		case stderrors.Is(err, messages.ErrSelfMessage):
			util.RespondBadRequest(c, "you cannot message yourself")
		case stderrors.Is(err, messages.ErrRecipientMissing):
			util.RespondNotFound(c, "recipient")
		default:
			util.RespondError(c, err)
		}
		return
	}
	util.RespondCreated(c, "message sent", gin.H{"message_row": msg})
}

// GetConversation returns the thread with another user and marks their
// messages read.
func (h *Handlers) GetConversation(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	otherID, ok := util.ParseUintParam(c, "id")
	if !ok {
		util.RespondBadRequest(c, "invalid user id")
		return
	}
	limit, offset := util.Pagination(c, 50, 200)

	msgs, err := h.messages.Conversation(c.Request.Context(), userID, otherID, limit, offset)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"messages": msgs})
}

// GetConversations lists the caller's inbox.
func (h *Handlers) GetConversations(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	summaries, err := h.messages.Conversations(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	unread, err := h.messages.UnreadTotal(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, "", gin.H{
		"conversations": summaries,
		"unread_total":  unread,
	})
}
