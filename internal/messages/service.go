package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flixsy/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrSelfMessage      = errors.New("cannot message yourself")
	ErrRecipientMissing = errors.New("recipient not found")
)

// Service persists direct messages and answers conversation queries.
// Real-time delivery belongs to an external transport; this layer only owns
// the rows.
type Service struct {
	db *gorm.DB
}

// NewService creates a message service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Send stores a message from sender to recipient.
func (s *Service) Send(ctx context.Context, senderID, recipientID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}

	var recipient models.User
	err := s.db.WithContext(ctx).First(&recipient, recipientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipientMissing
	} else if err != nil {
		return nil, fmt.Errorf("recipient lookup: %w", err)
	}

	msg := models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

// Conversation returns the message history between two users, oldest first,
// and marks the other party's messages as read since opening the thread
// means the viewer has seen them.
func (s *Service) Conversation(ctx context.Context, userID, otherID uint, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("conversation query: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", otherID, userID, false).
		UpdateColumn("is_read", true).Error
	if err != nil {
		return nil, fmt.Errorf("mark conversation read: %w", err)
	}

	return msgs, nil
}

// ConversationSummary is one row of the inbox: the partner, the latest
// message exchanged with them, and how many of their messages are unread.
type ConversationSummary struct {
	PartnerID       uint   `json:"partner_id"`
	PartnerUsername string `json:"partner_username"`
	PartnerPic      string `json:"partner_pic"`
	LastMessage     string `json:"last_message"`
	LastSentByMe    bool   `json:"last_sent_by_me"`
	UnreadCount     int64  `json:"unread_count"`
}

// Conversations lists the user's message partners ordered by most recent
// activity. The partner set is resolved in Go from the user's message rows;
// volumes here are inbox-sized, not feed-sized.
func (s *Service) Conversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("conversations query: %w", err)
	}

	summaries := make([]ConversationSummary, 0)
	index := make(map[uint]int)
	for _, m := range msgs {
		partnerID := m.SenderID
		sentByMe := false
		if m.SenderID == userID {
			partnerID = m.RecipientID
			sentByMe = true
		}

		i, seen := index[partnerID]
		if !seen {
			index[partnerID] = len(summaries)
			summaries = append(summaries, ConversationSummary{
				PartnerID:    partnerID,
				LastMessage:  m.Content,
				LastSentByMe: sentByMe,
			})
			i = index[partnerID]
		}
		if !sentByMe && !m.IsRead {
			summaries[i].UnreadCount++
		}
	}

	if len(summaries) == 0 {
		return summaries, nil
	}

	partnerIDs := make([]uint, 0, len(summaries))
	for _, s := range summaries {
		partnerIDs = append(partnerIDs, s.PartnerID)
	}
	var partners []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", partnerIDs).Find(&partners).Error; err != nil {
		return nil, fmt.Errorf("partner lookup: %w", err)
	}
	for _, p := range partners {
		if i, ok := index[p.ID]; ok {
			summaries[i].PartnerUsername = p.Username
			summaries[i].PartnerPic = p.ProfilePic
		}
	}

	return summaries, nil
}

// UnreadTotal counts every unread message addressed to the user, for the
// navbar badge.
func (s *Service) UnreadTotal(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("unread total: %w", err)
	}
	return n, nil
}
