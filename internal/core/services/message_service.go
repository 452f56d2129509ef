package services

import (
	"context"
	"errors"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Message errors
var (
	ErrMessageNotFound     = errors.New("message not found")
	ErrMessageAccessDenied = errors.New("not a participant of this message")
	ErrSelfMessage         = errors.New("cannot message yourself")
	ErrRecipientNotFound   = errors.New("recipient not found")
)

// MessageService handles direct messages between users
type MessageService struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
}

// NewMessageService creates a new message service
func NewMessageService(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SendInput represents a direct message
type SendInput struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Body        string `json:"body" validate:"required"`
}

// Send delivers a message to another user
func (s *MessageService) Send(ctx context.Context, senderID uint, input *SendInput) (*models.DirectMessage, error) {
	if input.RecipientID == senderID {
		return nil, ErrSelfMessage
	}

	recipient, err := s.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	message := &models.DirectMessage{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Body:        input.Body,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Inbox lists the caller's received messages, newest first
func (s *MessageService) Inbox(ctx context.Context, userID uint, offset, limit int) ([]*models.DirectMessage, int64, error) {
	return s.messageRepo.ListInbox(ctx, userID, offset, limit)
}

// Conversation lists the messages between the caller and another user
func (s *MessageService) Conversation(ctx context.Context, userID, otherID uint, offset, limit int) ([]*models.DirectMessage, int64, error) {
	return s.messageRepo.ListConversation(ctx, userID, otherID, offset, limit)
}

// UnreadCount counts the caller's unread messages
func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

// MarkRead stamps a received message as read. Only the recipient may do
// this; a second call has no effect.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.RecipientID != userID {
		return ErrMessageAccessDenied
	}
	return s.messageRepo.MarkRead(ctx, messageID, time.Now())
}

// Delete removes a message from the caller's view. Either participant
// may delete; the row is soft deleted.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.SenderID != userID && message.RecipientID != userID {
		return ErrMessageAccessDenied
	}
	return s.messageRepo.Delete(ctx, messageID)
}
