package repositories

import (
	"context"
	"time"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new direct message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create creates a new direct message
func (r *messageRepository) Create(ctx context.Context, message *models.DirectMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetByID gets a direct message by ID
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.DirectMessage, error) {
	var message models.DirectMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		Where("id = ?", id).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListConversation lists messages between two users, newest first
func (r *messageRepository) ListConversation(ctx context.Context, userA, userB uint, offset, limit int) ([]*models.DirectMessage, int64, error) {
	var messages []*models.DirectMessage
	var total int64

	query := r.db.WithContext(ctx).Model(&models.DirectMessage{}).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Sender").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// ListInbox lists messages received by a user, newest first
func (r *messageRepository) ListInbox(ctx context.Context, userID uint, offset, limit int) ([]*models.DirectMessage, int64, error) {
	var messages []*models.DirectMessage
	var total int64

	query := r.db.WithContext(ctx).Model(&models.DirectMessage{}).
		Where("recipient_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Sender").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// CountUnread counts a user's unread received messages
func (r *messageRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DirectMessage{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead stamps a message as read
func (r *messageRepository) MarkRead(ctx context.Context, id uint, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.DirectMessage{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", readAt).Error
}

// Delete soft deletes a direct message
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.DirectMessage{}, id).Error
}
