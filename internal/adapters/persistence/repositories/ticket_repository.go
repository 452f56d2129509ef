package repositories

import (
	"context"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ticketRepository implements TicketRepository interface
type ticketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

// Create creates a new ticket
func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

// GetByID gets a ticket by ID with its participants and messages
func (r *ticketRepository) GetByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Messages.Author").
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Update updates a ticket
func (r *ticketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

// Delete soft deletes a ticket
func (r *ticketRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Ticket{}, id).Error
}

// List lists tickets with optional status and creator filters
func (r *ticketRepository) List(ctx context.Context, status string, creatorID uint, offset, limit int) ([]*models.Ticket, int64, error) {
	var tickets []*models.Ticket
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Ticket{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if creatorID != 0 {
		query = query.Where("creator_id = ?", creatorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Creator").
		Preload("Assignee").
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

// AddMessage appends a reply to a ticket
func (r *ticketRepository) AddMessage(ctx context.Context, message *models.TicketMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// CreateRatingRequirement records a pending rating obligation
func (r *ticketRepository) CreateRatingRequirement(ctx context.Context, req *models.TicketRatingRequirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRatingRequirement gets a rating requirement by ID
func (r *ticketRepository) GetRatingRequirement(ctx context.Context, id uint) (*models.TicketRatingRequirement, error) {
	var req models.TicketRatingRequirement
	err := r.db.WithContext(ctx).
		Preload("Ticket").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CountIncompleteRatings counts a user's outstanding rating obligations
func (r *ticketRepository) CountIncompleteRatings(ctx context.Context, raterID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TicketRatingRequirement{}).
		Where("rater_id = ? AND completed = ?", raterID, false).
		Count(&count).Error
	return count, err
}

// OldestIncompleteRating returns the user's oldest outstanding obligation
func (r *ticketRepository) OldestIncompleteRating(ctx context.Context, raterID uint) (*models.TicketRatingRequirement, error) {
	var req models.TicketRatingRequirement
	err := r.db.WithContext(ctx).
		Preload("Ticket").
		Where("rater_id = ? AND completed = ?", raterID, false).
		Order("created_at ASC, id ASC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateRatingRequirement updates a rating requirement
func (r *ticketRepository) UpdateRatingRequirement(ctx context.Context, req *models.TicketRatingRequirement) error {
	return r.db.WithContext(ctx).Save(req).Error
}
