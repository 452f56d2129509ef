package services

import (
	"context"
	"errors"
	"log"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"
	"ember-portal/internal/core/domain"

	"gorm.io/gorm"
)

// Ticket errors
var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketClosed       = errors.New("ticket is closed")
	ErrTicketAccessDenied = errors.New("not allowed to view this ticket")
	ErrRatingNotFound     = errors.New("rating requirement not found")
	ErrRatingCompleted    = errors.New("rating already submitted")
	ErrInvalidScore       = errors.New("score must be between 1 and 5")
)

// TicketService handles support tickets and closure ratings
type TicketService struct {
	ticketRepo repositories.TicketRepository
	userRepo   repositories.UserRepository
	auditSvc   *AuditService
	notifySvc  *NotificationService
}

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo repositories.TicketRepository,
	userRepo repositories.UserRepository,
	auditSvc *AuditService,
	notifySvc *NotificationService,
) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		auditSvc:   auditSvc,
		notifySvc:  notifySvc,
	}
}

// CreateTicketInput represents ticket creation input
type CreateTicketInput struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// ReplyInput represents a ticket reply
type ReplyInput struct {
	Body     string `json:"body" validate:"required"`
	Internal bool   `json:"internal"`
}

// isStaff reports whether the subject may work other people's tickets
func isStaff(sub authz.Subject) bool {
	return authz.Can(sub, authz.MinRole(authz.RoleHelper))
}

// Create opens a ticket with its first message
func (s *TicketService) Create(ctx context.Context, creatorID uint, input *CreateTicketInput) (*models.Ticket, error) {
	ticket := &models.Ticket{
		Subject:   input.Subject,
		Status:    models.TicketOpen,
		CreatorID: creatorID,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	message := &models.TicketMessage{
		TicketID: ticket.ID,
		AuthorID: creatorID,
		Body:     input.Body,
	}
	if err := s.ticketRepo.AddMessage(ctx, message); err != nil {
		return nil, err
	}

	log.Printf("✅ Ticket #%d opened by user %d", ticket.ID, creatorID)
	return ticket, nil
}

// Get returns a ticket. The creator sees it without internal notes; staff
// see everything.
func (s *TicketService) Get(ctx context.Context, sub authz.Subject, ticketID uint) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if ticket.CreatorID != sub.UserID && !isStaff(sub) {
		return nil, ErrTicketAccessDenied
	}

	if !isStaff(sub) {
		visible := make([]models.TicketMessage, 0, len(ticket.Messages))
		for _, m := range ticket.Messages {
			if !m.Internal {
				visible = append(visible, m)
			}
		}
		ticket.Messages = visible
	}

	return ticket, nil
}

// List lists tickets. Members only see their own; staff may filter freely.
func (s *TicketService) List(ctx context.Context, sub authz.Subject, status string, offset, limit int) ([]*models.Ticket, int64, error) {
	creatorID := uint(0)
	if !isStaff(sub) {
		creatorID = sub.UserID
	}
	return s.ticketRepo.List(ctx, status, creatorID, offset, limit)
}

// Reply appends a message. Closed tickets reject replies. A staff reply
// to an OPEN ticket moves it to IN_PROGRESS.
func (s *TicketService) Reply(ctx context.Context, sub authz.Subject, ticketID uint, input *ReplyInput) (*models.TicketMessage, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if ticket.CreatorID != sub.UserID && !isStaff(sub) {
		return nil, ErrTicketAccessDenied
	}
	if ticket.Status == models.TicketClosed {
		return nil, ErrTicketClosed
	}
	if input.Internal && !isStaff(sub) {
		return nil, ErrTicketAccessDenied
	}

	message := &models.TicketMessage{
		TicketID: ticket.ID,
		AuthorID: sub.UserID,
		Body:     input.Body,
		Internal: input.Internal,
	}
	if err := s.ticketRepo.AddMessage(ctx, message); err != nil {
		return nil, err
	}

	if ticket.Status == models.TicketOpen && isStaff(sub) && sub.UserID != ticket.CreatorID {
		ticket.Status = models.TicketInProgress
		if err := s.ticketRepo.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}

	return message, nil
}

// Assign puts a staff member on a ticket
func (s *TicketService) Assign(ctx context.Context, actorID, ticketID, assigneeID uint, ip string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.Status == models.TicketClosed {
		return nil, ErrTicketClosed
	}

	if _, err := s.userRepo.GetByID(ctx, assigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ticket.AssigneeID = &assigneeID
	if ticket.Status == models.TicketOpen {
		ticket.Status = models.TicketInProgress
	}
	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	return ticket, nil
}

// Close closes a ticket and queues a rating obligation for the creator
func (s *TicketService) Close(ctx context.Context, actorID, ticketID uint, ip string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.Status == models.TicketClosed {
		return ticket, nil // closing twice is harmless
	}

	now := time.Now()
	ticket.Status = models.TicketClosed
	ticket.ClosedAt = &now
	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	// The creator is asked to rate the handling; staff closing their own
	// ticket skips the obligation.
	if ticket.CreatorID != actorID {
		req := &models.TicketRatingRequirement{
			RaterID:  ticket.CreatorID,
			TicketID: ticket.ID,
		}
		if err := s.ticketRepo.CreateRatingRequirement(ctx, req); err != nil {
			return nil, err
		}
		if creator, err := s.userRepo.GetByID(ctx, ticket.CreatorID); err == nil {
			s.notifySvc.TicketClosed(creator.Email, creator.Username, ticket.Subject)
		}
	}

	s.auditSvc.Record(ctx, actorID, models.AuditTicketClose, "ticket", &ticket.ID, nil, ip)

	log.Printf("✅ Ticket #%d closed by user %d", ticket.ID, actorID)
	return ticket, nil
}

// Delete removes a ticket. Only closed tickets may be deleted; anything
// else is rejected before any store mutation.
func (s *TicketService) Delete(ctx context.Context, actorID, ticketID uint, ip string) error {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketNotFound
		}
		return err
	}

	if ticket.Status != models.TicketClosed {
		return domain.NewPrecondition(domain.ReasonTicketNotClosed, "only closed tickets may be deleted")
	}

	if err := s.ticketRepo.Delete(ctx, ticket.ID); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditTicketDelete, "ticket", &ticket.ID, map[string]interface{}{
		"subject": ticket.Subject,
	}, ip)

	log.Printf("✅ Ticket #%d deleted by user %d", ticket.ID, actorID)
	return nil
}

// NextRating returns the caller's oldest outstanding rating obligation,
// or nil when there is none
func (s *TicketService) NextRating(ctx context.Context, raterID uint) (*models.TicketRatingRequirement, error) {
	req, err := s.ticketRepo.OldestIncompleteRating(ctx, raterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// PendingRatingCount counts the caller's outstanding rating obligations
func (s *TicketService) PendingRatingCount(ctx context.Context, raterID uint) (int64, error) {
	return s.ticketRepo.CountIncompleteRatings(ctx, raterID)
}

// SubmitRating completes one rating obligation with a 1 to 5 score
func (s *TicketService) SubmitRating(ctx context.Context, raterID, requirementID uint, score int) error {
	if score < 1 || score > 5 {
		return ErrInvalidScore
	}

	req, err := s.ticketRepo.GetRatingRequirement(ctx, requirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingNotFound
		}
		return err
	}
	if req.RaterID != raterID {
		return ErrRatingNotFound
	}
	if req.Completed {
		return ErrRatingCompleted
	}

	req.Completed = true
	req.Score = &score
	return s.ticketRepo.UpdateRatingRequirement(ctx, req)
}
