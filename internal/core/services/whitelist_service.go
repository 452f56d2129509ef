package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/domain"

	"gorm.io/gorm"
)

// Whitelist errors
var (
	ErrQuestionNotFound      = errors.New("whitelist question not found")
	ErrApplicationNotFound   = errors.New("whitelist application not found")
	ErrMissingAnswers        = errors.New("all required questions must be answered")
	ErrUnknownQuestionAnswer = errors.New("answer references unknown question")
	ErrInvalidDecision       = errors.New("decision must be APPROVED or REJECTED")
	ErrMinecraftNameRequired = errors.New("minecraft name must be set before applying")
)

// ApprovedUsersStatus is the pseudo-status for listing whitelisted members
// instead of applications
const ApprovedUsersStatus = "APPROVED_USERS"

// WhitelistService handles the server whitelist application workflow
type WhitelistService struct {
	whitelistRepo repositories.WhitelistRepository
	userRepo      repositories.UserRepository
	auditSvc      *AuditService
	notifySvc     *NotificationService
}

// NewWhitelistService creates a new whitelist service
func NewWhitelistService(
	whitelistRepo repositories.WhitelistRepository,
	userRepo repositories.UserRepository,
	auditSvc *AuditService,
	notifySvc *NotificationService,
) *WhitelistService {
	return &WhitelistService{
		whitelistRepo: whitelistRepo,
		userRepo:      userRepo,
		auditSvc:      auditSvc,
		notifySvc:     notifySvc,
	}
}

// AnswerInput is one submitted answer
type AnswerInput struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Body       string `json:"body"`
}

// SubmitInput represents a whitelist application submission
type SubmitInput struct {
	Answers []AnswerInput `json:"answers" validate:"required"`
}

// QuestionInput represents question creation / update input
type QuestionInput struct {
	Prompt   string `json:"prompt" validate:"required"`
	Required bool   `json:"required"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

// ReviewInput represents a review decision
type ReviewInput struct {
	Decision string `json:"decision" validate:"required"`
	Note     string `json:"note"`
}

// ============================================================
// Questions
// ============================================================

// ListQuestions lists questions; applicants only see active ones
func (s *WhitelistService) ListQuestions(ctx context.Context, activeOnly bool) ([]*models.WhitelistQuestion, error) {
	return s.whitelistRepo.ListQuestions(ctx, activeOnly)
}

// CreateQuestion creates a whitelist question
func (s *WhitelistService) CreateQuestion(ctx context.Context, input *QuestionInput) (*models.WhitelistQuestion, error) {
	question := &models.WhitelistQuestion{
		Prompt:   input.Prompt,
		Required: input.Required,
		Position: input.Position,
		IsActive: input.IsActive,
	}
	if err := s.whitelistRepo.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// UpdateQuestion updates a whitelist question. Existing answers keep their
// snapshot of the prompt through the question_id reference.
func (s *WhitelistService) UpdateQuestion(ctx context.Context, questionID uint, input *QuestionInput) (*models.WhitelistQuestion, error) {
	question, err := s.whitelistRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	question.Prompt = input.Prompt
	question.Required = input.Required
	question.Position = input.Position
	question.IsActive = input.IsActive

	if err := s.whitelistRepo.UpdateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// ============================================================
// Applications
// ============================================================

// Submit files a new application. A user may hold at most one pending
// application, and every active required question needs an answer.
func (s *WhitelistService) Submit(ctx context.Context, userID uint, input *SubmitInput) (*models.WhitelistApplication, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.MinecraftName == "" {
		return nil, ErrMinecraftNameRequired
	}

	// One pending application per user
	if _, err := s.whitelistRepo.GetPendingByUser(ctx, userID); err == nil {
		return nil, domain.NewPrecondition(domain.ReasonAlreadyPending, "an application is already pending review")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	questions, err := s.whitelistRepo.ListQuestions(ctx, true)
	if err != nil {
		return nil, err
	}

	known := make(map[uint]*models.WhitelistQuestion, len(questions))
	for _, q := range questions {
		known[q.ID] = q
	}

	answered := make(map[uint]bool, len(input.Answers))
	answers := make([]models.WhitelistAnswer, 0, len(input.Answers))
	for i, a := range input.Answers {
		q, ok := known[a.QuestionID]
		if !ok {
			return nil, ErrUnknownQuestionAnswer
		}
		if q.Required && a.Body == "" {
			return nil, ErrMissingAnswers
		}
		answered[a.QuestionID] = true
		answers = append(answers, models.WhitelistAnswer{
			QuestionID: a.QuestionID,
			Position:   i,
			Body:       a.Body,
		})
	}

	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			return nil, ErrMissingAnswers
		}
	}

	app := &models.WhitelistApplication{
		UserID: userID,
		Status: models.WhitelistPending,
	}
	if err := s.whitelistRepo.CreateApplication(ctx, app, answers); err != nil {
		return nil, err
	}

	user.WhitelistStatus = models.WhitelistPending
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Whitelist application #%d submitted by %s", app.ID, user.Username)
	return app, nil
}

// Get returns an application with its answers in question display order
func (s *WhitelistService) Get(ctx context.Context, appID uint) (*models.WhitelistApplication, error) {
	app, err := s.whitelistRepo.GetApplicationByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// GetOwn returns the caller's most recent application, or nil when they
// never applied
func (s *WhitelistService) GetOwn(ctx context.Context, userID uint) (*models.WhitelistApplication, error) {
	app, err := s.whitelistRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.whitelistRepo.GetApplicationByID(ctx, app.ID)
}

// ApplicationList is either a page of applications or, for the
// APPROVED_USERS pseudo-status, the whitelisted members themselves
type ApplicationList struct {
	Applications []*models.WhitelistApplication `json:"applications,omitempty"`
	Users        []*models.UserResponse         `json:"users,omitempty"`
	Total        int64                          `json:"total"`
}

// List lists applications by status. The APPROVED_USERS pseudo-status
// returns currently whitelisted users ordered by most recent change.
func (s *WhitelistService) List(ctx context.Context, status string, offset, limit int) (*ApplicationList, error) {
	if status == ApprovedUsersStatus {
		users, err := s.userRepo.ListApprovedWhitelist(ctx, limit)
		if err != nil {
			return nil, err
		}
		responses := make([]*models.UserResponse, len(users))
		for i, u := range users {
			responses[i] = u.ToResponse()
		}
		return &ApplicationList{Users: responses, Total: int64(len(responses))}, nil
	}

	apps, total, err := s.whitelistRepo.ListApplications(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ApplicationList{Applications: apps, Total: total}, nil
}

// Review decides a pending application. Only PENDING applications may be
// reviewed; anything else is rejected before any store mutation.
func (s *WhitelistService) Review(ctx context.Context, reviewerID, appID uint, input *ReviewInput, ip string) (*models.WhitelistApplication, error) {
	if input.Decision != models.WhitelistApproved && input.Decision != models.WhitelistRejected {
		return nil, ErrInvalidDecision
	}

	app, err := s.whitelistRepo.GetApplicationByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if app.Status != models.WhitelistPending {
		return nil, domain.NewPrecondition(domain.ReasonAlreadyReviewed,
			fmt.Sprintf("application is already %s", app.Status))
	}

	app.Status = input.Decision
	app.ReviewerID = &reviewerID
	app.ReviewNote = input.Note
	if err := s.whitelistRepo.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, app.UserID)
	if err != nil {
		return nil, err
	}
	user.WhitelistStatus = input.Decision
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, reviewerID, models.AuditWhitelistReview, "whitelist_application", &app.ID, map[string]interface{}{
		"decision": input.Decision,
	}, ip)

	s.notifySvc.WhitelistDecision(user.Email, user.Username, input.Decision, input.Note)

	log.Printf("✅ Whitelist application #%d %s by user %d", app.ID, input.Decision, reviewerID)
	return app, nil
}

// Revoke pulls a user off the whitelist. Works from PENDING or APPROVED;
// a rejected or already revoked application cannot be revoked again.
func (s *WhitelistService) Revoke(ctx context.Context, actorID, appID uint, note, ip string) (*models.WhitelistApplication, error) {
	app, err := s.whitelistRepo.GetApplicationByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if app.Status != models.WhitelistPending && app.Status != models.WhitelistApproved {
		return nil, domain.NewPrecondition(domain.ReasonAlreadyRevoked,
			fmt.Sprintf("cannot revoke a %s application", app.Status))
	}

	app.Status = models.WhitelistRevoked
	app.ReviewerID = &actorID
	if note != "" {
		app.ReviewNote = note
	}
	if err := s.whitelistRepo.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, app.UserID)
	if err != nil {
		return nil, err
	}
	user.WhitelistStatus = models.WhitelistRevoked
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditWhitelistRevoke, "whitelist_application", &app.ID, nil, ip)

	s.notifySvc.WhitelistDecision(user.Email, user.Username, models.WhitelistRevoked, note)

	log.Printf("⚠️ Whitelist application #%d revoked by user %d", app.ID, actorID)
	return app, nil
}
