package repositories

import (
	"context"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// whitelistRepository implements WhitelistRepository interface
type whitelistRepository struct {
	db *gorm.DB
}

// NewWhitelistRepository creates a new whitelist repository
func NewWhitelistRepository(db *gorm.DB) WhitelistRepository {
	return &whitelistRepository{db: db}
}

// CreateQuestion creates a new whitelist question
func (r *whitelistRepository) CreateQuestion(ctx context.Context, question *models.WhitelistQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// UpdateQuestion updates a whitelist question
func (r *whitelistRepository) UpdateQuestion(ctx context.Context, question *models.WhitelistQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}

// GetQuestionByID gets a whitelist question by ID
func (r *whitelistRepository) GetQuestionByID(ctx context.Context, id uint) (*models.WhitelistQuestion, error) {
	var question models.WhitelistQuestion
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListQuestions lists questions in display order
func (r *whitelistRepository) ListQuestions(ctx context.Context, activeOnly bool) ([]*models.WhitelistQuestion, error) {
	var questions []*models.WhitelistQuestion
	query := r.db.WithContext(ctx).Model(&models.WhitelistQuestion{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("position ASC, id ASC").Find(&questions).Error
	return questions, err
}

// CreateApplication inserts the application and its answers in one transaction
func (r *whitelistRepository) CreateApplication(ctx context.Context, app *models.WhitelistApplication, answers []models.WhitelistAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].ApplicationID = app.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetApplicationByID gets an application with its answers in question
// display order
func (r *whitelistRepository) GetApplicationByID(ctx context.Context, id uint) (*models.WhitelistApplication, error) {
	var app models.WhitelistApplication
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Reviewer").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN whitelist_questions ON whitelist_questions.id = whitelist_answers.question_id").
				Order("whitelist_questions.position ASC, whitelist_answers.position ASC")
		}).
		Preload("Answers.Question").
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetPendingByUser gets the user's pending application, if any
func (r *whitelistRepository) GetPendingByUser(ctx context.Context, userID uint) (*models.WhitelistApplication, error) {
	var app models.WhitelistApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.WhitelistPending).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetLatestByUser gets the user's most recent application
func (r *whitelistRepository) GetLatestByUser(ctx context.Context, userID uint) (*models.WhitelistApplication, error) {
	var app models.WhitelistApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateApplication updates an application
func (r *whitelistRepository) UpdateApplication(ctx context.Context, app *models.WhitelistApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// ListApplications lists applications with optional status filter,
// oldest pending work first
func (r *whitelistRepository) ListApplications(ctx context.Context, status string, offset, limit int) ([]*models.WhitelistApplication, int64, error) {
	var apps []*models.WhitelistApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&models.WhitelistApplication{})

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Preload("Reviewer").
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}
