package repositories

import (
	"context"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// oauthIdentityRepository implements OAuthIdentityRepository interface
type oauthIdentityRepository struct {
	db *gorm.DB
}

// NewOAuthIdentityRepository creates a new external identity repository
func NewOAuthIdentityRepository(db *gorm.DB) OAuthIdentityRepository {
	return &oauthIdentityRepository{db: db}
}

// Create creates a new external identity link
func (r *oauthIdentityRepository) Create(ctx context.Context, identity *models.OAuthIdentity) error {
	return r.db.WithContext(ctx).Create(identity).Error
}

// GetByProviderSubject looks up a link by provider and provider-side user ID
func (r *oauthIdentityRepository) GetByProviderSubject(ctx context.Context, provider, providerUserID string) (*models.OAuthIdentity, error) {
	var identity models.OAuthIdentity
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&identity).Error
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// ListByUser lists a user's linked external identities
func (r *oauthIdentityRepository) ListByUser(ctx context.Context, userID uint) ([]*models.OAuthIdentity, error) {
	var identities []*models.OAuthIdentity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("provider ASC").
		Find(&identities).Error
	return identities, err
}

// Delete removes a user's link for one provider
func (r *oauthIdentityRepository) Delete(ctx context.Context, userID uint, provider string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.OAuthIdentity{}).Error
}
