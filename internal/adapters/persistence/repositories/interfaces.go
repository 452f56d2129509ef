package repositories

import (
	"context"
	"time"

	"ember-portal/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithGrants(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error)
	ListApprovedWhitelist(ctx context.Context, limit int) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	AddPermission(ctx context.Context, grant *models.UserPermission) error
	RemovePermission(ctx context.Context, userID uint, key string) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// OAuthIdentityRepository defines external identity repository interface
type OAuthIdentityRepository interface {
	Create(ctx context.Context, identity *models.OAuthIdentity) error
	GetByProviderSubject(ctx context.Context, provider, providerUserID string) (*models.OAuthIdentity, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.OAuthIdentity, error)
	Delete(ctx context.Context, userID uint, provider string) error
}

// RoleRepository defines role repository interface
type RoleRepository interface {
	List(ctx context.Context) ([]*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	ReplacePermissions(ctx context.Context, roleID uint, keys []string) error
}

// SettingRepository defines keyed portal settings interface
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetIDList(ctx context.Context, key string) ([]uint, error)
	SetIDList(ctx context.Context, key string, ids []uint) error
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// ForumRepository defines forum repository interface
type ForumRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	CreateBoard(ctx context.Context, board *models.Board) error
	GetBoardByID(ctx context.Context, id uint) (*models.Board, error)
	UpdateBoard(ctx context.Context, board *models.Board) error
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopicByID(ctx context.Context, id uint) (*models.Topic, error)
	UpdateTopic(ctx context.Context, topic *models.Topic) error
	DeleteTopic(ctx context.Context, id uint) error
	ListTopics(ctx context.Context, boardID uint, offset, limit int) ([]*models.Topic, int64, error)
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, topicID uint, offset, limit int) ([]*models.Post, int64, error)
}

// TicketRepository defines support ticket repository interface
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id uint) (*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, status string, creatorID uint, offset, limit int) ([]*models.Ticket, int64, error)
	AddMessage(ctx context.Context, message *models.TicketMessage) error
	CreateRatingRequirement(ctx context.Context, req *models.TicketRatingRequirement) error
	GetRatingRequirement(ctx context.Context, id uint) (*models.TicketRatingRequirement, error)
	CountIncompleteRatings(ctx context.Context, raterID uint) (int64, error)
	OldestIncompleteRating(ctx context.Context, raterID uint) (*models.TicketRatingRequirement, error)
	UpdateRatingRequirement(ctx context.Context, req *models.TicketRatingRequirement) error
}

// WhitelistRepository defines whitelist application repository interface
type WhitelistRepository interface {
	CreateQuestion(ctx context.Context, question *models.WhitelistQuestion) error
	UpdateQuestion(ctx context.Context, question *models.WhitelistQuestion) error
	GetQuestionByID(ctx context.Context, id uint) (*models.WhitelistQuestion, error)
	ListQuestions(ctx context.Context, activeOnly bool) ([]*models.WhitelistQuestion, error)
	CreateApplication(ctx context.Context, app *models.WhitelistApplication, answers []models.WhitelistAnswer) error
	GetApplicationByID(ctx context.Context, id uint) (*models.WhitelistApplication, error)
	GetPendingByUser(ctx context.Context, userID uint) (*models.WhitelistApplication, error)
	GetLatestByUser(ctx context.Context, userID uint) (*models.WhitelistApplication, error)
	UpdateApplication(ctx context.Context, app *models.WhitelistApplication) error
	ListApplications(ctx context.Context, status string, offset, limit int) ([]*models.WhitelistApplication, int64, error)
}

// MessageRepository defines direct message repository interface
type MessageRepository interface {
	Create(ctx context.Context, message *models.DirectMessage) error
	GetByID(ctx context.Context, id uint) (*models.DirectMessage, error)
	ListConversation(ctx context.Context, userA, userB uint, offset, limit int) ([]*models.DirectMessage, int64, error)
	ListInbox(ctx context.Context, userID uint, offset, limit int) ([]*models.DirectMessage, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id uint, readAt time.Time) error
	Delete(ctx context.Context, id uint) error
}

// ShiftRepository defines staff shift repository interface
type ShiftRepository interface {
	Create(ctx context.Context, shift *models.StaffShift) error
	Update(ctx context.Context, shift *models.StaffShift) error
	GetOpenByUser(ctx context.Context, userID uint) (*models.StaffShift, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.StaffShift, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]*models.StaffShift, int64, error)
	SumSecondsByUser(ctx context.Context, userID uint) (int64, error)
	DeleteAll(ctx context.Context) error
}

// AuditRepository defines audit log repository interface
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, offset, limit int) ([]*models.AuditLog, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
