package repositories

import (
	"context"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// forumRepository implements ForumRepository interface
type forumRepository struct {
	db *gorm.DB
}

// NewForumRepository creates a new forum repository
func NewForumRepository(db *gorm.DB) ForumRepository {
	return &forumRepository{db: db}
}

// CreateCategory creates a new category
func (r *forumRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// ListCategories lists categories with their boards, both in display order
func (r *forumRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).
		Preload("Boards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Order("position ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

// GetCategoryByID gets a category by ID
func (r *forumRepository) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateBoard creates a new board
func (r *forumRepository) CreateBoard(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// GetBoardByID gets a board by ID
func (r *forumRepository) GetBoardByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// UpdateBoard updates a board
func (r *forumRepository) UpdateBoard(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

// CreateTopic creates a new topic
func (r *forumRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

// GetTopicByID gets a topic by ID with its board and author
func (r *forumRepository) GetTopicByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).
		Preload("Board").
		Preload("Author").
		Where("id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// UpdateTopic updates a topic
func (r *forumRepository) UpdateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

// DeleteTopic soft deletes a topic in place
func (r *forumRepository) DeleteTopic(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Topic{}, id).Error
}

// ListTopics lists a board's topics, pinned first, most recently active next
func (r *forumRepository) ListTopics(ctx context.Context, boardID uint, offset, limit int) ([]*models.Topic, int64, error) {
	var topics []*models.Topic
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Topic{}).Where("board_id = ?", boardID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Author").
		Order("pinned DESC, updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}

// CreatePost creates a new post
func (r *forumRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPostByID gets a post by ID
func (r *forumRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost soft deletes a post (row retained for moderation history)
func (r *forumRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// ListPosts lists a topic's posts in submission order
func (r *forumRepository) ListPosts(ctx context.Context, topicID uint, offset, limit int) ([]*models.Post, int64, error) {
	var posts []*models.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Post{}).Where("topic_id = ?", topicID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Author").
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}
