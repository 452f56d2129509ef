package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"

	"gorm.io/gorm"
)

// Forum errors
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrBoardNotFound    = errors.New("board not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrTopicLocked      = errors.New("topic is locked")
	ErrBoardRestricted  = errors.New("board is restricted to staff")
)

// ForumService handles boards, topics, posts and moderation
type ForumService struct {
	forumRepo   repositories.ForumRepository
	settingRepo repositories.SettingRepository
	auditSvc    *AuditService
}

// NewForumService creates a new forum service
func NewForumService(
	forumRepo repositories.ForumRepository,
	settingRepo repositories.SettingRepository,
	auditSvc *AuditService,
) *ForumService {
	return &ForumService{
		forumRepo:   forumRepo,
		settingRepo: settingRepo,
		auditSvc:    auditSvc,
	}
}

// CreateCategoryInput represents category creation input
type CreateCategoryInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Position int    `json:"position"`
}

// CreateBoardInput represents board creation input
type CreateBoardInput struct {
	CategoryID  uint   `json:"category_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// CreateTopicInput represents topic creation input
type CreateTopicInput struct {
	BoardID uint   `json:"board_id" validate:"required"`
	Title   string `json:"title" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// ============================================================
// Structure
// ============================================================

// CreateCategory creates a new category
func (s *ForumService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*models.Category, error) {
	category := &models.Category{
		Name:     input.Name,
		Position: input.Position,
	}
	if err := s.forumRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateBoard creates a new board under a category
func (s *ForumService) CreateBoard(ctx context.Context, input *CreateBoardInput) (*models.Board, error) {
	if _, err := s.forumRepo.GetCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	board := &models.Board{
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		Position:    input.Position,
	}
	if err := s.forumRepo.CreateBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// ListCategories lists the forum structure. Hidden boards and categories
// are filtered out unless includeHidden is set (staff view).
func (s *ForumService) ListCategories(ctx context.Context, includeHidden bool) ([]*models.Category, error) {
	categories, err := s.forumRepo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if includeHidden {
		return categories, nil
	}

	hiddenCats, err := s.settingRepo.GetIDList(ctx, models.SettingHiddenCategoryIDs)
	if err != nil {
		return nil, err
	}
	hiddenBoards, err := s.settingRepo.GetIDList(ctx, models.SettingHiddenBoardIDs)
	if err != nil {
		return nil, err
	}

	catSet := idSet(hiddenCats)
	boardSet := idSet(hiddenBoards)

	visible := make([]*models.Category, 0, len(categories))
	for _, cat := range categories {
		if catSet[cat.ID] {
			continue
		}
		boards := make([]models.Board, 0, len(cat.Boards))
		for _, b := range cat.Boards {
			if !boardSet[b.ID] {
				boards = append(boards, b)
			}
		}
		cat.Boards = boards
		visible = append(visible, cat)
	}
	return visible, nil
}

// RenameBoard renames a board
func (s *ForumService) RenameBoard(ctx context.Context, actorID, boardID uint, name, ip string) (*models.Board, error) {
	board, err := s.forumRepo.GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}

	previous := board.Name
	board.Name = name
	if err := s.forumRepo.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditBoardRename, "board", &board.ID, map[string]interface{}{
		"from": previous,
		"to":   name,
	}, ip)
	return board, nil
}

// SetBoardHidden shows or hides a board. The operation is idempotent:
// hiding an already hidden board is a no-op.
func (s *ForumService) SetBoardHidden(ctx context.Context, actorID, boardID uint, hidden bool, ip string) error {
	if _, err := s.forumRepo.GetBoardByID(ctx, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBoardNotFound
		}
		return err
	}

	changed, err := s.toggleIDList(ctx, models.SettingHiddenBoardIDs, boardID, hidden)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.auditSvc.Record(ctx, actorID, models.AuditBoardVisibility, "board", &boardID, map[string]interface{}{
		"hidden": hidden,
	}, ip)
	return nil
}

// SetCategoryHidden shows or hides a category, idempotently
func (s *ForumService) SetCategoryHidden(ctx context.Context, actorID, categoryID uint, hidden bool, ip string) error {
	if _, err := s.forumRepo.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	changed, err := s.toggleIDList(ctx, models.SettingHiddenCategoryIDs, categoryID, hidden)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.auditSvc.Record(ctx, actorID, models.AuditBoardVisibility, "category", &categoryID, map[string]interface{}{
		"hidden": hidden,
	}, ip)
	return nil
}

// SetBoardAdminOnly marks a board writable by admins only
func (s *ForumService) SetBoardAdminOnly(ctx context.Context, actorID, boardID uint, adminOnly bool, ip string) error {
	if _, err := s.forumRepo.GetBoardByID(ctx, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBoardNotFound
		}
		return err
	}

	key := models.SettingBoardAdminOnlyPrefix + strconv.FormatUint(uint64(boardID), 10)
	if err := s.settingRepo.SetBool(ctx, key, adminOnly); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditBoardAdminOnly, "board", &boardID, map[string]interface{}{
		"admin_only": adminOnly,
	}, ip)
	return nil
}

// SetTrashBoard designates the board deleted topics are moved into
func (s *ForumService) SetTrashBoard(ctx context.Context, actorID, boardID uint, ip string) error {
	if _, err := s.forumRepo.GetBoardByID(ctx, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBoardNotFound
		}
		return err
	}

	if err := s.settingRepo.Set(ctx, models.SettingTrashBoardID, strconv.FormatUint(uint64(boardID), 10)); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditSettingUpdate, "setting", nil, map[string]interface{}{
		"key":   models.SettingTrashBoardID,
		"value": boardID,
	}, ip)
	return nil
}

// ============================================================
// Topics & Posts
// ============================================================

// CreateTopic creates a topic plus its opening post
func (s *ForumService) CreateTopic(ctx context.Context, sub authz.Subject, input *CreateTopicInput) (*models.Topic, error) {
	board, err := s.forumRepo.GetBoardByID(ctx, input.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}

	adminOnly, err := s.isBoardAdminOnly(ctx, board.ID)
	if err != nil {
		return nil, err
	}
	if adminOnly && !authz.Can(sub, authz.MinRole(authz.RoleAdmin)) {
		return nil, ErrBoardRestricted
	}

	topic := &models.Topic{
		BoardID:  board.ID,
		AuthorID: sub.UserID,
		Title:    input.Title,
		Status:   models.TopicOpen,
	}
	if err := s.forumRepo.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}

	post := &models.Post{
		TopicID:  topic.ID,
		AuthorID: sub.UserID,
		Body:     input.Body,
	}
	if err := s.forumRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	return topic, nil
}

// GetTopic gets a topic with its board and author
func (s *ForumService) GetTopic(ctx context.Context, topicID uint) (*models.Topic, error) {
	topic, err := s.forumRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return topic, nil
}

// ListTopics lists a board's topics, pinned first
func (s *ForumService) ListTopics(ctx context.Context, boardID uint, offset, limit int) ([]*models.Topic, int64, error) {
	if _, err := s.forumRepo.GetBoardByID(ctx, boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrBoardNotFound
		}
		return nil, 0, err
	}
	return s.forumRepo.ListTopics(ctx, boardID, offset, limit)
}

// ListPosts lists a topic's posts in submission order
func (s *ForumService) ListPosts(ctx context.Context, topicID uint, offset, limit int) ([]*models.Post, int64, error) {
	if _, err := s.forumRepo.GetTopicByID(ctx, topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTopicNotFound
		}
		return nil, 0, err
	}
	return s.forumRepo.ListPosts(ctx, topicID, offset, limit)
}

// Reply appends a post to a topic. Lock state gates who may reply:
// OPEN for everyone, LOCKED keeps moderators and up, LOCKED_ADMIN keeps
// admins and up.
func (s *ForumService) Reply(ctx context.Context, sub authz.Subject, topicID uint, body string) (*models.Post, error) {
	topic, err := s.forumRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	switch topic.Status {
	case models.TopicLocked:
		if !authz.Can(sub, authz.MinRole(authz.RoleModerator)) {
			return nil, ErrTopicLocked
		}
	case models.TopicLockedAdmin:
		if !authz.Can(sub, authz.MinRole(authz.RoleAdmin)) {
			return nil, ErrTopicLocked
		}
	}

	adminOnly, err := s.isBoardAdminOnly(ctx, topic.BoardID)
	if err != nil {
		return nil, err
	}
	if adminOnly && !authz.Can(sub, authz.MinRole(authz.RoleAdmin)) {
		return nil, ErrBoardRestricted
	}

	post := &models.Post{
		TopicID:  topic.ID,
		AuthorID: sub.UserID,
		Body:     body,
	}
	if err := s.forumRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	// bump the topic so it sorts to the top of its board
	if err := s.forumRepo.UpdateTopic(ctx, topic); err != nil {
		return nil, err
	}

	return post, nil
}

// ToggleLock advances the topic's lock state one step along the fixed
// cycle and returns the new state
func (s *ForumService) ToggleLock(ctx context.Context, actorID, topicID uint, ip string) (string, error) {
	topic, err := s.forumRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTopicNotFound
		}
		return "", err
	}

	previous := topic.Status
	topic.Status = models.NextLockStatus(topic.Status)
	if err := s.forumRepo.UpdateTopic(ctx, topic); err != nil {
		return "", err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditTopicLockToggle, "topic", &topic.ID, map[string]interface{}{
		"from": previous,
		"to":   topic.Status,
	}, ip)

	log.Printf("✅ Topic %d lock: %s -> %s", topic.ID, previous, topic.Status)
	return topic.Status, nil
}

// TogglePin flips the topic's pinned flag and returns the new value
func (s *ForumService) TogglePin(ctx context.Context, actorID, topicID uint, ip string) (bool, error) {
	topic, err := s.forumRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTopicNotFound
		}
		return false, err
	}

	topic.Pinned = !topic.Pinned
	if err := s.forumRepo.UpdateTopic(ctx, topic); err != nil {
		return false, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditTopicPinToggle, "topic", &topic.ID, map[string]interface{}{
		"pinned": topic.Pinned,
	}, ip)
	return topic.Pinned, nil
}

// RenameTopic changes a topic's title
func (s *ForumService) RenameTopic(ctx context.Context, actorID, topicID uint, title, ip string) (*models.Topic, error) {
	topic, err := s.forumRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	previous := topic.Title
	topic.Title = title
	if err := s.forumRepo.UpdateTopic(ctx, topic); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditTopicRename, "topic", &topic.ID, map[string]interface{}{
		"from": previous,
		"to":   title,
	}, ip)
	return topic, nil
}

// DeleteTopic removes a topic. When a trash board is configured and the
// topic is not already there, the topic is moved into it instead of being
// soft deleted, so moderators can restore or inspect it later.
func (s *ForumService) DeleteTopic(ctx context.Context, actorID, topicID uint, ip string) error {
	topic, err := s.forumRepo.GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTopicNotFound
		}
		return err
	}

	trashID, err := s.trashBoardID(ctx)
	if err != nil {
		return err
	}

	mode := "soft_delete"
	if trashID != 0 && topic.BoardID != trashID {
		topic.BoardID = trashID
		if err := s.forumRepo.UpdateTopic(ctx, topic); err != nil {
			return err
		}
		mode = "moved_to_trash"
	} else {
		if err := s.forumRepo.DeleteTopic(ctx, topic.ID); err != nil {
			return err
		}
	}

	s.auditSvc.Record(ctx, actorID, models.AuditTopicDelete, "topic", &topic.ID, map[string]interface{}{
		"mode":  mode,
		"title": topic.Title,
	}, ip)

	log.Printf("✅ Topic %d deleted (%s)", topic.ID, mode)
	return nil
}

// DeletePost soft deletes a single post
func (s *ForumService) DeletePost(ctx context.Context, actorID, postID uint, ip string) error {
	post, err := s.forumRepo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err := s.forumRepo.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditPostDelete, "post", &post.ID, nil, ip)
	return nil
}

// ============================================================
// Helpers
// ============================================================

func (s *ForumService) isBoardAdminOnly(ctx context.Context, boardID uint) (bool, error) {
	key := models.SettingBoardAdminOnlyPrefix + strconv.FormatUint(uint64(boardID), 10)
	return s.settingRepo.GetBool(ctx, key)
}

func (s *ForumService) trashBoardID(ctx context.Context) (uint, error) {
	raw, err := s.settingRepo.Get(ctx, models.SettingTrashBoardID)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt trash board setting %q: %w", raw, err)
	}
	return uint(id), nil
}

// toggleIDList adds or removes an ID and reports whether the list changed
func (s *ForumService) toggleIDList(ctx context.Context, key string, id uint, add bool) (bool, error) {
	ids, err := s.settingRepo.GetIDList(ctx, key)
	if err != nil {
		return false, err
	}

	present := false
	for _, v := range ids {
		if v == id {
			present = true
			break
		}
	}

	if add == present {
		return false, nil
	}

	if add {
		ids = append(ids, id)
	} else {
		filtered := ids[:0]
		for _, v := range ids {
			if v != id {
				filtered = append(filtered, v)
			}
		}
		ids = filtered
	}

	if err := s.settingRepo.SetIDList(ctx, key, ids); err != nil {
		return false, err
	}
	return true, nil
}

func idSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
