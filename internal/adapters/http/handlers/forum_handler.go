package handlers

import (
	"errors"

	"ember-portal/internal/adapters/http/middleware"
	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/pagination"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ForumHandler handles forum endpoints
type ForumHandler struct {
	forumService *services.ForumService
}

// NewForumHandler creates a new forum handler
func NewForumHandler(forumService *services.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// CreateTopicRequest represents topic creation request body
type CreateTopicRequest struct {
	BoardID uint   `json:"board_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// ReplyRequest represents reply request body
type ReplyRequest struct {
	Body string `json:"body"`
}

// RenameRequest represents a rename request body
type RenameRequest struct {
	Name string `json:"name"`
}

// VisibilityRequest represents a visibility change request body
type VisibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// AdminOnlyRequest represents an admin-only flag request body
type AdminOnlyRequest struct {
	AdminOnly bool `json:"admin_only"`
}

// ============================================================
// Structure
// ============================================================

// ListCategories returns the forum structure
// @Summary List forum structure
// @Description Categories with their boards; hidden entries only for staff
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /forum/categories [get]
func (h *ForumHandler) ListCategories(c *fiber.Ctx) error {
	sub, _ := middleware.Subject(c)
	includeHidden := sub.Rank >= 10 // helpers and up see hidden entries

	categories, err := h.forumService.ListCategories(c.Context(), includeHidden)
	if err != nil {
		return response.InternalServerError(c, "Failed to list categories")
	}

	return response.Success(c, "Categories retrieved successfully", fiber.Map{
		"categories": categories,
	})
}

// CreateCategory creates a category
// @Summary Create category
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCategoryInput true "Category data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /forum/categories [post]
func (h *ForumHandler) CreateCategory(c *fiber.Ctx) error {
	var input services.CreateCategoryInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Name == "" {
		return response.BadRequest(c, "Category name is required")
	}

	category, err := h.forumService.CreateCategory(c.Context(), &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create category")
	}

	return response.Created(c, "Category created successfully", fiber.Map{"category": category})
}

// CreateBoard creates a board
// @Summary Create board
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBoardInput true "Board data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /forum/boards [post]
func (h *ForumHandler) CreateBoard(c *fiber.Ctx) error {
	var input services.CreateBoardInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Name == "" {
		return response.BadRequest(c, "Board name is required")
	}

	board, err := h.forumService.CreateBoard(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to create board")
	}

	return response.Created(c, "Board created successfully", fiber.Map{"board": board})
}

// RenameBoard renames a board
// @Summary Rename board
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param body body RenameRequest true "New name"
// @Success 200 {object} response.Response
// @Router /forum/boards/{id}/name [put]
func (h *ForumHandler) RenameBoard(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid board ID")
	}

	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Board name is required")
	}

	board, err := h.forumService.RenameBoard(c.Context(), actorID, id, req.Name, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrBoardNotFound) {
			return response.NotFound(c, "Board not found")
		}
		return response.InternalServerError(c, "Failed to rename board")
	}

	return response.Success(c, "Board renamed successfully", fiber.Map{"board": board})
}

// SetBoardVisibility hides or shows a board
// @Summary Set board visibility
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param body body VisibilityRequest true "Visibility"
// @Success 200 {object} response.Response
// @Router /forum/boards/{id}/visibility [put]
func (h *ForumHandler) SetBoardVisibility(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid board ID")
	}

	var req VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.forumService.SetBoardHidden(c.Context(), actorID, id, req.Hidden, c.IP()); err != nil {
		if errors.Is(err, services.ErrBoardNotFound) {
			return response.NotFound(c, "Board not found")
		}
		return response.InternalServerError(c, "Failed to change board visibility")
	}

	return response.Success(c, "Board visibility updated", nil)
}

// SetCategoryVisibility hides or shows a category
// @Summary Set category visibility
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param body body VisibilityRequest true "Visibility"
// @Success 200 {object} response.Response
// @Router /forum/categories/{id}/visibility [put]
func (h *ForumHandler) SetCategoryVisibility(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	var req VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.forumService.SetCategoryHidden(c.Context(), actorID, id, req.Hidden, c.IP()); err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to change category visibility")
	}

	return response.Success(c, "Category visibility updated", nil)
}

// SetBoardAdminOnly restricts a board to admins
// @Summary Set board admin-only flag
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param body body AdminOnlyRequest true "Flag"
// @Success 200 {object} response.Response
// @Router /forum/boards/{id}/admin-only [put]
func (h *ForumHandler) SetBoardAdminOnly(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid board ID")
	}

	var req AdminOnlyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.forumService.SetBoardAdminOnly(c.Context(), actorID, id, req.AdminOnly, c.IP()); err != nil {
		if errors.Is(err, services.ErrBoardNotFound) {
			return response.NotFound(c, "Board not found")
		}
		return response.InternalServerError(c, "Failed to change board restriction")
	}

	return response.Success(c, "Board restriction updated", nil)
}

// SetTrashBoard designates the trash board
// @Summary Set trash board
// @Description Deleted topics are moved into this board
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Success 200 {object} response.Response
// @Router /forum/boards/{id}/trash [put]
func (h *ForumHandler) SetTrashBoard(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid board ID")
	}

	if err := h.forumService.SetTrashBoard(c.Context(), actorID, id, c.IP()); err != nil {
		if errors.Is(err, services.ErrBoardNotFound) {
			return response.NotFound(c, "Board not found")
		}
		return response.InternalServerError(c, "Failed to set trash board")
	}

	return response.Success(c, "Trash board updated", nil)
}

// ============================================================
// Topics & Posts
// ============================================================

// ListTopics lists a board's topics
// @Summary List topics
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /forum/boards/{id}/topics [get]
func (h *ForumHandler) ListTopics(c *fiber.Ctx) error {
	boardID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid board ID")
	}

	params := pagination.GetParams(c)
	topics, total, err := h.forumService.ListTopics(c.Context(), boardID, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrBoardNotFound) {
			return response.NotFound(c, "Board not found")
		}
		return response.InternalServerError(c, "Failed to list topics")
	}

	return response.Success(c, "Topics retrieved successfully", pagination.NewResponse(topics, params, total))
}

// CreateTopic creates a topic
// @Summary Create topic
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTopicRequest true "Topic data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /forum/topics [post]
func (h *ForumHandler) CreateTopic(c *fiber.Ctx) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Title == "" || req.Body == "" {
		return response.BadRequest(c, "Title and body are required")
	}

	input := &services.CreateTopicInput{
		BoardID: req.BoardID,
		Title:   req.Title,
		Body:    req.Body,
	}

	topic, err := h.forumService.CreateTopic(c.Context(), sub, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBoardNotFound):
			return response.NotFound(c, "Board not found")
		case errors.Is(err, services.ErrBoardRestricted):
			return response.Forbidden(c, "Board is restricted to staff")
		default:
			return response.InternalServerError(c, "Failed to create topic")
		}
	}

	return response.Created(c, "Topic created successfully", fiber.Map{"topic": topic})
}

// GetTopic returns one topic
// @Summary Get topic
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /forum/topics/{id} [get]
func (h *ForumHandler) GetTopic(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid topic ID")
	}

	topic, err := h.forumService.GetTopic(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			return response.NotFound(c, "Topic not found")
		}
		return response.InternalServerError(c, "Failed to get topic")
	}

	return response.Success(c, "Topic retrieved successfully", fiber.Map{"topic": topic})
}

// ListPosts lists a topic's posts
// @Summary List posts
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /forum/topics/{id}/posts [get]
func (h *ForumHandler) ListPosts(c *fiber.Ctx) error {
	topicID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid topic ID")
	}

	params := pagination.GetParams(c)
	posts, total, err := h.forumService.ListPosts(c.Context(), topicID, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			return response.NotFound(c, "Topic not found")
		}
		return response.InternalServerError(c, "Failed to list posts")
	}

	return response.Success(c, "Posts retrieved successfully", pagination.NewResponse(posts, params, total))
}

// Reply adds a post to a topic
// @Summary Reply to topic
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Param body body ReplyRequest true "Reply body"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /forum/topics/{id}/posts [post]
func (h *ForumHandler) Reply(c *fiber.Ctx) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	topicID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid topic ID")
	}

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Body == "" {
		return response.BadRequest(c, "Reply body is required")
	}

	post, err := h.forumService.Reply(c.Context(), sub, topicID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTopicNotFound):
			return response.NotFound(c, "Topic not found")
		case errors.Is(err, services.ErrTopicLocked):
			return response.Forbidden(c, "Topic is locked")
		case errors.Is(err, services.ErrBoardRestricted):
			return response.Forbidden(c, "Board is restricted to staff")
		default:
			return response.InternalServerError(c, "Failed to reply")
		}
	}

	return response.Created(c, "Reply posted successfully", fiber.Map{"post": post})
}

// ToggleLock advances a topic's lock state
// @Summary Toggle topic lock
// @Description Advances OPEN, LOCKED, LOCKED_ADMIN in a cycle
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 200 {object} response.Response
// @Router /forum/topics/{id}/lock [post]
func (h *ForumHandler) ToggleLock(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid topic ID")
	}

	status, err := h.forumService.ToggleLock(c.Context(), actorID, id, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			return response.NotFound(c, "Topic not found")
		}
		return response.InternalServerError(c, "Failed to toggle lock")
	}

	return response.Success(c, "Lock state updated", fiber.Map{"status": status})
}

// TogglePin flips a topic's pinned flag
// @Summary Toggle topic pin
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 200 {object} response.Response
// @Router /forum/topics/{id}/pin [post]
func (h *ForumHandler) TogglePin(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid topic ID")
	}

	pinned, err := h.forumService.TogglePin(c.Context(), actorID, id, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			return response.NotFound(c, "Topic not found")
		}
		return response.InternalServerError(c, "Failed to toggle pin")
	}

	return response.Success(c, "Pin state updated", fiber.Map{"pinned": pinned})
}

// RenameTopic changes a topic title
// @Summary Rename topic
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Param body body RenameRequest true "New title"
// @Success 200 {object} response.Response
// @Router /forum/topics/{id}/title [put]
func (h *ForumHandler) RenameTopic(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid topic ID")
	}

	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Topic title is required")
	}

	topic, err := h.forumService.RenameTopic(c.Context(), actorID, id, req.Name, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			return response.NotFound(c, "Topic not found")
		}
		return response.InternalServerError(c, "Failed to rename topic")
	}

	return response.Success(c, "Topic renamed successfully", fiber.Map{"topic": topic})
}

// DeleteTopic removes a topic
// @Summary Delete topic
// @Description Moves the topic to the trash board when one is configured
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Topic ID"
// @Success 200 {object} response.Response
// @Router /forum/topics/{id} [delete]
func (h *ForumHandler) DeleteTopic(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid topic ID")
	}

	if err := h.forumService.DeleteTopic(c.Context(), actorID, id, c.IP()); err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			return response.NotFound(c, "Topic not found")
		}
		return response.InternalServerError(c, "Failed to delete topic")
	}

	return response.Success(c, "Topic deleted successfully", nil)
}

// DeletePost removes a post
// @Summary Delete post
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response
// @Router /forum/posts/{id} [delete]
func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid post ID")
	}

	if err := h.forumService.DeletePost(c.Context(), actorID, id, c.IP()); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			return response.NotFound(c, "Post not found")
		}
		return response.InternalServerError(c, "Failed to delete post")
	}

	return response.Success(c, "Post deleted successfully", nil)
}
