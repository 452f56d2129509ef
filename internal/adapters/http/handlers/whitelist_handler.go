package handlers

import (
	"errors"

	"ember-portal/internal/core/domain"
	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/pagination"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WhitelistHandler handles whitelist application endpoints
type WhitelistHandler struct {
	whitelistService *services.WhitelistService
}

// NewWhitelistHandler creates a new whitelist handler
func NewWhitelistHandler(whitelistService *services.WhitelistService) *WhitelistHandler {
	return &WhitelistHandler{whitelistService: whitelistService}
}

// RevokeRequest represents a revocation request body
type RevokeRequest struct {
	Note string `json:"note"`
}

// ListQuestions lists active questions for applicants
// @Summary List whitelist questions
// @Tags Whitelist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /whitelist/questions [get]
func (h *WhitelistHandler) ListQuestions(c *fiber.Ctx) error {
	questions, err := h.whitelistService.ListQuestions(c.Context(), true)
	if err != nil {
		return response.InternalServerError(c, "Failed to list questions")
	}

	return response.Success(c, "Questions retrieved successfully", fiber.Map{"questions": questions})
}

// ListAllQuestions lists every question for administration
// @Summary List all whitelist questions
// @Tags Whitelist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /whitelist/questions/all [get]
func (h *WhitelistHandler) ListAllQuestions(c *fiber.Ctx) error {
	questions, err := h.whitelistService.ListQuestions(c.Context(), false)
	if err != nil {
		return response.InternalServerError(c, "Failed to list questions")
	}

	return response.Success(c, "Questions retrieved successfully", fiber.Map{"questions": questions})
}

// CreateQuestion creates a question
// @Summary Create whitelist question
// @Tags Whitelist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.QuestionInput true "Question data"
// @Success 201 {object} response.Response
// @Router /whitelist/questions [post]
func (h *WhitelistHandler) CreateQuestion(c *fiber.Ctx) error {
	var input services.QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Prompt == "" {
		return response.BadRequest(c, "Question prompt is required")
	}

	question, err := h.whitelistService.CreateQuestion(c.Context(), &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create question")
	}

	return response.Created(c, "Question created successfully", fiber.Map{"question": question})
}

// UpdateQuestion updates a question
// @Summary Update whitelist question
// @Tags Whitelist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param body body services.QuestionInput true "Question data"
// @Success 200 {object} response.Response
// @Router /whitelist/questions/{id} [put]
func (h *WhitelistHandler) UpdateQuestion(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid question ID")
	}

	var input services.QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Prompt == "" {
		return response.BadRequest(c, "Question prompt is required")
	}

	question, err := h.whitelistService.UpdateQuestion(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, services.ErrQuestionNotFound) {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to update question")
	}

	return response.Success(c, "Question updated successfully", fiber.Map{"question": question})
}

// Submit files an application
// @Summary Submit whitelist application
// @Tags Whitelist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitInput true "Answers"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /whitelist/applications [post]
func (h *WhitelistHandler) Submit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.whitelistService.Submit(c.Context(), userID, &input)
	if err != nil {
		if pe, ok := domain.AsPrecondition(err); ok {
			return response.PreconditionFailed(c, pe.Reason, pe.Message)
		}
		switch {
		case errors.Is(err, services.ErrMinecraftNameRequired):
			return response.BadRequest(c, "Set your minecraft name before applying")
		case errors.Is(err, services.ErrMissingAnswers):
			return response.BadRequest(c, "All required questions must be answered")
		case errors.Is(err, services.ErrUnknownQuestionAnswer):
			return response.BadRequest(c, "Answer references unknown question")
		default:
			return response.InternalServerError(c, "Failed to submit application")
		}
	}

	return response.Created(c, "Application submitted successfully", fiber.Map{"application": app})
}

// GetOwn returns the caller's most recent application
// @Summary Get own application
// @Tags Whitelist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /whitelist/applications/me [get]
func (h *WhitelistHandler) GetOwn(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	app, err := h.whitelistService.GetOwn(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get application")
	}

	return response.Success(c, "Application retrieved successfully", fiber.Map{"application": app})
}

// Get returns one application for review
// @Summary Get application
// @Tags Whitelist
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /whitelist/applications/{id} [get]
func (h *WhitelistHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.whitelistService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to get application")
	}

	return response.Success(c, "Application retrieved successfully", fiber.Map{"application": app})
}

// List lists applications by status
// @Summary List applications
// @Description Status APPROVED_USERS lists whitelisted members instead
// @Tags Whitelist
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /whitelist/applications [get]
func (h *WhitelistHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	list, err := h.whitelistService.List(c.Context(), c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", fiber.Map{
		"list": list,
		"meta": pagination.GetMeta(params, list.Total),
	})
}

// Review decides a pending application
// @Summary Review application
// @Tags Whitelist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body services.ReviewInput true "Decision"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /whitelist/applications/{id}/review [post]
func (h *WhitelistHandler) Review(c *fiber.Ctx) error {
	reviewerID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.whitelistService.Review(c.Context(), reviewerID, id, &input, c.IP())
	if err != nil {
		if pe, ok := domain.AsPrecondition(err); ok {
			return response.PreconditionFailed(c, pe.Reason, pe.Message)
		}
		switch {
		case errors.Is(err, services.ErrInvalidDecision):
			return response.BadRequest(c, "Decision must be APPROVED or REJECTED")
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		default:
			return response.InternalServerError(c, "Failed to review application")
		}
	}

	return response.Success(c, "Application reviewed successfully", fiber.Map{"application": app})
}

// Revoke pulls a user off the whitelist
// @Summary Revoke application
// @Tags Whitelist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body RevokeRequest true "Note"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /whitelist/applications/{id}/revoke [post]
func (h *WhitelistHandler) Revoke(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req RevokeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.whitelistService.Revoke(c.Context(), actorID, id, req.Note, c.IP())
	if err != nil {
		if pe, ok := domain.AsPrecondition(err); ok {
			return response.PreconditionFailed(c, pe.Reason, pe.Message)
		}
		if errors.Is(err, services.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to revoke application")
	}

	return response.Success(c, "Application revoked successfully", fiber.Map{"application": app})
}
