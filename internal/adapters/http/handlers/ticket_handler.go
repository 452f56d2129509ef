package handlers

import (
	"errors"

	"ember-portal/internal/adapters/http/middleware"
	"ember-portal/internal/core/domain"
	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/pagination"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TicketHandler handles support ticket endpoints
type TicketHandler struct {
	ticketService *services.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// AssignRequest represents assignment request body
type AssignRequest struct {
	AssigneeID uint `json:"assignee_id"`
}

// RatingRequest represents a rating submission body
type RatingRequest struct {
	RequirementID uint `json:"requirement_id"`
	Score         int  `json:"score"`
}

// Create opens a ticket
// @Summary Create ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateTicketInput true "Ticket data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /tickets [post]
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateTicketInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Subject == "" || input.Body == "" {
		return response.BadRequest(c, "Subject and body are required")
	}

	ticket, err := h.ticketService.Create(c.Context(), userID, &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create ticket")
	}

	return response.Created(c, "Ticket created successfully", fiber.Map{"ticket": ticket})
}

// List lists tickets
// @Summary List tickets
// @Description Members see their own tickets, staff see all
// @Tags Tickets
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /tickets [get]
func (h *TicketHandler) List(c *fiber.Ctx) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	tickets, total, err := h.ticketService.List(c.Context(), sub, c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list tickets")
	}

	return response.Success(c, "Tickets retrieved successfully", pagination.NewResponse(tickets, params, total))
}

// Get returns one ticket with its messages
// @Summary Get ticket
// @Tags Tickets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	ticket, err := h.ticketService.Get(c.Context(), sub, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			return response.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrTicketAccessDenied):
			return response.Forbidden(c, "Not allowed to view this ticket")
		default:
			return response.InternalServerError(c, "Failed to get ticket")
		}
	}

	return response.Success(c, "Ticket retrieved successfully", fiber.Map{"ticket": ticket})
}

// Reply adds a message to a ticket
// @Summary Reply to ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body services.ReplyInput true "Reply data"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /tickets/{id}/messages [post]
func (h *TicketHandler) Reply(c *fiber.Ctx) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var input services.ReplyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Body == "" {
		return response.BadRequest(c, "Reply body is required")
	}

	message, err := h.ticketService.Reply(c.Context(), sub, id, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			return response.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrTicketAccessDenied):
			return response.Forbidden(c, "Not allowed to reply to this ticket")
		case errors.Is(err, services.ErrTicketClosed):
			return response.Conflict(c, "Ticket is closed")
		default:
			return response.InternalServerError(c, "Failed to reply")
		}
	}

	return response.Created(c, "Reply posted successfully", fiber.Map{"message": message})
}

// Assign puts a staff member on a ticket
// @Summary Assign ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body AssignRequest true "Assignee"
// @Success 200 {object} response.Response
// @Router /tickets/{id}/assign [put]
func (h *TicketHandler) Assign(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ticket, err := h.ticketService.Assign(c.Context(), actorID, id, req.AssigneeID, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			return response.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "Assignee not found")
		case errors.Is(err, services.ErrTicketClosed):
			return response.Conflict(c, "Ticket is closed")
		default:
			return response.InternalServerError(c, "Failed to assign ticket")
		}
	}

	return response.Success(c, "Ticket assigned successfully", fiber.Map{"ticket": ticket})
}

// Close closes a ticket
// @Summary Close ticket
// @Description Closing queues a rating obligation for the creator
// @Tags Tickets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Response
// @Router /tickets/{id}/close [post]
func (h *TicketHandler) Close(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	ticket, err := h.ticketService.Close(c.Context(), actorID, id, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		return response.InternalServerError(c, "Failed to close ticket")
	}

	return response.Success(c, "Ticket closed successfully", fiber.Map{"ticket": ticket})
}

// Delete removes a closed ticket
// @Summary Delete ticket
// @Description Only closed tickets may be deleted
// @Tags Tickets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /tickets/{id} [delete]
func (h *TicketHandler) Delete(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	if err := h.ticketService.Delete(c.Context(), actorID, id, c.IP()); err != nil {
		if pe, ok := domain.AsPrecondition(err); ok {
			return response.PreconditionFailed(c, pe.Reason, pe.Message)
		}
		if errors.Is(err, services.ErrTicketNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		return response.InternalServerError(c, "Failed to delete ticket")
	}

	return response.Success(c, "Ticket deleted successfully", nil)
}

// NextRating returns the caller's oldest outstanding rating obligation
// @Summary Next rating obligation
// @Tags Tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /tickets/ratings/next [get]
func (h *TicketHandler) NextRating(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	req, err := h.ticketService.NextRating(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get rating obligation")
	}

	count, err := h.ticketService.PendingRatingCount(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count rating obligations")
	}

	return response.Success(c, "Rating obligation retrieved", fiber.Map{
		"requirement": req,
		"pending":     count,
	})
}

// SubmitRating completes one rating obligation
// @Summary Submit rating
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RatingRequest true "Rating"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /tickets/ratings [post]
func (h *TicketHandler) SubmitRating(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.ticketService.SubmitRating(c.Context(), userID, req.RequirementID, req.Score); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidScore):
			return response.BadRequest(c, "Score must be between 1 and 5")
		case errors.Is(err, services.ErrRatingNotFound):
			return response.NotFound(c, "Rating obligation not found")
		case errors.Is(err, services.ErrRatingCompleted):
			return response.Conflict(c, "Rating already submitted")
		default:
			return response.InternalServerError(c, "Failed to submit rating")
		}
	}

	return response.Success(c, "Rating submitted successfully", nil)
}
