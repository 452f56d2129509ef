package handlers

import (
	"errors"

	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/pagination"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles direct message endpoints
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send delivers a direct message
// @Summary Send message
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SendInput true "Message data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /messages [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.SendInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Body == "" {
		return response.BadRequest(c, "Message body is required")
	}

	message, err := h.messageService.Send(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfMessage):
			return response.BadRequest(c, "Cannot message yourself")
		case errors.Is(err, services.ErrRecipientNotFound):
			return response.NotFound(c, "Recipient not found")
		default:
			return response.InternalServerError(c, "Failed to send message")
		}
	}

	return response.Created(c, "Message sent successfully", fiber.Map{"message": message})
}

// Inbox lists received messages
// @Summary Inbox
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /messages [get]
func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	messages, total, err := h.messageService.Inbox(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list messages")
	}

	return response.Success(c, "Messages retrieved successfully", pagination.NewResponse(messages, params, total))
}

// Conversation lists messages between the caller and another user
// @Summary Conversation
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Other user ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /messages/with/{id} [get]
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	otherID, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	params := pagination.GetParams(c)
	messages, total, err := h.messageService.Conversation(c.Context(), userID, otherID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list conversation")
	}

	return response.Success(c, "Conversation retrieved successfully", pagination.NewResponse(messages, params, total))
}

// UnreadCount counts unread messages
// @Summary Unread count
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /messages/unread [get]
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.messageService.UnreadCount(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count unread messages")
	}

	return response.Success(c, "Unread count retrieved", fiber.Map{"unread": count})
}

// MarkRead stamps a message as read
// @Summary Mark message read
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} response.Response
// @Router /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid message ID")
	}

	if err := h.messageService.MarkRead(c.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, services.ErrMessageNotFound):
			return response.NotFound(c, "Message not found")
		case errors.Is(err, services.ErrMessageAccessDenied):
			return response.Forbidden(c, "Not the recipient of this message")
		default:
			return response.InternalServerError(c, "Failed to mark message read")
		}
	}

	return response.Success(c, "Message marked read", nil)
}

// Delete removes a message
// @Summary Delete message
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} response.Response
// @Router /messages/{id} [delete]
func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid message ID")
	}

	if err := h.messageService.Delete(c.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, services.ErrMessageNotFound):
			return response.NotFound(c, "Message not found")
		case errors.Is(err, services.ErrMessageAccessDenied):
			return response.Forbidden(c, "Not a participant of this message")
		default:
			return response.InternalServerError(c, "Failed to delete message")
		}
	}

	return response.Success(c, "Message deleted successfully", nil)
}
