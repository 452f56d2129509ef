package handlers

import (
	"ember-portal/internal/core/domain"
	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/pagination"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ShiftHandler handles staff time clock endpoints
type ShiftHandler struct {
	shiftService *services.ShiftService
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(shiftService *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// Open starts a shift
// @Summary Open shift
// @Description Opening with a shift already open returns it unchanged
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /shifts/open [post]
func (h *ShiftHandler) Open(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	shift, err := h.shiftService.Open(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to open shift")
	}

	return response.Success(c, "Shift opened", fiber.Map{"shift": shift})
}

// Close ends the open shift
// @Summary Close shift
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /shifts/close [post]
func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	shift, err := h.shiftService.Close(c.Context(), userID)
	if err != nil {
		if pe, ok := domain.AsPrecondition(err); ok {
			return response.PreconditionFailed(c, pe.Reason, pe.Message)
		}
		return response.InternalServerError(c, "Failed to close shift")
	}

	return response.Success(c, "Shift closed", fiber.Map{"shift": shift})
}

// Summary returns the caller's accumulated time
// @Summary Shift summary
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /shifts/summary [get]
func (h *ShiftHandler) Summary(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	summary, err := h.shiftService.Summary(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get summary")
	}

	return response.Success(c, "Summary retrieved successfully", fiber.Map{"summary": summary})
}

// ListOwn lists the caller's shifts
// @Summary List own shifts
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /shifts [get]
func (h *ShiftHandler) ListOwn(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	shifts, total, err := h.shiftService.ListOwn(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list shifts")
	}

	return response.Success(c, "Shifts retrieved successfully", pagination.NewResponse(shifts, params, total))
}

// ListAll lists every shift for administration
// @Summary List all shifts
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /shifts/all [get]
func (h *ShiftHandler) ListAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	shifts, total, err := h.shiftService.ListAll(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list shifts")
	}

	return response.Success(c, "Shifts retrieved successfully", pagination.NewResponse(shifts, params, total))
}

// ResetAll wipes the time clock
// @Summary Reset time clock
// @Description Owner only; removes every shift record
// @Tags Shifts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /shifts [delete]
func (h *ShiftHandler) ResetAll(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	if err := h.shiftService.ResetAll(c.Context(), actorID, c.IP()); err != nil {
		return response.InternalServerError(c, "Failed to reset time clock")
	}

	return response.Success(c, "Time clock reset", nil)
}
