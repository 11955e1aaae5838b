package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/diario-de-bordo/internal/api/dto"
	"github.com/spec-kit/diario-de-bordo/internal/escalation"
	"github.com/spec-kit/diario-de-bordo/internal/service"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

// EscalationHandler serves the escalation board and the closure workflow.
type EscalationHandler struct {
	service *service.TicketService
}

// NewEscalationHandler constructs handler.
func NewEscalationHandler(ticketService *service.TicketService) *EscalationHandler {
	return &EscalationHandler{service: ticketService}
}

// Board GET /escalations.
func (h *EscalationHandler) Board(c *fiber.Ctx) error {
	board, err := h.service.EscalationBoard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(board)})
}

// OpenValidation GET /escalations/:id/validation.
func (h *EscalationHandler) OpenValidation(c *fiber.Ctx) error {
	ticket, form, err := h.service.OpenValidation(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ValidationFormResponse{
		Ticket:    dto.NewTicketResponse(ticket),
		Form:      dto.NewValidationForm(form),
		Summary:   escalation.Summary(ticket, form),
		CanCommit: form.CanCommit(),
	}})
}

// PreviewSummary POST /escalations/:id/validation/summary.
func (h *EscalationHandler) PreviewSummary(c *fiber.Ctx) error {
	form, err := parseValidationForm(c)
	if err != nil {
		return err
	}
	summary, err := h.service.ValidationSummary(c.UserContext(), c.Params("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ValidationSummaryResponse{
		Summary:   summary,
		CanCommit: form.CanCommit(),
	}})
}

// CommitValidation POST /escalations/:id/validation.
func (h *EscalationHandler) CommitValidation(c *fiber.Ctx) error {
	form, err := parseValidationForm(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.CommitValidation(c.UserContext(), c.Params("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

func parseValidationForm(c *fiber.Ctx) (escalation.ValidationForm, error) {
	var req dto.ValidationForm
	if err := c.BodyParser(&req); err != nil {
		return escalation.ValidationForm{}, apperrors.NewValidationError("payload inválido", nil)
	}
	return req.ToDomain(), nil
}
