package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/diario-de-bordo/internal/api/dto"
	"github.com/spec-kit/diario-de-bordo/internal/service"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets?search=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	snap, err := h.service.Tickets(c.UserContext(), strings.TrimSpace(c.Query("search")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(snap)})
}

// RefreshTickets POST /tickets/refresh.
func (h *TicketsHandler) RefreshTickets(c *fiber.Ctx) error {
	snap, err := h.service.Refresh(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(snap)})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	ticket, err := h.service.Update(c.UserContext(), c.Params("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// TicketReport GET /tickets/:id/report.
func (h *TicketsHandler) TicketReport(c *fiber.Ctx) error {
	id := c.Params("id")
	text, err := h.service.Report(c.UserContext(), id)
	if err != nil {
		return err
	}
	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextPlain) == fiber.MIMETextPlain {
		return c.Type("txt", "utf-8").SendString(text)
	}
	return c.JSON(fiber.Map{"data": dto.ReportResponse{TicketID: id, Text: text}})
}

// ClassifyTicket POST /tickets/classify.
func (h *TicketsHandler) ClassifyTicket(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	result, err := h.service.Classify(c.UserContext(), req.Description, req.ClientName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ClassifyResponse(result)})
}

func ticketList(snap service.Snapshot) dto.TicketListResponse {
	resp := dto.TicketListResponse{
		Tickets: dto.NewTicketResponses(snap.Tickets),
		Count:   len(snap.Tickets),
		Loading: snap.Loading,
	}
	if !snap.LoadedAt.IsZero() {
		loadedAt := snap.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	return resp
}
