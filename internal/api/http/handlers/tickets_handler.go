package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/api/dto"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/service"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/validation"
	apperrors "github.com/helpdesk-kit/ticket-lifecycle/pkg/util"
)

const bulkCancelMessage = "All in-progress tickets have been canceled"

// TicketsHandler exposes the ticket lifecycle over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cmd, err := validation.ParseCreate(req.Topic, req.Text)
	if err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TicketFromDomain(ticket))
}

// TakeTicket PUT /tickets/:id/take.
func (h *TicketsHandler) TakeTicket(c *fiber.Ctx) error {
	cmd, err := validation.ParseTake(c.Params("id"))
	if err != nil {
		return err
	}
	ticket, err := h.service.Take(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketFromDomain(ticket))
}

// CompleteTicket PUT /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	var req dto.CompleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cmd, err := validation.ParseComplete(c.Params("id"), req.ResolutionText)
	if err != nil {
		return err
	}
	ticket, err := h.service.Complete(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketFromDomain(ticket))
}

// CancelTicket PUT /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	var req dto.CancelTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cmd, err := validation.ParseCancel(c.Params("id"), req.CancellationReason)
	if err != nil {
		return err
	}
	ticket, err := h.service.Cancel(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketFromDomain(ticket))
}

// ListTickets GET /tickets?startDate&endDate.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	cmd, err := validation.ParseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return err
	}
	tickets, err := h.service.ListByCreatedRange(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketsFromDomain(tickets))
}

// CancelAllInProgress DELETE /tickets/cancel-in-progress.
func (h *TicketsHandler) CancelAllInProgress(c *fiber.Ctx) error {
	affected, err := h.service.CancelAllInProgress(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.BulkCancelResponse{
		Message:       bulkCancelMessage,
		AffectedCount: affected,
	})
}
