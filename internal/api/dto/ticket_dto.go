package dto

import (
	"time"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

// CompleteTicketRequest payload.
type CompleteTicketRequest struct {
	ResolutionText string `json:"resolutionText"`
}

// CancelTicketRequest payload.
type CancelTicketRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID                 string              `json:"id"`
	Topic              string              `json:"topic"`
	Text               string              `json:"text"`
	Status             domain.TicketStatus `json:"status"`
	ResolutionText     *string             `json:"resolutionText"`
	CancellationReason *string             `json:"cancellationReason"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// BulkCancelResponse reports the outcome of cancelling all in-progress
// tickets.
type BulkCancelResponse struct {
	Message       string `json:"message"`
	AffectedCount int64  `json:"affectedCount"`
}

// TicketFromDomain maps a ticket entity to its response shape.
func TicketFromDomain(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 ticket.ID,
		Topic:              ticket.Topic,
		Text:               ticket.Text,
		Status:             ticket.Status,
		ResolutionText:     ticket.ResolutionText,
		CancellationReason: ticket.CancellationReason,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
	}
}

// TicketsFromDomain maps a slice of ticket entities.
func TicketsFromDomain(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, TicketFromDomain(&tickets[i]))
	}
	return items
}
