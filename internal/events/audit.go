package events

import (
	"context"

	"go.uber.org/zap"
)

// RegisterAuditLog subscribes a logging handler for every lifecycle event,
// producing an append-only audit trail in the service log.
func RegisterAuditLog(dispatcher Dispatcher, logger *zap.Logger) {
	handler := func(_ context.Context, event Event) error {
		logger.Info("ticket event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
	dispatcher.Subscribe(EventTicketCreated, handler)
	dispatcher.Subscribe(EventTicketStatusChanged, handler)
	dispatcher.Subscribe(EventTicketsBulkCancelled, handler)
}
