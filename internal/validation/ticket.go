// Package validation builds typed commands out of raw request input. Each
// parse function checks every field and reports all violations together; the
// service layer only ever sees commands that passed these contracts.
package validation

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/helpdesk-kit/ticket-lifecycle/pkg/util"
)

// Minimum lengths count characters, not bytes; submitted text is often
// multibyte.
const (
	minTopicLen  = 3
	minTextLen   = 10
	minReasonLen = 5
)

// CreateTicket is the validated creation command.
type CreateTicket struct {
	Topic string
	Text  string
}

// TakeTicket identifies the ticket to move into progress.
type TakeTicket struct {
	ID string
}

// CompleteTicket carries the resolution for a ticket.
type CompleteTicket struct {
	ID             string
	ResolutionText string
}

// CancelTicket carries the cancellation reason for a ticket.
type CancelTicket struct {
	ID                 string
	CancellationReason string
}

// TicketRange bounds a createdAt query.
type TicketRange struct {
	Start time.Time
	End   time.Time
}

// ParseCreate validates ticket creation input.
func ParseCreate(topic, text string) (CreateTicket, error) {
	violations := map[string]any{}
	if utf8.RuneCountInString(topic) < minTopicLen {
		violations["topic"] = "must be at least 3 characters long"
	}
	if utf8.RuneCountInString(text) < minTextLen {
		violations["text"] = "must be at least 10 characters long"
	}
	if len(violations) > 0 {
		return CreateTicket{}, util.NewValidationError("invalid ticket payload", violations)
	}
	return CreateTicket{Topic: topic, Text: text}, nil
}

// ParseTake validates the path identifier for the take operation.
func ParseTake(id string) (TakeTicket, error) {
	violations := map[string]any{}
	checkID(id, violations)
	if len(violations) > 0 {
		return TakeTicket{}, util.NewValidationError("invalid ticket payload", violations)
	}
	return TakeTicket{ID: id}, nil
}

// ParseComplete validates the identifier and resolution text.
func ParseComplete(id, resolutionText string) (CompleteTicket, error) {
	violations := map[string]any{}
	checkID(id, violations)
	if utf8.RuneCountInString(resolutionText) < 1 {
		violations["resolutionText"] = "resolution text is required"
	}
	if len(violations) > 0 {
		return CompleteTicket{}, util.NewValidationError("invalid ticket payload", violations)
	}
	return CompleteTicket{ID: id, ResolutionText: resolutionText}, nil
}

// ParseCancel validates the identifier and cancellation reason.
func ParseCancel(id, cancellationReason string) (CancelTicket, error) {
	violations := map[string]any{}
	checkID(id, violations)
	if utf8.RuneCountInString(cancellationReason) < minReasonLen {
		violations["cancellationReason"] = "must be at least 5 characters long"
	}
	if len(violations) > 0 {
		return CancelTicket{}, util.NewValidationError("invalid ticket payload", violations)
	}
	return CancelTicket{ID: id, CancellationReason: cancellationReason}, nil
}

// ParseRange validates the createdAt query bounds. Both bounds must be
// RFC 3339 timestamps with an explicit offset. Ordering between them is not
// checked here; an inverted range is a legal query that matches nothing.
func ParseRange(startDate, endDate string) (TicketRange, error) {
	violations := map[string]any{}
	start, ok := checkTimestamp("startDate", startDate, violations)
	end, ok2 := checkTimestamp("endDate", endDate, violations)
	if !ok || !ok2 {
		return TicketRange{}, util.NewValidationError("invalid date range", violations)
	}
	return TicketRange{Start: start, End: end}, nil
}

func checkID(id string, violations map[string]any) {
	if _, err := uuid.Parse(id); err != nil {
		violations["id"] = "invalid ticket ID format"
	}
}

func checkTimestamp(field, value string, violations map[string]any) (time.Time, bool) {
	if value == "" {
		violations[field] = "is required"
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		violations[field] = "must be an RFC 3339 timestamp with offset"
		return time.Time{}, false
	}
	return ts, true
}
