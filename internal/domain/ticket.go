package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusCompleted  TicketStatus = "Completed"
	TicketStatusCancelled  TicketStatus = "Cancelled"
)

// Ticket is the aggregate for support requests. Topic and Text are set at
// creation and never mutated afterward; Status moves only forward through
// the transition table below.
type Ticket struct {
	ID                 string
	Topic              string
	Text               string
	Status             TicketStatus
	ResolutionText     *string
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// allowedTransitions is the authoritative transition table. Completed and
// Cancelled are absorbing: no outgoing edges. InProgress -> InProgress keeps
// re-taking an already taken ticket legal.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusNew:        {TicketStatusInProgress, TicketStatusCompleted, TicketStatusCancelled},
	TicketStatusInProgress: {TicketStatusInProgress, TicketStatusCompleted, TicketStatusCancelled},
	TicketStatusCompleted:  {},
	TicketStatusCancelled:  {},
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s TicketStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// TransitionError reports an attempted status change the machine forbids.
type TransitionError struct {
	From TicketStatus
	To   TicketStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition ticket from %s to %s", e.From, e.To)
}

func (t *Ticket) transitionTo(next TicketStatus, now time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return &TransitionError{From: t.Status, To: next}
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}

// Take moves the ticket into progress.
func (t *Ticket) Take(now time.Time) error {
	return t.transitionTo(TicketStatusInProgress, now)
}

// Complete finishes the ticket and records the resolution.
func (t *Ticket) Complete(resolutionText string, now time.Time) error {
	if err := t.transitionTo(TicketStatusCompleted, now); err != nil {
		return err
	}
	t.ResolutionText = &resolutionText
	return nil
}

// Cancel aborts the ticket and records the reason.
func (t *Ticket) Cancel(cancellationReason string, now time.Time) error {
	if err := t.transitionTo(TicketStatusCancelled, now); err != nil {
		return err
	}
	t.CancellationReason = &cancellationReason
	return nil
}
