package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/cache"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/domain"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/events"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/repository"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/validation"
	"github.com/helpdesk-kit/ticket-lifecycle/pkg/util"
)

// TicketCache is the read-cache surface the service depends on. Satisfied
// by *cache.TicketCache; a nil value disables caching.
type TicketCache interface {
	Get(ctx context.Context, id string) (*domain.Ticket, bool)
	Put(ctx context.Context, ticket *domain.Ticket)
	Invalidate(ctx context.Context, id string)
	InvalidateAll(ctx context.Context)
}

// TicketService coordinates the ticket lifecycle: every operation composes
// a validated command, the state machine and the store. The service holds
// no durable state of its own.
type TicketService struct {
	tickets    repository.TicketRepository
	cache      TicketCache
	dispatcher events.Dispatcher

	// Now is injectable for deterministic timestamps in tests.
	Now func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service. Cache
// and Dispatcher are optional.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Cache      TicketCache
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Cache == nil {
		deps.Cache = (*cache.TicketCache)(nil)
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		Now:        time.Now,
	}
}

// Create registers a new ticket in status New. The store assigns identity
// and timestamps.
func (s *TicketService) Create(ctx context.Context, cmd validation.CreateTicket) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Topic:  cmd.Topic,
		Text:   cmd.Text,
		Status: domain.TicketStatusNew,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Topic: ticket.Topic},
	})
	return ticket, nil
}

// Take moves a ticket into progress.
func (s *TicketService) Take(ctx context.Context, cmd validation.TakeTicket) (*domain.Ticket, error) {
	return s.applyTransition(ctx, cmd.ID, func(t *domain.Ticket, now time.Time) error {
		return t.Take(now)
	})
}

// Complete finishes a ticket with the given resolution.
func (s *TicketService) Complete(ctx context.Context, cmd validation.CompleteTicket) (*domain.Ticket, error) {
	return s.applyTransition(ctx, cmd.ID, func(t *domain.Ticket, now time.Time) error {
		return t.Complete(cmd.ResolutionText, now)
	})
}

// Cancel aborts a ticket with the given reason.
func (s *TicketService) Cancel(ctx context.Context, cmd validation.CancelTicket) (*domain.Ticket, error) {
	return s.applyTransition(ctx, cmd.ID, func(t *domain.Ticket, now time.Time) error {
		return t.Cancel(cmd.CancellationReason, now)
	})
}

// CancelAllInProgress cancels every in-progress ticket in one store-level
// update and returns the affected count. Calling it again affects zero rows.
func (s *TicketService) CancelAllInProgress(ctx context.Context) (int64, error) {
	affected, err := s.tickets.CancelAllInProgress(ctx, s.Now())
	if err != nil {
		return 0, err
	}
	s.cache.InvalidateAll(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventTicketsBulkCancelled,
		Payload: events.TicketsBulkCancelledPayload{AffectedCount: affected},
	})
	return affected, nil
}

// ListByCreatedRange returns tickets created within [start, end], both
// bounds inclusive. An inverted range yields an empty result, not an error.
func (s *TicketService) ListByCreatedRange(ctx context.Context, cmd validation.TicketRange) ([]domain.Ticket, error) {
	return s.tickets.ListCreatedBetween(ctx, cmd.Start, cmd.End)
}

func (s *TicketService) applyTransition(ctx context.Context, id string, transition func(*domain.Ticket, time.Time) error) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	if err := transition(ticket, s.Now()); err != nil {
		return nil, mapTransitionError(err)
	}
	// Invalidate on both sides of the save: dropping the entry first keeps a
	// concurrent load during the write from resurrecting the pre-mutation
	// ticket for a full TTL. A load racing the second invalidation can still
	// cache briefly-stale state, which last-writer-wins tolerates.
	s.cache.Invalidate(ctx, ticket.ID)
	if err := s.tickets.Save(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, ticket.ID)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

func (s *TicketService) loadTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if ticket, ok := s.cache.Get(ctx, id); ok {
		return ticket, nil
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	s.cache.Put(ctx, ticket)
	return ticket, nil
}

func mapTransitionError(err error) error {
	var transitionErr *domain.TransitionError
	if errors.As(err, &transitionErr) {
		return util.NewConflict("ticket status does not allow this transition", map[string]any{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		})
	}
	return err
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
