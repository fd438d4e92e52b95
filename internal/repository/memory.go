package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/domain"
)

// MemoryTicketRepository is a mutex-guarded in-memory TicketRepository used
// for tests and for running the service without a database. Tickets are
// stored by value so callers never share mutable state with the store.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket

	// Now is injectable for deterministic timestamps in tests.
	Now func() time.Time
}

// NewMemoryTicketRepository constructs an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		tickets: make(map[string]domain.Ticket),
		Now:     time.Now,
	}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	now := r.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (r *MemoryTicketRepository) Save(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return ErrNotFound
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

// CancelAllInProgress sweeps every in-progress ticket under a single lock
// hold, making the bulk update atomic with respect to other operations.
func (r *MemoryTicketRepository) CancelAllInProgress(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for id, ticket := range r.tickets {
		if ticket.Status != domain.TicketStatusInProgress {
			continue
		}
		ticket.Status = domain.TicketStatusCancelled
		ticket.UpdatedAt = now
		r.tickets[id] = ticket
		affected++
	}
	return affected, nil
}

// ListCreatedBetween returns tickets with CreatedAt in [start, end], both
// bounds inclusive, ordered by creation time.
func (r *MemoryTicketRepository) ListCreatedBetween(_ context.Context, start, end time.Time) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if ticket.CreatedAt.Before(start) || ticket.CreatedAt.After(end) {
			continue
		}
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
