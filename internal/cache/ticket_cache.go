// Package cache provides a Redis read-through cache for single-ticket
// lookups. Every method is safe on a nil cache or nil client, so the
// service layer never branches on whether caching is enabled.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/domain"
)

const keyPrefix = "ticket:"

// TicketCache caches tickets by id with a short TTL.
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a cache over the given client. A nil client disables
// caching.
func New(client *redis.Client, ttl time.Duration) *TicketCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TicketCache{client: client, ttl: ttl}
}

// Get returns the cached ticket for id. Any redis or codec error counts as
// a miss.
func (c *TicketCache) Get(ctx context.Context, id string) (*domain.Ticket, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(payload, &ticket); err != nil {
		return nil, false
	}
	return &ticket, true
}

// Put stores the ticket under its id. Errors are dropped; the store stays
// authoritative.
func (c *TicketCache) Put(ctx context.Context, ticket *domain.Ticket) {
	if c == nil || c.client == nil || ticket == nil {
		return
	}
	payload, err := json.Marshal(ticket)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, keyPrefix+ticket.ID, payload, c.ttl).Err()
}

// Invalidate drops the cached entry for id.
func (c *TicketCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, keyPrefix+id).Err()
}

// InvalidateAll drops every cached ticket. Used after bulk updates, where
// the affected id set is not known to the caller.
func (c *TicketCache) InvalidateAll(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}
