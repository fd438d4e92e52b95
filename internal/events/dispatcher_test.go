package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var seen []EventType
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event.Type)
		return nil
	})
	dispatcher.Subscribe(EventTicketStatusChanged, func(_ context.Context, event Event) error {
		seen = append(seen, event.Type)
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketsBulkCancelled}); err != nil {
		t.Fatalf("publish unsubscribed: %v", err)
	}

	if len(seen) != 1 || seen[0] != EventTicketCreated {
		t.Fatalf("seen = %v", seen)
	}
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	invoked := false
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("handler failure")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		invoked = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !invoked {
		t.Fatal("later handler skipped after failure")
	}
}
