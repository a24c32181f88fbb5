// Package events carries notifications about committed mutations so that
// views and external consumers can refresh without being called directly.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names a mutation.
type Type string

const (
	DocumentCreated       Type = "document.created"
	DocumentUpdated       Type = "document.updated"
	DocumentDeleted       Type = "document.deleted"
	DocumentStatusChanged Type = "document.status_changed"

	ChargeCreated Type = "charge.created"
	ChargeUpdated Type = "charge.updated"
	ChargeDeleted Type = "charge.deleted"

	DeclarationCreated       Type = "declaration.created"
	DeclarationUpdated       Type = "declaration.updated"
	DeclarationDeleted       Type = "declaration.deleted"
	DeclarationStatusChanged Type = "declaration.status_changed"
)

// Event describes one committed mutation. Year is the calendar year the
// record belongs to, so report views know which summaries are stale.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Entity     string    `json:"entity"`
	EntityID   uint      `json:"entity_id"`
	Reference  string    `json:"reference,omitempty"`
	Status     string    `json:"status,omitempty"`
	Year       int       `json:"year,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event with a fresh id and timestamp.
func New(t Type, entity string, id uint, reference string, year int) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Entity:     entity,
		EntityID:   id,
		Reference:  reference,
		Year:       year,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher is implemented by anything that can forward events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Handler receives events from a Bus.
type Handler func(ctx context.Context, e Event)

// Bus is an in-process, synchronous fan-out publisher.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function removing it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish calls every subscriber in turn. It never fails.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, e)
	}
	return nil
}

// Multi forwards to several publishers and returns the first error after
// trying all of them.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
