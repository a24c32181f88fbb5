package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	var got []Type

	unsubscribe := bus.Subscribe(func(_ context.Context, e Event) {
		mu.Lock()
		got = append(got, e.Type)
		mu.Unlock()
	})

	require.NoError(t, bus.Publish(context.Background(), New(DocumentCreated, "document", 1, "FAC-2024-0001", 2024)))
	unsubscribe()
	require.NoError(t, bus.Publish(context.Background(), New(DocumentDeleted, "document", 1, "FAC-2024-0001", 2024)))

	assert.Equal(t, []Type{DocumentCreated}, got)
}

func TestNewFillsIdentity(t *testing.T) {
	e := New(ChargeCreated, "charge", 7, "CHG-1", 2024)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.OccurredAt.IsZero())
	assert.Equal(t, uint(7), e.EntityID)
	assert.NotEqual(t, e.ID, New(ChargeCreated, "charge", 7, "CHG-1", 2024).ID)
}

func TestMultiTriesEveryPublisher(t *testing.T) {
	bus := NewBus()
	delivered := 0
	bus.Subscribe(func(context.Context, Event) { delivered++ })

	boom := errors.New("broker down")
	m := Multi{failingPublisher{err: boom}, nil, bus, Noop{}}
	err := m.Publish(context.Background(), New(DeclarationCreated, "declaration", 3, "", 2024))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, delivered)
}
