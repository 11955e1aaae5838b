package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	boom := errors.New("boom")

	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.TicketID)
		return boom
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketValidated, func(context.Context, Event) error {
		seen = append(seen, "validated")
		return nil
	})

	err := d.Publish(context.Background(), New(EventTicketCreated, "t-1", TicketCreatedPayload{}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:t-1", "second:t-1"}, seen)
}

func TestNewStampsEvent(t *testing.T) {
	e := New(EventTicketUpdated, "t-2", nil)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventTicketUpdated, e.Type)
	assert.False(t, e.Timestamp.IsZero())

	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), e))
}
