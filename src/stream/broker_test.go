package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unify-server/src/models"
)

func drain(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestBroadcastStatus(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.BroadcastStatus(models.StreamStatus{Source: models.SourceBankAccount, State: models.StreamPending})

	events := drain(ch)
	require.Len(t, events, 1)
	assert.Equal(t, "status", events[0].Name)
	status := events[0].Data.(models.StreamStatus)
	assert.Equal(t, models.StreamPending, status.State)
}

func TestSubscribeReplaysLastStatus(t *testing.T) {
	b := NewBroker()
	b.BroadcastStatus(models.StreamStatus{Source: models.SourceBankAccount, State: models.StreamReady})
	b.BroadcastStatus(models.StreamStatus{Source: models.SourceTrading212, State: models.StreamError, Error: "export failed"})

	ch, cancel := b.Subscribe()
	defer cancel()

	events := drain(ch)
	require.Len(t, events, 2)
	states := make(map[models.Source]models.StreamState)
	for _, ev := range events {
		status := ev.Data.(models.StreamStatus)
		states[status.Source] = status.State
	}
	assert.Equal(t, models.StreamReady, states[models.SourceBankAccount])
	assert.Equal(t, models.StreamError, states[models.SourceTrading212])
}

func TestBroadcastUpdateAdvancesStatus(t *testing.T) {
	b := NewBroker()
	b.BroadcastStatus(models.StreamStatus{Source: models.SourceTrading212, State: models.StreamPending})
	b.BroadcastUpdate(models.StreamUpdate{Source: models.SourceTrading212, Data: "payload"})

	ch, cancel := b.Subscribe()
	defer cancel()

	events := drain(ch)
	require.Len(t, events, 1)
	status := events[0].Data.(models.StreamStatus)
	assert.Equal(t, models.StreamReady, status.State)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	_, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*3; i++ {
		b.BroadcastStatus(models.StreamStatus{Source: models.SourceBankAccount, State: models.StreamPending})
	}
	// Reaching here at all is the assertion; the buffer overflowed and
	// broadcasts kept going.
}

func TestCancelRemovesSubscriber(t *testing.T) {
	b := NewBroker()
	_, cancel := b.Subscribe()
	assert.Equal(t, 1, b.SubscriberCount())

	cancel()
	cancel() // idempotent
	assert.Equal(t, 0, b.SubscriberCount())
}
