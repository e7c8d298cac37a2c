package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gochan "github.com/intelogroup/clixen/pkg/channels/gochannel"
	"github.com/intelogroup/clixen/pkg/events"
	"github.com/intelogroup/clixen/pkg/models"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	publisher, subscriber, err := gochan.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(publisher, subscriber)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestPublishAndSubscribe(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.PhaseChanged, 1)
	require.NoError(t, bus.Handle(events.PhaseChangedEvent, func(_ context.Context, event any) error {
		phaseChanged, ok := event.(*events.PhaseChanged)
		require.True(t, ok)
		received <- phaseChanged

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	require.NoError(t, bus.Subscribe(ctx))

	event := events.PhaseChanged{
		BaseEvent: events.NewBaseEvent(events.PhaseChangedEvent, "sess-1"),
		From:      models.PhaseConfirming,
		To:        models.PhaseGenerating,
	}
	require.NoError(t, bus.Publish(ctx, "sess-1", event))

	select {
	case got := <-received:
		assert.Equal(t, "sess-1", got.SessionID)
		assert.Equal(t, models.PhaseGenerating, got.To)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	bus := newTestBus(t)

	handled := make(chan struct{}, 1)
	require.NoError(t, bus.Handle(events.WorkflowDeployedEvent, func(context.Context, any) error {
		handled <- struct{}{}

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	require.NoError(t, bus.Subscribe(ctx))

	started := events.ConversationStarted{
		BaseEvent: events.NewBaseEvent(events.ConversationStartedEvent, "sess-1"),
		UserID:    "user-1",
	}
	require.NoError(t, bus.Publish(ctx, "sess-1", started))

	select {
	case <-handled:
		t.Fatal("handler for a different event type must not fire")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestGenerateID(t *testing.T) {
	bus := newTestBus(t)

	assert.NotEmpty(t, bus.GenerateID())
	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
