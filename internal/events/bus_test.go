package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1, cancel1 := bus.Subscribe(1)
	ch2, cancel2 := bus.Subscribe(1)
	defer cancel1()
	defer cancel2()

	require.Equal(t, 2, bus.SubscriberCount())

	change := Change{Kind: KindCount, ID: "c-1", WorkdayID: "wd-1"}
	require.NoError(t, bus.Publish(t.Context(), change))

	assert.Equal(t, change, <-ch1)
	assert.Equal(t, change, <-ch2)
}

func TestCancelRemovesSubscription(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe(1)
	cancel()
	cancel() // repeated cancel is safe

	assert.Equal(t, 0, bus.SubscriberCount())
	_, open := <-ch
	assert.False(t, open)

	require.NoError(t, bus.Publish(t.Context(), Change{Kind: KindWorkday, ID: "wd-1"}))
}

func TestCloseClosesChannels(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.Subscribe(0)

	bus.Close()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.SubscriberCount())

	// Publishing after close is a no-op, not a panic.
	require.NoError(t, bus.Publish(t.Context(), Change{Kind: KindBulk}))

	// Subscribing after close yields an already-closed channel.
	late, cancel := bus.Subscribe(1)
	defer cancel()
	_, open = <-late
	assert.False(t, open)
}

func TestNilBusPublishes(t *testing.T) {
	var bus *Bus
	require.NoError(t, bus.Publish(t.Context(), Change{Kind: KindCount}))
	assert.Equal(t, 0, bus.SubscriberCount())
}
