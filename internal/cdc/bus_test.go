package cdc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableEventStreamDeliversRoutedEvent(t *testing.T) {
	bus := NewBus(nil)
	ch, unsubscribe := bus.GetTableEventStream("orders")
	defer unsubscribe()

	bus.HandleCDCEvent(CDCEvent{Type: EventInsert, Table: "orders"})

	select {
	case event := <-ch:
		assert.Equal(t, EventInsert, event.Type)
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestHandleCDCEventDropsBeginAndCommitSilently(t *testing.T) {
	bus := NewBus(nil)
	ch, unsubscribe := bus.GetTableEventStream("orders")
	defer unsubscribe()

	bus.HandleCDCEvent(CDCEvent{Type: EventBegin})
	bus.HandleCDCEvent(CDCEvent{Type: EventCommit})

	select {
	case <-ch:
		t.Fatal("BEGIN/COMMIT must not be routed to any stream")
	default:
	}
}

func TestHandleCDCEventForUnsubscribedTableIsNoop(t *testing.T) {
	bus := NewBus(nil)
	assert.NotPanics(t, func() {
		bus.HandleCDCEvent(CDCEvent{Type: EventInsert, Table: "never_subscribed"})
	})
}

func TestSubscribersAreIndependent(t *testing.T) {
	bus := NewBus(nil)
	chA, unsubA := bus.GetTableEventStream("orders")
	defer unsubA()
	chB, unsubB := bus.GetTableEventStream("orders")
	defer unsubB()

	bus.HandleCDCEvent(CDCEvent{Type: EventUpdate, Table: "orders"})

	a := <-chA
	b := <-chB
	assert.Equal(t, EventUpdate, a.Type)
	assert.Equal(t, EventUpdate, b.Type)
}

func TestPublishDropsOldestWhenSubscriberBufferFull(t *testing.T) {
	stream := newTableStream()
	ch, unsubscribe := stream.subscribe(2)
	defer unsubscribe()

	drops := 0
	stream.publish(CDCEvent{LSN: "1"}, func() { drops++ })
	stream.publish(CDCEvent{LSN: "2"}, func() { drops++ })
	stream.publish(CDCEvent{LSN: "3"}, func() { drops++ })

	assert.Equal(t, 1, drops)
	first := <-ch
	second := <-ch
	assert.Equal(t, "2", first.LSN)
	assert.Equal(t, "3", second.LSN)
}

func TestGetActiveSubscriptionCountTracksSubscribeAndUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	assert.Equal(t, 0, bus.GetActiveSubscriptionCount())

	_, unsubA := bus.GetTableEventStream("orders")
	_, unsubB := bus.GetTableEventStream("customers")
	assert.Equal(t, 2, bus.GetActiveSubscriptionCount())

	unsubA()
	assert.Equal(t, 1, bus.GetActiveSubscriptionCount())

	unsubB()
	assert.Equal(t, 0, bus.GetActiveSubscriptionCount())
}

func TestIsRunningTogglesOnStop(t *testing.T) {
	bus := NewBus(nil)
	assert.True(t, bus.IsRunning())
	bus.Stop()
	assert.False(t, bus.IsRunning())
}

func TestStreamForCoalescesConcurrentFirstSubscribers(t *testing.T) {
	bus := NewBus(nil)
	const n = 50
	streams := make([]*tableStream, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			streams[i] = bus.streamFor("orders")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, streams[0], streams[i])
	}
}
