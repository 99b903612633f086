package cdc

import (
	"sync"
	"sync/atomic"

	"github.com/excalibase/excalibase-graphql/internal/observability"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultBufferSize is the per-subscriber channel capacity: once full,
// the oldest buffered event is dropped to admit the newest one, and
// producers never block waiting on a slow subscriber.
const DefaultBufferSize = 1024

// Bus is the process-wide CDC event router: one Bus multiplexes every
// decoded change event across every table's subscribers.
type Bus struct {
	mu      sync.RWMutex
	streams map[string]*tableStream
	group   singleflight.Group
	metrics *observability.Metrics
	running atomic.Bool
}

// NewBus creates a running Bus. metrics may be nil in tests.
func NewBus(metrics *observability.Metrics) *Bus {
	b := &Bus{streams: make(map[string]*tableStream), metrics: metrics}
	b.running.Store(true)
	return b
}

// Stop marks the bus as no longer running. Existing subscriber
// channels are left open; callers are expected to Unsubscribe.
func (b *Bus) Stop() {
	b.running.Store(false)
}

// IsRunning reports whether Stop has not yet been called.
// HandleCDCEvent routes events regardless of this flag.
func (b *Bus) IsRunning() bool {
	return b.running.Load()
}

// GetTableEventStream returns a hot, buffered channel of events for
// table plus an unsubscribe function. Repeated calls for the same
// table share the same underlying tableStream - observers fan out from
// one dispatch point - but each call's returned channel is independent:
// one slow subscriber dropping events never affects another.
func (b *Bus) GetTableEventStream(table string) (<-chan CDCEvent, func()) {
	stream := b.streamFor(table)
	ch, unsubscribe := stream.subscribe(DefaultBufferSize)
	if b.metrics != nil {
		b.metrics.SetCDCActiveStreams(b.GetActiveSubscriptionCount())
	}
	return ch, func() {
		unsubscribe()
		if b.metrics != nil {
			b.metrics.SetCDCActiveStreams(b.GetActiveSubscriptionCount())
		}
	}
}

// streamFor returns table's tableStream, creating it exactly once even
// under a concurrent first-subscriber storm.
func (b *Bus) streamFor(table string) *tableStream {
	b.mu.RLock()
	stream, ok := b.streams[table]
	b.mu.RUnlock()
	if ok {
		return stream
	}

	v, _, _ := b.group.Do(table, func() (interface{}, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if stream, ok := b.streams[table]; ok {
			return stream, nil
		}
		stream := newTableStream()
		b.streams[table] = stream
		return stream, nil
	})
	return v.(*tableStream)
}

// HandleCDCEvent routes a decoded event to its table's stream. BEGIN
// and COMMIT carry no table and are accepted and dropped silently, per
// their transaction-boundary role rather than a row change. An event
// for a table with no current subscribers is also dropped silently -
// there is nowhere to dispatch it.
func (b *Bus) HandleCDCEvent(event CDCEvent) {
	if event.Table == "" {
		return
	}

	b.mu.RLock()
	stream, ok := b.streams[event.Table]
	b.mu.RUnlock()
	if !ok {
		return
	}

	if b.metrics != nil {
		b.metrics.RecordCDCEvent(event.Table, string(event.Type))
	}

	stream.publish(event, func() {
		if b.metrics != nil {
			b.metrics.RecordCDCDrop(event.Table)
		}
		log.Warn().Str("table", event.Table).Msg("CDC stream buffer full, dropping oldest event")
	})
}

// GetActiveSubscriptionCount returns the total number of live
// subscriptions across every table's stream.
func (b *Bus) GetActiveSubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0
	for _, stream := range b.streams {
		total += stream.subscriberCount()
	}
	return total
}

// tableStream fans one table's events out to an independent set of
// subscriber channels, each with its own drop-oldest backpressure
// policy so one slow consumer can never stall another or the producer.
type tableStream struct {
	mu          sync.Mutex
	subscribers map[int]chan CDCEvent
	nextID      int
}

func newTableStream() *tableStream {
	return &tableStream{subscribers: make(map[int]chan CDCEvent)}
}

func (s *tableStream) subscribe(bufferSize int) (<-chan CDCEvent, func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan CDCEvent, bufferSize)
	s.subscribers[id] = ch
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

func (s *tableStream) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// publish delivers event to every subscriber, dropping that
// subscriber's oldest buffered event and calling onDrop when its
// channel is full rather than blocking the producer.
func (s *tableStream) publish(event CDCEvent, onDrop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
			onDrop()
		}
	}
}
