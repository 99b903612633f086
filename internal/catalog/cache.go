package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/excalibase/excalibase-graphql/internal/observability"
	"github.com/excalibase/excalibase-graphql/internal/pubsub"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// schemaReflector is the subset of *Reflector that Cache depends on,
// narrowed to an interface so tests can substitute a fake without a
// live database.
type schemaReflector interface {
	ReflectSchema(ctx context.Context, schemaName string) (*Model, error)
}

// Cache wraps a Reflector with TTL expiry, single-writer/many-reader
// atomic-pointer-swap access, and single-flight refresh coalescing: the
// first caller past expiry refreshes, concurrent callers block on the
// same in-flight refresh and all observe the same resulting Model.
//
// When wired to a PubSub backend, InvalidateAll broadcasts invalidation
// to every other instance sharing the channel, so a schema change on
// one instance is observed by the whole fleet on their next access
// rather than only after their own TTL lapses.
type Cache struct {
	reflector schemaReflector
	ttl       time.Duration
	metrics   *observability.Metrics

	model       atomic.Pointer[Model]
	lastRefresh atomic.Int64 // unix nanos
	group       singleflight.Group

	ps         pubsub.PubSub
	cancelFunc context.CancelFunc
}

// NewCache builds a Cache over reflector with the given TTL. A TTL of
// zero forces a refresh on every access.
func NewCache(reflector *Reflector, ttl time.Duration) *Cache {
	return &Cache{
		reflector: reflector,
		ttl:       ttl,
		metrics:   observability.NewMetrics(),
	}
}

// Get returns the cached Model for schemaName, refreshing it first if
// the TTL has lapsed or no Model has ever been loaded. A catalog error
// on refresh falls back to the previously cached Model if one exists;
// it only propagates when there is nothing to fall back to.
func (c *Cache) Get(ctx context.Context, schemaName string) (*Model, error) {
	if cached := c.model.Load(); cached != nil && !c.expired() {
		c.metrics.RecordCacheHit()
		return cached, nil
	}

	c.metrics.RecordCacheMiss()
	model, err := c.refresh(ctx, schemaName)
	if err != nil {
		if cached := c.model.Load(); cached != nil {
			log.Warn().Err(err).Str("schema", schemaName).Msg("catalog reflection failed, serving stale model")
			return cached, nil
		}
		return nil, err
	}
	return model, nil
}

func (c *Cache) expired() bool {
	last := c.lastRefresh.Load()
	if last == 0 {
		return true
	}
	return time.Since(time.Unix(0, last)) > c.ttl
}

// refresh runs ReflectSchema at most once per schemaName concurrently;
// every caller waiting on the same key receives the same Model or error.
func (c *Cache) refresh(ctx context.Context, schemaName string) (*Model, error) {
	c.metrics.SetReflectionInFlight(true)
	defer c.metrics.SetReflectionInFlight(false)

	start := time.Now()
	v, err, _ := c.group.Do(schemaName, func() (interface{}, error) {
		return c.reflector.ReflectSchema(ctx, schemaName)
	})
	duration := time.Since(start)

	if err != nil {
		c.metrics.RecordReflection(schemaName, "failure", duration)
		return nil, err
	}

	model := v.(*Model)
	c.model.Store(model)
	c.lastRefresh.Store(time.Now().UnixNano())
	c.metrics.RecordReflection(schemaName, "success", duration)
	return model, nil
}

// Invalidate marks the cache stale, forcing a refresh on the next Get.
// This only affects the local instance; use InvalidateAll to also
// notify other instances sharing a PubSub backend.
func (c *Cache) Invalidate() {
	c.lastRefresh.Store(0)
}

// InvalidateAll invalidates the local cache and broadcasts invalidation
// to every other instance via PubSub, if one has been configured with
// SetPubSub.
func (c *Cache) InvalidateAll(ctx context.Context) {
	c.Invalidate()
	if c.ps == nil {
		return
	}
	if err := c.ps.Publish(ctx, pubsub.SchemaCacheChannel, []byte("invalidate")); err != nil {
		log.Error().Err(err).Msg("failed to broadcast catalog cache invalidation")
	}
}

// SetPubSub wires a PubSub backend for cross-instance invalidation. When
// set, this instance also starts listening for invalidation messages
// published by others.
func (c *Cache) SetPubSub(ps pubsub.PubSub) {
	c.ps = ps
	if ps == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	go func() {
		msgCh, err := ps.Subscribe(ctx, pubsub.SchemaCacheChannel)
		if err != nil {
			log.Error().Err(err).Msg("failed to subscribe to catalog cache invalidation channel")
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgCh:
				if !ok {
					return
				}
				log.Debug().Str("payload", string(msg.Payload)).Msg("received catalog cache invalidation from another instance")
				c.Invalidate()
			}
		}
	}()
}

// Close stops the invalidation listener, if one is running.
func (c *Cache) Close() {
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
}
