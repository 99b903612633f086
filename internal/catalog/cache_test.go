package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/excalibase/excalibase-graphql/internal/observability"
	"github.com/stretchr/testify/assert"
)

type fakeReflector struct {
	calls atomic.Int32
	model *Model
	err   error
	delay time.Duration
}

func (f *fakeReflector) ReflectSchema(ctx context.Context, schemaName string) (*Model, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func newTestCache(reflector schemaReflector, ttl time.Duration) *Cache {
	return &Cache{reflector: reflector, ttl: ttl, metrics: observability.NewMetrics()}
}

func TestCacheMissThenHit(t *testing.T) {
	fake := &fakeReflector{model: &Model{Schema: "public", Tables: map[string]*TableInfo{}}}
	c := newTestCache(fake, time.Minute)

	m1, err := c.Get(context.Background(), "public")
	assert.NoError(t, err)
	assert.Equal(t, "public", m1.Schema)
	assert.Equal(t, int32(1), fake.calls.Load())

	m2, err := c.Get(context.Background(), "public")
	assert.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Equal(t, int32(1), fake.calls.Load(), "second call within TTL should not refresh")
}

func TestCacheRefreshesAfterTTLExpiry(t *testing.T) {
	fake := &fakeReflector{model: &Model{Schema: "public", Tables: map[string]*TableInfo{}}}
	c := newTestCache(fake, time.Millisecond)

	_, err := c.Get(context.Background(), "public")
	assert.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = c.Get(context.Background(), "public")
	assert.NoError(t, err)
	assert.Equal(t, int32(2), fake.calls.Load())
}

func TestCacheFallsBackToStaleModelOnRefreshError(t *testing.T) {
	fake := &fakeReflector{model: &Model{Schema: "public", Tables: map[string]*TableInfo{}}}
	c := newTestCache(fake, time.Millisecond)

	first, err := c.Get(context.Background(), "public")
	assert.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	fake.err = errors.New("connection refused")

	second, err := c.Get(context.Background(), "public")
	assert.NoError(t, err, "a refresh failure should fall back to the cached model, not propagate")
	assert.Same(t, first, second)
}

func TestCachePropagatesErrorWithNoPriorModel(t *testing.T) {
	fake := &fakeReflector{err: errors.New("connection refused")}
	c := newTestCache(fake, time.Minute)

	_, err := c.Get(context.Background(), "public")
	assert.Error(t, err)
}

func TestCacheInvalidateForcesRefresh(t *testing.T) {
	fake := &fakeReflector{model: &Model{Schema: "public", Tables: map[string]*TableInfo{}}}
	c := newTestCache(fake, time.Hour)

	_, err := c.Get(context.Background(), "public")
	assert.NoError(t, err)

	c.Invalidate()

	_, err = c.Get(context.Background(), "public")
	assert.NoError(t, err)
	assert.Equal(t, int32(2), fake.calls.Load())
}

func TestCacheConcurrentRefreshIsCoalesced(t *testing.T) {
	fake := &fakeReflector{
		model: &Model{Schema: "public", Tables: map[string]*TableInfo{}},
		delay: 20 * time.Millisecond,
	}
	c := newTestCache(fake, time.Minute)

	const n = 10
	results := make([]*Model, n)
	errs := make([]error, n)
	done := make(chan int, n)

	for i := 0; i < n; i++ {
		go func(i int) {
			results[i], errs[i] = c.Get(context.Background(), "public")
			done <- i
		}(i)
	}
	for i := 0; i < n; i++ {
		<-done
	}

	for i := 0; i < n; i++ {
		assert.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int32(1), fake.calls.Load(), "concurrent misses should coalesce into one reflection")
}
