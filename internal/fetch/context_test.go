package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchCacheFromReturnsNilWithoutRequestContext(t *testing.T) {
	assert.Nil(t, batchCacheFrom(context.Background()))
}

func TestNewRequestContextSharesOneCacheAcrossLookups(t *testing.T) {
	ctx := NewRequestContext(context.Background())
	cache := batchCacheFrom(ctx)
	assert.NotNil(t, cache)

	row := map[string]interface{}{"id": int64(1), "name": "alice"}
	cache.putForward("users", "id", int64(1), row)

	got, ok := cache.getForward("users", "id", int64(1))
	assert.True(t, ok)
	assert.Equal(t, row, got)

	_, ok = cache.getForward("users", "id", int64(2))
	assert.False(t, ok)
}

func TestWarningsFromReturnsNilWithoutRequestContext(t *testing.T) {
	assert.Nil(t, WarningsFrom(context.Background()))
}

func TestAddWarningIsNoopWithoutRequestContext(t *testing.T) {
	assert.NotPanics(t, func() { addWarning(context.Background(), "dropped") })
}

func TestNewRequestContextAccumulatesWarnings(t *testing.T) {
	ctx := NewRequestContext(context.Background())
	addWarning(ctx, "orders: no orderBy supplied, defaulting to primary key ascending")
	addWarning(ctx, "second warning")

	assert.Equal(t, []string{
		"orders: no orderBy supplied, defaulting to primary key ascending",
		"second warning",
	}, WarningsFrom(ctx))
}

func TestBatchCacheGroupsMultipleReverseRowsUnderOneKey(t *testing.T) {
	cache := newBatchCache()
	cache.putReverse("posts", "author_id", int64(1), map[string]interface{}{"id": int64(10)})
	cache.putReverse("posts", "author_id", int64(1), map[string]interface{}{"id": int64(11)})

	rows, ok := cache.getReverse("posts", "author_id", int64(1))
	assert.True(t, ok)
	assert.Len(t, rows, 2)

	_, ok = cache.getReverse("posts", "author_id", int64(99))
	assert.False(t, ok)
}
