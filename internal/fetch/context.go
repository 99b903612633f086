// Package fetch is the Data Fetcher: it implements graphqlschema.Resolvers
// by translating a resolved catalog.TableInfo and a GraphQL field's
// decoded arguments into sqlbuilder-rendered SQL, executing it, and
// shaping the result back into the row-map shape the generated schema's
// field resolvers expect (p.Source.(map[string]interface{})).
package fetch

import (
	"context"
	"sync"
)

// batchCacheKey is the context key a request's shared batchCache is
// stored under. One cache per GraphQL request, not per field.
type batchCacheKey struct{}

// warningsKey is the context key a request's soft-warning accumulator
// is stored under, per §9's requirement that a connection queried
// without an explicit orderBy still returns valid PK-ascending cursors
// but also surfaces a warning - since this module never calls
// graphql.Do itself (that's an embedding HTTP layer's job, per
// internal/server's doc comment), a resolver can't append to a
// graphql.Result.Extensions map directly. It appends here instead, and
// WarningsFrom lets the embedding layer drain the accumulator after
// execution and merge it into the response's extensions.
type warningsKey struct{}

// requestWarnings collects soft warnings raised by resolvers handling
// one GraphQL request. Guarded by a mutex because graphql-go may
// resolve sibling fields of a selection set concurrently.
type requestWarnings struct {
	mu       sync.Mutex
	messages []string
}

func (w *requestWarnings) add(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
}

func (w *requestWarnings) all() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) == 0 {
		return nil
	}
	out := make([]string, len(w.messages))
	copy(out, w.messages)
	return out
}

// relKey identifies one preloaded row or row-group: which table it came
// from, which column it was looked up by, and the looked-up value.
type relKey struct {
	table  string
	column string
	value  interface{}
}

// batchCache holds the rows a collection resolver (TableList/
// TableConnection) preloaded for every foreign key and reverse relation
// on its table, so the nested relation field resolvers GraphQL invokes
// afterwards - once per row, regardless of how many rows there are -
// read from memory instead of issuing one query each. This is the
// batching half of the N+1 fix; the other half is that graphql-go runs
// every resolver of one request against the same context.Context value,
// so a cache stored here before the parent resolver returns is visible
// to every descendant resolver without any extra wiring.
type batchCache struct {
	forward map[relKey]map[string]interface{}
	reverse map[relKey][]map[string]interface{}
}

func newBatchCache() *batchCache {
	return &batchCache{
		forward: make(map[relKey]map[string]interface{}),
		reverse: make(map[relKey][]map[string]interface{}),
	}
}

func (c *batchCache) putForward(table, column string, value interface{}, row map[string]interface{}) {
	c.forward[relKey{table: table, column: column, value: value}] = row
}

func (c *batchCache) getForward(table, column string, value interface{}) (map[string]interface{}, bool) {
	row, ok := c.forward[relKey{table: table, column: column, value: value}]
	return row, ok
}

func (c *batchCache) putReverse(table, column string, value interface{}, row map[string]interface{}) {
	key := relKey{table: table, column: column, value: value}
	c.reverse[key] = append(c.reverse[key], row)
}

func (c *batchCache) getReverse(table, column string, value interface{}) ([]map[string]interface{}, bool) {
	rows, ok := c.reverse[relKey{table: table, column: column, value: value}]
	return rows, ok
}

// NewRequestContext attaches a fresh batchCache and warning accumulator
// to ctx. The HTTP transport layer calls this once per incoming
// GraphQL request, before executing the query, so every resolver
// invoked while handling that request shares the same cache and
// warning sink. A request executed without this never batches - each
// relation field falls back to its own query - but still returns
// correct results, and any soft warnings a resolver tries to raise are
// silently dropped.
func NewRequestContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, batchCacheKey{}, newBatchCache())
	ctx = context.WithValue(ctx, warningsKey{}, &requestWarnings{})
	return ctx
}

func batchCacheFrom(ctx context.Context) *batchCache {
	cache, _ := ctx.Value(batchCacheKey{}).(*batchCache)
	return cache
}

// addWarning raises a soft warning for the request ctx belongs to, a
// no-op if ctx wasn't built with NewRequestContext.
func addWarning(ctx context.Context, msg string) {
	if w, ok := ctx.Value(warningsKey{}).(*requestWarnings); ok {
		w.add(msg)
	}
}

// WarningsFrom drains the soft warnings raised while resolving the
// request ctx belongs to, for an embedding HTTP layer to merge into
// its graphql.Result's Extensions (e.g. under a "warnings" key)
// alongside the usual data/errors. Returns nil if none were raised.
func WarningsFrom(ctx context.Context) []string {
	w, ok := ctx.Value(warningsKey{}).(*requestWarnings)
	if !ok {
		return nil
	}
	return w.all()
}
