// Package dialect resolves dialect-specific implementations by
// (capability, dialect) without compile-time coupling between a
// caller and a concrete implementation package.
package dialect

import (
	"sync"

	"github.com/excalibase/excalibase-graphql/internal/apperrors"
)

// Postgres is the only dialect tag this registry ships a concrete
// registration for today; the registry itself is dialect-agnostic.
const Postgres = "POSTGRES"

type key struct {
	capability string
	dialect    string
}

// Registry maps (capability, dialect) pairs to implementation
// instances. The zero value is not usable; construct with NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	impls map[key]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{impls: make(map[key]any)}
}

// Register associates impl with (capability, dialect). A later call
// for the same pair replaces the earlier registration.
func (r *Registry) Register(capability, dialect string, impl any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.impls[key{capability, dialect}] = impl
}

// Lookup returns the implementation registered for (capability,
// dialect), or a DialectUnsupportedError if none was registered.
func (r *Registry) Lookup(capability, dialect string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	impl, ok := r.impls[key{capability, dialect}]
	if !ok {
		return nil, apperrors.NewDialectUnsupportedError(capability, dialect)
	}
	return impl, nil
}
