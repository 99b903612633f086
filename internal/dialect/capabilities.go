package dialect

import (
	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/cdc"
	"github.com/excalibase/excalibase-graphql/internal/database"
	"github.com/excalibase/excalibase-graphql/internal/graphqlschema"
	"github.com/excalibase/excalibase-graphql/internal/observability"
	"github.com/excalibase/excalibase-graphql/internal/sqlbuilder"
)

// Capability names this registry resolves. Each one maps, per
// dialect, to a factory function with a capability-specific signature
// rather than a shared instance, since C1-C6's constructors each need
// different per-call arguments (an Executor, a model, a schema/table
// pair, a metrics sink).
const (
	CapSchemaReflector = "SchemaReflector"
	CapSQLBuilder      = "SQLBuilder"
	CapSchemaGenerator = "SchemaGenerator"
	CapCDCBus          = "CDCBus"
)

// ReflectorFactory builds a catalog reflector bound to exec.
type ReflectorFactory func(exec database.Executor) *catalog.Reflector

// QueryBuilderFactory builds a SQL builder bound to one schema/table pair.
type QueryBuilderFactory func(schema, table string) *sqlbuilder.QueryBuilder

// GeneratorFactory builds a GraphQL schema generator from a reflected
// Model and a Resolvers implementation.
type GeneratorFactory func(model *catalog.Model, resolvers graphqlschema.Resolvers) *graphqlschema.Generator

// BusFactory builds a CDC event bus wired to a metrics sink.
type BusFactory func(metrics *observability.Metrics) *cdc.Bus

// RegisterPostgres registers the PostgreSQL-dialect implementation of
// every capability this registry serves. It is the only dialect this
// repository ships a concrete registration for; a future dialect
// registers the same four capabilities under its own tag without any
// caller-side change.
func RegisterPostgres(r *Registry) {
	r.Register(CapSchemaReflector, Postgres, ReflectorFactory(catalog.NewReflector))
	r.Register(CapSQLBuilder, Postgres, QueryBuilderFactory(sqlbuilder.NewQueryBuilder))
	r.Register(CapSchemaGenerator, Postgres, GeneratorFactory(graphqlschema.NewGenerator))
	r.Register(CapCDCBus, Postgres, BusFactory(cdc.NewBus))
}

// Reflector resolves the ReflectorFactory registered for dialect.
func Reflector(r *Registry, dialectName string) (ReflectorFactory, error) {
	impl, err := r.Lookup(CapSchemaReflector, dialectName)
	if err != nil {
		return nil, err
	}
	return impl.(ReflectorFactory), nil
}

// SQLBuilder resolves the QueryBuilderFactory registered for dialect.
func SQLBuilder(r *Registry, dialectName string) (QueryBuilderFactory, error) {
	impl, err := r.Lookup(CapSQLBuilder, dialectName)
	if err != nil {
		return nil, err
	}
	return impl.(QueryBuilderFactory), nil
}

// SchemaGenerator resolves the GeneratorFactory registered for dialect.
func SchemaGenerator(r *Registry, dialectName string) (GeneratorFactory, error) {
	impl, err := r.Lookup(CapSchemaGenerator, dialectName)
	if err != nil {
		return nil, err
	}
	return impl.(GeneratorFactory), nil
}

// CDCBus resolves the BusFactory registered for dialect.
func CDCBus(r *Registry, dialectName string) (BusFactory, error) {
	impl, err := r.Lookup(CapCDCBus, dialectName)
	if err != nil {
		return nil, err
	}
	return impl.(BusFactory), nil
}
