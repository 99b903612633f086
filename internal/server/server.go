// Package server assembles the Type Classifier, Schema Reflector, Schema
// Generator, Data Fetcher, CDC Event Bus and Service Lookup into one
// running instance and exposes the result as a constructable Server,
// mirroring how the teacher's internal/api.Server bundles its own
// subsystems behind NewServer/Start/Shutdown. Unlike that server, this
// one never binds a port itself: GraphQL execution is an embedding
// HTTP layer's job, so Server only hands out the assembled
// *graphql.Schema and EventBus for that layer to mount.
package server

import (
	"context"
	"fmt"

	"github.com/excalibase/excalibase-graphql/internal/catalog"
	"github.com/excalibase/excalibase-graphql/internal/cdc"
	"github.com/excalibase/excalibase-graphql/internal/config"
	"github.com/excalibase/excalibase-graphql/internal/database"
	"github.com/excalibase/excalibase-graphql/internal/dialect"
	"github.com/excalibase/excalibase-graphql/internal/fetch"
	"github.com/excalibase/excalibase-graphql/internal/graphqlschema"
	"github.com/excalibase/excalibase-graphql/internal/observability"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog/log"
)

// Server holds every long-lived component started for one configured
// Postgres schema: the catalog cache (and its optional cron
// refresher), the generated GraphQL schema, and, when enabled, the CDC
// bus and its LISTEN source.
type Server struct {
	cfg *config.Config
	db  *database.Connection

	registry  *dialect.Registry
	cache     *catalog.Cache
	scheduler *catalog.Scheduler
	fetcher   *fetch.Fetcher
	schema    *graphql.Schema

	bus    *cdc.Bus
	source *cdc.Source
}

// New wires up the registry, reflects and caches the initial schema,
// generates the GraphQL schema over it, and starts CDC delivery if
// cfg.CDC.Enabled. The returned Server is ready for an HTTP layer to
// read Schema() and EventBus() from.
func New(ctx context.Context, cfg *config.Config, db *database.Connection, metrics *observability.Metrics) (*Server, error) {
	registry := dialect.NewRegistry()
	dialect.RegisterPostgres(registry)

	reflectorFactory, err := dialect.Reflector(registry, dialect.Postgres)
	if err != nil {
		return nil, fmt.Errorf("resolving schema reflector: %w", err)
	}
	reflector := reflectorFactory(db)
	cache := catalog.NewCache(reflector, cfg.Catalog.CacheTTL)

	s := &Server{cfg: cfg, db: db, registry: registry, cache: cache}

	if cfg.Catalog.RefreshCron != "" {
		scheduler, err := catalog.NewScheduler(cache, cfg.Catalog.Schema, cfg.Catalog.RefreshCron)
		if err != nil {
			return nil, fmt.Errorf("building catalog refresh scheduler: %w", err)
		}
		scheduler.Start()
		s.scheduler = scheduler
		log.Info().Str("cron", cfg.Catalog.RefreshCron).Msg("catalog refresh scheduler started")
	}

	if err := s.buildSchema(ctx); err != nil {
		return nil, err
	}

	if cfg.CDC.Enabled {
		busFactory, err := dialect.CDCBus(registry, dialect.Postgres)
		if err != nil {
			return nil, fmt.Errorf("resolving CDC bus: %w", err)
		}
		s.bus = busFactory(metrics)
		s.source = cdc.NewSource(db.Pool(), s.bus)
		s.source.Start()
		log.Info().Msg("CDC event bus started")
	}

	return s, nil
}

// buildSchema reflects (or re-reads the cached) Model and regenerates
// the GraphQL schema and Data Fetcher over it. Called once during New
// and again by RefreshSchema whenever the underlying tables change.
func (s *Server) buildSchema(ctx context.Context) error {
	model, err := s.cache.Get(ctx, s.cfg.Catalog.Schema)
	if err != nil {
		return fmt.Errorf("reflecting schema %q: %w", s.cfg.Catalog.Schema, err)
	}

	fetcher := fetch.New(s.db, model, s.cfg.Catalog.Schema)

	generatorFactory, err := dialect.SchemaGenerator(s.registry, dialect.Postgres)
	if err != nil {
		return fmt.Errorf("resolving schema generator: %w", err)
	}

	schema, err := generatorFactory(model, fetcher).Generate()
	if err != nil {
		return fmt.Errorf("generating GraphQL schema: %w", err)
	}

	s.fetcher = fetcher
	s.schema = schema
	return nil
}

// RefreshSchema invalidates the cached Model and rebuilds the GraphQL
// schema from a fresh reflection, for callers that want to pick up a
// DDL change without waiting for the cache TTL or cron schedule.
func (s *Server) RefreshSchema(ctx context.Context) error {
	s.cache.Invalidate()
	return s.buildSchema(ctx)
}

// Schema returns the currently generated GraphQL schema for an
// embedding HTTP layer (e.g. a graphql-go/handler mount) to execute
// queries against.
func (s *Server) Schema() *graphql.Schema {
	return s.schema
}

// EventBus returns the CDC event bus, or nil if cfg.CDC.Enabled was
// false, for a subscriptions transport to read table streams from.
func (s *Server) EventBus() *cdc.Bus {
	return s.bus
}

// Shutdown stops the CDC source and cron scheduler (if running) and
// closes the catalog cache's pub/sub subscription, in that order so
// no component outlives what it depends on.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.source != nil {
		s.source.Stop()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.cache.Close()
	return nil
}
