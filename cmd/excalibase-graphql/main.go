package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/excalibase/excalibase-graphql/internal/config"
	"github.com/excalibase/excalibase-graphql/internal/database"
	"github.com/excalibase/excalibase-graphql/internal/observability"
	excaliserver "github.com/excalibase/excalibase-graphql/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"

	validateOnly bool
	retryAttempts int
)

var rootCmd = &cobra.Command{
	Use:   "excalibase-graphql",
	Short: "Reflects a Postgres schema into a live GraphQL API",
	Long: `excalibase-graphql reflects a Postgres schema's tables, columns and
foreign keys into a GraphQL schema, serves list/connection/aggregate
queries and single/bulk mutations over it, and streams row-level
changes to subscribers through a change-data-capture event bus.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&validateOnly, "validate", false, "Validate configuration and database connectivity, then exit")
	rootCmd.Flags().IntVar(&retryAttempts, "retry-attempts", getEnvInt("EXCALIBASE_DATABASE_RETRY_ATTEMPTS", 5), "Database connection retry attempts on startup")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("excalibase-graphql %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("build date: %s\n", buildDate)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("excalibase-graphql exited with error")
	}
}

func run(cmd *cobra.Command, args []string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Str("version", version).Str("commit", commit).Str("build_date", buildDate).
		Msg("starting excalibase-graphql")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if cfg.Logging.ConsoleFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if level, err := zerolog.ParseLevel(cfg.Logging.ConsoleLevel); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if !cfg.Logging.ConsoleEnabled {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}

	printConfigSummary(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if validateOnly {
		log.Info().Msg("configuration validation successful, testing database connection...")
		db, err := connectDatabaseWithRetry(cfg.Database, 1)
		if err != nil {
			return fmt.Errorf("database connection test failed: %w", err)
		}
		db.Close()
		log.Info().Msg("all validation checks passed")
		return nil
	}

	db, err := connectDatabaseWithRetry(cfg.Database, retryAttempts)
	if err != nil {
		return fmt.Errorf("failed to connect to database after multiple attempts: %w", err)
	}
	defer db.Close()

	metrics := observability.NewMetrics()
	db.SetMetrics(metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	svc, err := excaliserver.New(ctx, cfg, db, metrics)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to assemble GraphQL server: %w", err)
	}

	log.Info().Str("schema", cfg.Catalog.Schema).Msg("GraphQL schema generated, ready to be mounted by an HTTP transport")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("exited")

	go func() {
		time.Sleep(2 * time.Second)
		log.Warn().Msg("force exiting - cleanup took too long")
		os.Exit(0)
	}()

	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var parsed int
		if _, err := fmt.Sscanf(value, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// connectDatabaseWithRetry mirrors cdc.Source.acquireWithBackoff's
// retry shape: a delay doubling from 1s between attempts (1s, 2s, 4s, 8s
// at the default five attempts), applied here to the initial pool
// connection rather than a single LISTEN connection acquire.
func connectDatabaseWithRetry(cfg config.DatabaseConfig, maxAttempts int) (*database.Connection, error) {
	var db *database.Connection
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		log.Info().Int("attempt", attempt).Int("max_attempts", maxAttempts).
			Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to database...")

		db, err = database.NewConnection(cfg)
		if err == nil {
			log.Info().Msg("connected to database")
			return db, nil
		}

		if attempt >= maxAttempts {
			break
		}

		backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
		log.Warn().Err(err).Dur("retry_in", backoff).Msg("database connection failed, retrying...")
		time.Sleep(backoff)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, err)
}

func printConfigSummary(cfg *config.Config) {
	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Str("ssl_mode", cfg.Database.SSLMode).
		Msg("database configuration")
	log.Info().
		Str("schema", cfg.Catalog.Schema).
		Dur("cache_ttl", cfg.Catalog.CacheTTL).
		Str("refresh_cron", cfg.Catalog.RefreshCron).
		Msg("catalog configuration")
	log.Info().
		Int("max_depth", cfg.GraphQL.MaxDepth).
		Int("max_complexity", cfg.GraphQL.MaxComplexity).
		Bool("introspection", cfg.GraphQL.Introspection).
		Msg("graphql configuration")
	log.Info().
		Bool("enabled", cfg.CDC.Enabled).
		Int("buffer_size", cfg.CDC.BufferSize).
		Msg("cdc configuration")
	log.Info().Bool("debug_mode", cfg.Debug).Msg("debug mode")
}
