package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	GraphQL  GraphQLConfig  `mapstructure:"graphql"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	CDC      CDCConfig      `mapstructure:"cdc"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Debug    bool           `mapstructure:"debug"`
}

// MetricsConfig contains Prometheus metrics settings. They are validated
// but not read elsewhere: this module binds no port and serves no
// metrics endpoint itself.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"` // Enable Prometheus metrics endpoint
	Port    int    `mapstructure:"port"`    // Port for metrics server (default: 9090)
	Path    string `mapstructure:"path"`    // Path for metrics endpoint (default: /metrics)
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`           // Database user for normal operations
	AdminUser       string        `mapstructure:"admin_user"`     // Optional elevated user for admin-only operations (defaults to User)
	Password        string        `mapstructure:"password"`       // Password for runtime user
	AdminPassword   string        `mapstructure:"admin_password"` // Optional password for admin user (defaults to Password)
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int32         `mapstructure:"max_connections"`
	MinConnections  int32         `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheck     time.Duration `mapstructure:"health_check_period"`
}

// CatalogConfig contains Schema Reflector (C2) settings.
type CatalogConfig struct {
	Schema      string        `mapstructure:"schema"`       // PostgreSQL schema to reflect (default: "public")
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`    // Model cache TTL before a reflection refresh (default: 60s)
	RefreshCron string        `mapstructure:"refresh_cron"` // Optional cron expression for a scheduled refresh, alongside TTL-on-read (empty = disabled)
}

// CDCConfig contains CDC Event Bus (C6) settings.
type CDCConfig struct {
	Enabled    bool `mapstructure:"enabled"`     // Start the LISTEN/NOTIFY source alongside the API
	BufferSize int  `mapstructure:"buffer_size"` // Validated when enabled; the bus itself always uses cdc.DefaultBufferSize (1024) per subscriber
}

// LoggingConfig contains structured logging output settings.
type LoggingConfig struct {
	ConsoleEnabled bool   `mapstructure:"console_enabled"` // Enable console output (default: true)
	ConsoleLevel   string `mapstructure:"console_level"`   // Minimum level: trace, debug, info, warn, error
	ConsoleFormat  string `mapstructure:"console_format"`  // Output format: json or console
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		log.Debug().Msg("No .env file found - using environment variables and defaults")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("EXCALIBASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	configPaths := []string{
		"./excalibase.yaml",
		"./excalibase.yml",
		"./config/excalibase.yaml",
		"./config/excalibase.yml",
		"/etc/excalibase/excalibase.yaml",
		"/etc/excalibase/excalibase.yml",
	}

	var configLoaded bool
	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err == nil {
			viper.SetConfigFile(configPath)
			if err := viper.ReadInConfig(); err != nil {
				log.Warn().Err(err).Str("file", configPath).Msg("Config file found but could not be parsed, using environment variables and defaults")
			} else {
				log.Info().Str("file", configPath).Msg("Config file loaded")
				configLoaded = true
			}
			break
		}
	}

	if !configLoaded {
		log.Info().Msg("No config file found, using environment variables and defaults")
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
		"../.env",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Info().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.admin_user", "")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.admin_password", "")
	viper.SetDefault("database.database", "excalibase")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.min_connections", 5)
	viper.SetDefault("database.max_conn_lifetime", "1h")
	viper.SetDefault("database.max_conn_idle_time", "30m")
	viper.SetDefault("database.health_check_period", "1m")

	viper.SetDefault("graphql.enabled", true)
	viper.SetDefault("graphql.max_depth", 10)
	viper.SetDefault("graphql.max_complexity", 1000)
	viper.SetDefault("graphql.introspection", true)

	viper.SetDefault("catalog.schema", "public")
	viper.SetDefault("catalog.cache_ttl", "60s")
	viper.SetDefault("catalog.refresh_cron", "")

	viper.SetDefault("cdc.enabled", false)
	viper.SetDefault("cdc.buffer_size", 1024)

	viper.SetDefault("logging.console_enabled", true)
	viper.SetDefault("logging.console_level", "info")
	viper.SetDefault("logging.console_format", "console")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("metrics.path", "/metrics")
}

// Validate validates the full configuration, delegating to each section.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.GraphQL.Validate(); err != nil {
		return fmt.Errorf("graphql config: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog config: %w", err)
	}
	if err := c.CDC.Validate(); err != nil {
		return fmt.Errorf("cdc config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}
	return nil
}

// Validate validates database configuration
func (dc *DatabaseConfig) Validate() error {
	if dc.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if dc.Port < 1 || dc.Port > 65535 {
		return fmt.Errorf("database port must be between 1 and 65535, got: %d", dc.Port)
	}

	if dc.User == "" {
		return fmt.Errorf("database user is required")
	}

	if dc.AdminUser == "" {
		dc.AdminUser = dc.User
	}

	if dc.Database == "" {
		return fmt.Errorf("database name is required")
	}

	validSSLModes := []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	sslModeValid := false
	for _, mode := range validSSLModes {
		if dc.SSLMode == mode {
			sslModeValid = true
			break
		}
	}
	if !sslModeValid {
		return fmt.Errorf("invalid ssl_mode: %s (must be one of: %v)", dc.SSLMode, validSSLModes)
	}

	if dc.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got: %d", dc.MaxConnections)
	}

	if dc.MinConnections < 0 {
		return fmt.Errorf("min_connections cannot be negative, got: %d", dc.MinConnections)
	}

	if dc.MaxConnections < dc.MinConnections {
		return fmt.Errorf("max_connections (%d) must be greater than or equal to min_connections (%d)",
			dc.MaxConnections, dc.MinConnections)
	}

	if dc.MaxConnLifetime <= 0 {
		return fmt.Errorf("max_conn_lifetime must be positive, got: %v", dc.MaxConnLifetime)
	}
	if dc.MaxConnIdleTime <= 0 {
		return fmt.Errorf("max_conn_idle_time must be positive, got: %v", dc.MaxConnIdleTime)
	}
	if dc.HealthCheck <= 0 {
		return fmt.Errorf("health_check_period must be positive, got: %v", dc.HealthCheck)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string for the runtime user
func (dc *DatabaseConfig) ConnectionString() string {
	return dc.RuntimeConnectionString()
}

// RuntimeConnectionString returns the PostgreSQL connection string for the runtime user
func (dc *DatabaseConfig) RuntimeConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		dc.User, dc.Password, dc.Host, dc.Port, dc.Database, dc.SSLMode)
}

// AdminConnectionString returns the PostgreSQL connection string for the admin user
func (dc *DatabaseConfig) AdminConnectionString() string {
	user := dc.AdminUser
	if user == "" {
		user = dc.User
	}
	password := dc.AdminPassword
	if password == "" {
		password = dc.Password
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, dc.Host, dc.Port, dc.Database, dc.SSLMode)
}

// Validate validates catalog configuration
func (cc *CatalogConfig) Validate() error {
	if cc.Schema == "" {
		return fmt.Errorf("catalog schema is required")
	}
	if cc.CacheTTL < 0 {
		return fmt.Errorf("catalog cache_ttl cannot be negative, got: %v", cc.CacheTTL)
	}
	return nil
}

// Validate validates CDC configuration
func (cc *CDCConfig) Validate() error {
	if !cc.Enabled {
		return nil
	}
	if cc.BufferSize <= 0 {
		return fmt.Errorf("cdc buffer_size must be positive, got: %d", cc.BufferSize)
	}
	return nil
}

// Validate validates metrics configuration
func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Port < 1 || mc.Port > 65535 {
		return fmt.Errorf("metrics port must be between 1 and 65535, got: %d", mc.Port)
	}

	if mc.Path == "" {
		return fmt.Errorf("metrics path cannot be empty")
	}
	if !strings.HasPrefix(mc.Path, "/") {
		return fmt.Errorf("metrics path must start with '/', got: %s", mc.Path)
	}

	return nil
}

// Validate validates logging configuration
func (lc *LoggingConfig) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if lc.ConsoleLevel == level {
			levelValid = true
			break
		}
	}
	if !levelValid && lc.ConsoleLevel != "" {
		return fmt.Errorf("invalid console_level: %s (must be one of: %v)", lc.ConsoleLevel, validLevels)
	}

	if lc.ConsoleFormat != "" && lc.ConsoleFormat != "json" && lc.ConsoleFormat != "console" {
		return fmt.Errorf("invalid console_format: %s (must be 'json' or 'console')", lc.ConsoleFormat)
	}

	return nil
}
