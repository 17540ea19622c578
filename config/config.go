// Package config holds the environment-driven application configuration.
package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and cache configuration
//   - http.go: HTTP server configuration
//   - services.go: Importer, exporter, and reaper configuration
type AppConfig struct {
	// IsDev controls development mode behavior (text log handler, etc.)
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Pipeline configuration
	Importer ImporterConfig
	Exporter ExporterConfig
	Reaper   ReaperConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Postgres.Sanitize()
	c.Importer.Sanitize()
	c.Exporter.Sanitize()
	c.Reaper.Sanitize()
	c.Observability.Sanitize()
}
