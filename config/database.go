package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"bulkport"`
	Password string `env:"PASSWORD" envDefault:"bulkport"`
	Name     string `env:"NAME"     envDefault:"bulkport"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production

	// MaxOpenConns caps the connection pool. This is the only admission
	// control on concurrent import workers: workers queue on the pool.
	MaxOpenConns int `env:"MAX_OPEN_CONNS" envDefault:"10"`

	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize applies guardrails to database configuration values.
func (d *DBConfig) Sanitize() {
	if d.MaxOpenConns < 1 {
		d.MaxOpenConns = 1
	}
}

// RedisConfig contains Redis configuration for the job status cache.
type RedisConfig struct {
	// Enabled turns the terminal job-status cache on. When false every
	// status poll goes to Postgres.
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// StatusTTL is how long finished job rows stay cached.
	StatusTTL time.Duration `env:"STATUS_TTL" envDefault:"1h"`
}
