package config

import "time"

// ImporterConfig contains ingestion pipeline configuration.
type ImporterConfig struct {
	// BufferLimit is the flush threshold for accumulated records.
	BufferLimit int `env:"IMPORT_BUFFER_LIMIT" envDefault:"1000"`

	// TempDir is where acquired payloads are staged. Empty means os.TempDir.
	TempDir string `env:"IMPORT_TEMP_DIR" envDefault:""`

	// FetchTimeout bounds remote source downloads.
	FetchTimeout time.Duration `env:"IMPORT_FETCH_TIMEOUT" envDefault:"30s"`

	// MaxLineBytes bounds a single input line.
	MaxLineBytes int `env:"IMPORT_MAX_LINE_BYTES" envDefault:"1048576"`
}

// Sanitize applies guardrails to importer configuration values.
func (c *ImporterConfig) Sanitize() {
	if c.BufferLimit < 1 {
		c.BufferLimit = 1000
	}
	if c.MaxLineBytes < 1 {
		c.MaxLineBytes = 1 << 20
	}
}

// ExporterConfig contains export streaming configuration.
type ExporterConfig struct {
	// PageSize is how many rows each export fetch pulls.
	PageSize int `env:"EXPORT_PAGE_SIZE" envDefault:"5000"`
}

// Sanitize applies guardrails to exporter configuration values.
func (c *ExporterConfig) Sanitize() {
	if c.PageSize < 1 {
		c.PageSize = 5000
	}
}

// ReaperConfig contains stale-job reaper configuration.
type ReaperConfig struct {
	// Enabled turns the reaper loop on.
	Enabled bool `env:"REAPER_ENABLED" envDefault:"true"`

	// Interval is the sweep interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1m"`

	// MaxAge is how long a job may sit in processing before it is
	// force-finished.
	MaxAge time.Duration `env:"REAPER_MAX_AGE" envDefault:"30m"`

	// BatchSize caps how many jobs a single sweep finishes.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"100"`
}

// Sanitize applies guardrails to reaper configuration values.
func (c *ReaperConfig) Sanitize() {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 30 * time.Minute
	}
	if c.BatchSize < 1 {
		c.BatchSize = 100
	}
}
