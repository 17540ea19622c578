// Package statsd emits pipeline counters over UDP using the StatsD line
// protocol.
package statsd

import (
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"sync"
	"time"
)

// Sink describes the minimal interface required to emit StatsD-style metrics.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes how to connect to a StatsD-compatible sink.
type Config struct {
	Enabled bool
	Address string
	Prefix  string
	Logger  *slog.Logger
}

// Client emits metrics over UDP using the StatsD line protocol.
// It is safe for concurrent use. A disabled client drops all metrics.
type Client struct {
	enabled bool
	prefix  string
	logger  *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var _ Sink = (*Client)(nil)

// NewClient dials the configured StatsD endpoint unless disabled.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{enabled: cfg.Enabled, prefix: cfg.Prefix, logger: logger}
	if !cfg.Enabled {
		return c, nil
	}

	conn, err := net.Dial("udp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("dial statsd %s: %w", cfg.Address, err)
	}
	c.conn = conn
	return c, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Count emits a counter sample.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.emit(fmt.Sprintf("%s:%d|c%s", c.metricName(name), value, formatTags(tags)))
}

// Timing emits a timing sample in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	c.emit(fmt.Sprintf("%s:%d|ms%s", c.metricName(name), value.Milliseconds(), formatTags(tags)))
}

func (c *Client) metricName(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + "." + name
}

func (c *Client) emit(line string) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		// Metrics are best-effort; log and move on.
		c.logger.Debug("statsd write failed", "error", err)
	}
}

// formatTags renders DogStatsD-style tags in deterministic order.
func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+tags[k])
	}
	return "|#" + strings.Join(parts, ",")
}

// Noop is a Sink that discards all metrics.
type Noop struct{}

// Count implements Sink.
func (Noop) Count(string, int64, map[string]string) {}

// Timing implements Sink.
func (Noop) Timing(string, time.Duration, map[string]string) {}
