package searchkit

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// Driver names accepted by WithDriver.
const (
	DriverOpenSearch    = "opensearch"
	DriverElasticsearch = "elasticsearch"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string
	transport  http.RoundTripper
	maxRetries int
	mappings   fs.FS

	logger     *slog.Logger
	metricsReg prometheus.Registerer

	// newStore overrides driver construction in tests.
	newStore func(db.Config) (db.Store, error)
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		driver:   DriverOpenSearch,
		mappings: os.DirFS("."),
	}
}

// WithDriver selects the engine client library: DriverOpenSearch (default)
// or DriverElasticsearch.
func WithDriver(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = name
	})
}

// WithHTTPTransport replaces the HTTP round tripper. UseSSL is ignored when set.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithMaxRetries enables transport-level retries on 502, 503 and 504.
// Default: 0 (no retries).
func WithMaxRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = n
	})
}

// WithMappings sets the file system mapping resources are loaded from.
// Default: the working directory.
func WithMappings(fsys fs.FS) Option {
	return optionFunc(func(c *clientConfig) {
		c.mappings = fsys
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts, durations and
// bulk item outcomes) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
