package searchkit

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/kailas-cloud/searchkit/internal/db"
	healthuc "github.com/kailas-cloud/searchkit/internal/usecase/health"
)

// Client is the searchkit entry point. It is safe for concurrent use.
type Client struct {
	conn     ConnectionConfig
	provider *Provider
	mappings fs.FS
	obs      *observer
}

// New validates cfg and returns a Client. No connection is made until the
// first operation; the engine handle is then built once and shared.
func New(cfg ConnectionConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cc := defaultClientConfig()
	for _, o := range opts {
		o.apply(cc)
	}
	switch cc.driver {
	case DriverOpenSearch, DriverElasticsearch:
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrConfiguration, cc.driver)
	}

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:     cfg,
		provider: newProvider(cfg, cc),
		mappings: cc.mappings,
		obs:      obs,
	}, nil
}

// Provider exposes the lazily built engine handle holder.
func (c *Client) Provider() *Provider { return c.provider }

// Close releases all resources.
func (c *Client) Close() {
	c.provider.Close()
}

// Ping checks engine connectivity. The error is always a *Failure.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	store, err := c.provider.get()
	if err != nil {
		return err
	}
	if err := store.Ping(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Indices returns the index administration service.
func (c *Client) Indices() *IndexService {
	return &IndexService{client: c}
}

// Count returns the number of documents in index matching q; nil q counts all.
// The error is always a *Failure.
func (c *Client) Count(ctx context.Context, index string, q Query) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	store, err := c.provider.get()
	if err != nil {
		return 0, err
	}
	body, err := encodeQuery(q)
	if err != nil {
		return 0, classify(err)
	}
	n, err = store.Count(ctx, index, body)
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

// Health pings the engine and verifies that each of the required indices
// (names, aliases or patterns) exists.
func (c *Client) Health(ctx context.Context, required ...string) HealthStatus {
	store, err := c.provider.get()
	if err != nil {
		return HealthStatus{Status: string(healthuc.Unhealthy), Checks: map[string]string{"engine": "error"}}
	}

	report := healthuc.New(store, store, required...).Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// store is a shortcut for package-level generic functions.
func (c *Client) store() (db.Store, error) {
	return c.provider.get()
}
