package searchkit

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/searchkit/internal/db"
	"github.com/kailas-cloud/searchkit/internal/db/elasticsearch"
	"github.com/kailas-cloud/searchkit/internal/db/opensearch"
)

// Provider owns the single engine handle of a Client. The handle is built on
// first use; concurrent first calls build it exactly once. A construction
// failure is remembered and returned on every later call.
type Provider struct {
	cfg   db.Config
	build func(db.Config) (db.Store, error)

	mu    sync.Mutex
	done  bool
	store db.Store
	err   error
}

func newProvider(conn ConnectionConfig, cc *clientConfig) *Provider {
	cfg := conn.dbConfig()
	cfg.Transport = cc.transport
	cfg.MaxRetries = cc.maxRetries

	build := cc.newStore
	if build == nil {
		driver := cc.driver
		build = func(c db.Config) (db.Store, error) { return createStore(driver, c) }
	}
	return &Provider{cfg: cfg, build: build}
}

// get returns the engine handle, constructing it on the first call.
func (p *Provider) get() (db.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.done {
		p.store, p.err = p.build(p.cfg)
		if p.err != nil {
			p.store = nil
			p.err = configFailure(fmt.Errorf("build engine client: %w", p.err))
		}
		p.done = true
	}
	return p.store, p.err
}

// Built reports whether the handle has been constructed successfully.
func (p *Provider) Built() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done && p.err == nil
}

// Close releases the handle if it was built. Later calls fail with a
// configuration error.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		p.store.Close()
		p.store = nil
	}
	if p.err == nil {
		p.err = configFailure(fmt.Errorf("client is closed"))
	}
	p.done = true
}

func createStore(driver string, cfg db.Config) (db.Store, error) {
	switch driver {
	case DriverOpenSearch, "":
		s, err := opensearch.NewStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("create opensearch store: %w", err)
		}
		return s, nil
	case DriverElasticsearch:
		s, err := elasticsearch.NewStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("create elasticsearch store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}
