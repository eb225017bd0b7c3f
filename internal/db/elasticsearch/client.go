package elasticsearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store implements db.Store via go-elasticsearch for Elasticsearch 8.x.
type Store struct {
	client    *elasticsearch.Client
	transport http.RoundTripper
}

// NewStore creates an Elasticsearch store. No request is sent until the first call.
func NewStore(cfg db.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("elasticsearch config: %w", err)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = db.NewHTTPTransport(cfg.InsecureTLS)
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    transport,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries == 0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, transport: transport}, nil
}

// Ping checks connectivity by fetching cluster info.
func (s *Store) Ping(ctx context.Context) error {
	res, err := esapi.InfoRequest{}.Do(ctx, s.client)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return db.ReadResponseFailure(db.OpPing, res.StatusCode, res.Body, res.Warnings())
	}
	return nil
}

// Close releases idle connections. The store must not be used afterwards.
func (s *Store) Close() {
	db.CloseIdle(s.transport)
}

func failed(op string, res *esapi.Response) error {
	return db.ReadResponseFailure(op, res.StatusCode, res.Body, res.Warnings())
}
