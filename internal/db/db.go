package db

import (
	"context"
)

// Store is the engine facade implemented by every driver.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	IndexManager
	BulkWriter
	Searcher
	Close()
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, req *CreateIndexRequest) (*CreateIndexResponse, error)
	GetMapping(ctx context.Context, index string) (map[string][]byte, error)
}

// BulkWriter sends batched document operations in a single round trip.
type BulkWriter interface {
	Bulk(ctx context.Context, req *BulkRequest) (*BulkResponse, error)
}

// Searcher provides query operations.
type Searcher interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
	Count(ctx context.Context, index string, query []byte) (int64, error)
}
