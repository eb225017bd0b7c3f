package searchkit

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// --- db.Store mock ---

type mockStore struct {
	pingFn        func(ctx context.Context) error
	createIndexFn func(ctx context.Context, req *db.CreateIndexRequest) (*db.CreateIndexResponse, error)
	getMappingFn  func(ctx context.Context, index string) (map[string][]byte, error)
	bulkFn        func(ctx context.Context, req *db.BulkRequest) (*db.BulkResponse, error)
	searchFn      func(ctx context.Context, req *db.SearchRequest) (*db.SearchResponse, error)
	countFn       func(ctx context.Context, index string, query []byte) (int64, error)
	closed        bool
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn == nil {
		return nil
	}
	return m.pingFn(ctx)
}

func (m *mockStore) CreateIndex(ctx context.Context, req *db.CreateIndexRequest) (*db.CreateIndexResponse, error) {
	return m.createIndexFn(ctx, req)
}

func (m *mockStore) GetMapping(ctx context.Context, index string) (map[string][]byte, error) {
	return m.getMappingFn(ctx, index)
}

func (m *mockStore) Bulk(ctx context.Context, req *db.BulkRequest) (*db.BulkResponse, error) {
	return m.bulkFn(ctx, req)
}

func (m *mockStore) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResponse, error) {
	return m.searchFn(ctx, req)
}

func (m *mockStore) Count(ctx context.Context, index string, query []byte) (int64, error) {
	return m.countFn(ctx, index, query)
}

func (m *mockStore) Close() { m.closed = true }

// withStore bypasses driver construction.
func withStore(s db.Store) Option {
	return optionFunc(func(c *clientConfig) {
		c.newStore = func(db.Config) (db.Store, error) { return s, nil }
	})
}

func testClient(t *testing.T, s db.Store, opts ...Option) *Client {
	t.Helper()
	c, err := New(DefaultConnectionConfig(), append([]Option{withStore(s)}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

// acceptAll answers every bulk operation with a created item.
func acceptAll(_ context.Context, req *db.BulkRequest) (*db.BulkResponse, error) {
	resp := &db.BulkResponse{Items: make([]db.BulkItem, len(req.Ops))}
	for i, op := range req.Ops {
		v, seq, term := int64(1), int64(i), int64(1)
		id := op.ID
		if id == "" {
			id = "gen-" + string(rune('a'+i))
		}
		resp.Items[i] = db.BulkItem{
			Index: req.Index, ID: id, Result: "created", Status: 201,
			Version: &v, SeqNo: &seq, PrimaryTerm: &term,
		}
	}
	return resp, nil
}

func ptr[T any](v T) *T { return &v }
