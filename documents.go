package searchkit

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// RefreshPolicy controls when bulk writes become visible to search.
type RefreshPolicy string

const (
	// RefreshNone leaves visibility to the index refresh interval (default).
	RefreshNone RefreshPolicy = ""
	// RefreshTrue refreshes the affected shards immediately.
	RefreshTrue RefreshPolicy = "true"
	// RefreshWaitFor blocks until the next scheduled refresh.
	RefreshWaitFor RefreshPolicy = "wait_for"
)

// BulkOption configures a single bulk call.
type BulkOption func(*bulkConfig)

type bulkConfig struct {
	refresh RefreshPolicy
}

// WithRefresh sets the refresh policy of a bulk call.
func WithRefresh(p RefreshPolicy) BulkOption {
	return func(c *bulkConfig) { c.refresh = p }
}

// BulkUpsert indexes docs into index in one round trip. Documents with an ID
// replace any existing document with that ID; later documents in the same
// call win over earlier ones. Documents without an ID get an engine-assigned one.
//
// The result is *BulkSuccess whenever the engine answered with one item per
// document, even if some items were rejected. Anything else is *BulkError.
// A nil codec means JSONCodec.
func BulkUpsert[T any](
	ctx context.Context, c *Client, index string, docs []Document[T], codec Codec[T], opts ...BulkOption,
) (res BulkResult) {
	start := time.Now()
	defer func() { c.obs.observe("bulk_upsert", start, resultErr(res)) }()

	cfg := bulkConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	codec = codecOrDefault(codec)
	n := len(docs)

	fail := func(err error) *BulkError {
		f := classify(err)
		return &BulkError{DocumentCount: n, Warnings: f.Warnings, Failure: *f}
	}

	store, err := c.store()
	if err != nil {
		return fail(err)
	}
	if n == 0 {
		return &BulkSuccess{DocumentCount: 0, Items: []BulkResponseItem{}}
	}

	ops := make([]db.BulkOp, n)
	for i := range docs {
		src, err := codec.Encode(docs[i].Payload)
		if err != nil {
			return fail(fmt.Errorf("encode document %d: %w", i, err))
		}
		ops[i] = db.BulkOp{ID: docs[i].ID, Source: src}
	}

	c.obs.bulkStarted(ctx, index, n)
	resp, err := store.Bulk(ctx, &db.BulkRequest{
		Index:   index,
		Refresh: string(cfg.refresh),
		Ops:     ops,
	})
	if err != nil {
		return fail(err)
	}
	if len(resp.Items) != n {
		be := fail(fmt.Errorf("malformed bulk response: %d items for %d documents", len(resp.Items), n))
		be.Warnings = resp.Warnings
		return be
	}

	items := make([]BulkResponseItem, n)
	for i := range resp.Items {
		items[i] = toResponseItem(&resp.Items[i])
	}
	c.obs.bulkFinished(ctx, index, items)

	return &BulkSuccess{DocumentCount: n, Items: items}
}

func toResponseItem(it *db.BulkItem) BulkResponseItem {
	out := BulkResponseItem{
		ID:            it.ID,
		Index:         it.Index,
		Status:        it.Status,
		Result:        it.Result,
		ForcedRefresh: it.ForcedRefresh,
	}
	if it.Error != nil {
		out.Error = &ItemError{Type: it.Error.Type, Reason: nonEmpty(it.Error.Reason, it.Error.Type)}
		return out
	}
	out.Version = it.Version
	out.SeqNo = it.SeqNo
	out.PrimaryTerm = it.PrimaryTerm
	return out
}
