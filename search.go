package searchkit

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// DefaultSearchSize is used when SearchRequest.Size is not positive.
const DefaultSearchSize = 1000

// SearchRequest is an offset-paginated query. From is the zero-based offset
// of the first hit; Size caps the page. Pages are not snapshot-isolated.
type SearchRequest struct {
	Query Query // nil matches all documents
	From  int
	Size  int
}

// Search runs req against index and decodes every hit that carries a source.
// Hits without a source (excluded by projection) are skipped. A nil codec
// means JSONCodec. The error is always a *Failure.
func Search[T any](
	ctx context.Context, c *Client, index string, req SearchRequest, codec Codec[T],
) (res *SearchResult[T], err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	codec = codecOrDefault(codec)

	store, err := c.store()
	if err != nil {
		return nil, err
	}
	query, err := encodeQuery(req.Query)
	if err != nil {
		return nil, classify(err)
	}

	size := req.Size
	if size <= 0 {
		size = DefaultSearchSize
	}
	from := max(req.From, 0)

	resp, err := store.Search(ctx, &db.SearchRequest{
		Index: index,
		Query: query,
		From:  from,
		Size:  size,
	})
	if err != nil {
		return nil, classify(err)
	}

	out := &SearchResult[T]{
		Documents: make([]T, 0, len(resp.Hits)),
		Hits:      make([]Hit, 0, len(resp.Hits)),
		TotalHits: resp.Total,
		TookMs:    resp.Took,
	}
	if resp.MaxScore != nil {
		out.MaxScore = *resp.MaxScore
	}
	for i := range resp.Hits {
		h := &resp.Hits[i]
		if h.Source == nil {
			continue
		}
		doc, err := codec.Decode(h.Source)
		if err != nil {
			return nil, classify(fmt.Errorf("decode hit %s/%s: %w", h.Index, h.ID, err))
		}
		hit := Hit{Index: h.Index, ID: h.ID}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		out.Documents = append(out.Documents, doc)
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}
