package opensearch

import (
	"context"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// Bulk sends all operations in one _bulk round trip.
func (s *Store) Bulk(ctx context.Context, req *db.BulkRequest) (*db.BulkResponse, error) {
	if req.Index == "" || len(req.Ops) == 0 {
		return nil, fmt.Errorf("%w: bulk needs an index and at least one operation", db.ErrInvalidRequest)
	}
	body, err := db.EncodeBulkBody(req)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}

	res, err := opensearchapi.BulkRequest{
		Index:   req.Index,
		Body:    body,
		Refresh: req.Refresh,
	}.Do(ctx, s.client)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, failed(db.OpBulk, res)
	}

	out, err := db.DecodeBulkResponse(res.Body)
	if err != nil {
		return nil, &db.DecodeError{Op: db.OpBulk, Err: err}
	}
	out.Warnings = res.Warnings()
	return out, nil
}
