package elasticsearch

import (
	"bytes"
	"context"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// Search runs an offset-paginated query.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResponse, error) {
	body, err := db.EncodeSearchBody(req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := esapi.SearchRequest{
		Index: []string{req.Index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, failed(db.OpSearch, res)
	}

	out, err := db.DecodeSearchResponse(res.Body)
	if err != nil {
		return nil, &db.DecodeError{Op: db.OpSearch, Err: err}
	}
	return out, nil
}

// Count returns the number of documents matching query; nil counts everything.
func (s *Store) Count(ctx context.Context, index string, query []byte) (int64, error) {
	body, err := db.EncodeCountBody(query)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}

	req := esapi.CountRequest{Index: []string{index}}
	if body != nil {
		req.Body = bytes.NewReader(body)
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, failed(db.OpCount, res)
	}

	n, err := db.DecodeCountResponse(res.Body)
	if err != nil {
		return 0, &db.DecodeError{Op: db.OpCount, Err: err}
	}
	return n, nil
}
