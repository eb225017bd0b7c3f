package elasticsearch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// CreateIndex creates an index with its alias, mappings and settings.
func (s *Store) CreateIndex(ctx context.Context, req *db.CreateIndexRequest) (*db.CreateIndexResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", db.ErrInvalidRequest, err)
	}
	body, err := db.EncodeCreateIndexBody(req)
	if err != nil {
		return nil, &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	res, err := esapi.IndicesCreateRequest{
		Index: req.Name,
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return nil, &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, failed(db.OpCreateIndex, res)
	}

	out, err := db.DecodeCreateIndexResponse(res.Body)
	if err != nil {
		return nil, &db.DecodeError{Op: db.OpCreateIndex, Err: err}
	}
	if out.Index == "" {
		out.Index = req.Name
	}
	return out, nil
}

// GetMapping returns the raw mappings object of every index matching name.
func (s *Store) GetMapping(ctx context.Context, index string) (map[string][]byte, error) {
	res, err := esapi.IndicesGetMappingRequest{
		Index: []string{index},
	}.Do(ctx, s.client)
	if err != nil {
		return nil, &db.Error{Op: db.OpGetMapping, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, failed(db.OpGetMapping, res)
	}

	out, err := db.DecodeMappingResponse(res.Body)
	if err != nil {
		return nil, &db.DecodeError{Op: db.OpGetMapping, Err: err}
	}
	return out, nil
}
