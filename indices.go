package searchkit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/pretty"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// IndexService provides index administration.
type IndexService struct {
	client *Client
}

// Create creates coords.Name with coords.Alias attached, using the mapping
// resource read from the client's mapping file system.
//
// The error return is reserved for configuration mistakes (the resource is
// missing or not a JSON object) and is detected before any request is sent.
// Engine and transport failures come back as *IndexError.
func (s *IndexService) Create(ctx context.Context, coords IndexCoordinates, mappingResource string) (IndexResult, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}
	mappings, settings, err := loadMapping(s.client.mappings, mappingResource)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, coords, mappings, settings), nil
}

// CreateWithMapping creates coords.Name from an in-code mapping definition.
func (s *IndexService) CreateWithMapping(ctx context.Context, coords IndexCoordinates, m *Mapping) (IndexResult, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return s.create(ctx, coords, nil, nil), nil
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}
	mappings, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}
	return s.create(ctx, coords, mappings, nil), nil
}

func (s *IndexService) create(ctx context.Context, coords IndexCoordinates, mappings, settings []byte) (res IndexResult) {
	start := time.Now()
	defer func() { s.client.obs.observe("create_index", start, resultErr(res)) }()

	store, err := s.client.store()
	if err != nil {
		return &IndexError{Failure: *classify(err)}
	}

	resp, err := store.CreateIndex(ctx, &db.CreateIndexRequest{
		Name:     coords.Name,
		Alias:    coords.Alias,
		Mappings: mappings,
		Settings: settings,
	})
	if err != nil {
		return &IndexError{Failure: *classify(err)}
	}

	return &IndexSuccess{
		Index:              resp.Index,
		Acknowledged:       resp.Acknowledged,
		ShardsAcknowledged: resp.ShardsAcknowledged,
	}
}

// GetMapping returns the pretty-printed mapping of every index matched by
// index, which may be a name, an alias or a wildcard pattern.
func (s *IndexService) GetMapping(ctx context.Context, index string) (res MappingResult) {
	start := time.Now()
	defer func() { s.client.obs.observe("get_mapping", start, resultErr(res)) }()

	store, err := s.client.store()
	if err != nil {
		return &MappingError{Failure: *classify(err)}
	}

	raw, err := store.GetMapping(ctx, index)
	if err != nil {
		return &MappingError{Failure: *classify(err)}
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &MappingSuccess{
		Indices:  names,
		Mappings: make([]string, 0, len(names)),
	}
	for _, name := range names {
		out.Mappings = append(out.Mappings, strings.TrimSuffix(string(pretty.Pretty(raw[name])), "\n"))
	}
	return out
}

// GetCoordinatesMapping resolves coords.Pattern when set, otherwise coords.Name.
func (s *IndexService) GetCoordinatesMapping(ctx context.Context, coords IndexCoordinates) MappingResult {
	if coords.Pattern != "" {
		return s.GetMapping(ctx, coords.Pattern)
	}
	return s.GetMapping(ctx, coords.Name)
}

// resultErr extracts the failure of an error variant for observation.
func resultErr(res any) error {
	switch r := res.(type) {
	case *IndexError:
		return &r.Failure
	case *MappingError:
		return &r.Failure
	case *BulkError:
		return &r.Failure
	}
	return nil
}
