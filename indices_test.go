package searchkit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/kailas-cloud/searchkit/internal/db"
)

var mappingFS = fstest.MapFS{
	"mappings/orders.json": {Data: []byte(`{"properties":{"value":{"type":"integer"}}}`)},
	"mappings/full.json": {Data: []byte(`{
		"settings": {"number_of_shards": 1},
		"mappings": {"dynamic": "strict", "properties": {"name": {"type": "keyword"}}}
	}`)},
	"mappings/array.json":  {Data: []byte(`[{"type":"integer"}]`)},
	"mappings/broken.json": {Data: []byte(`{"properties":`)},
	"mappings/bad.json":    {Data: []byte(`{"mappings":"nope"}`)},
}

func TestLoadMapping(t *testing.T) {
	tests := []struct {
		name         string
		resource     string
		wantErr      error
		wantMappings string
		wantSettings string
	}{
		{
			name:         "bare mappings object",
			resource:     "mappings/orders.json",
			wantMappings: `{"properties":{"value":{"type":"integer"}}}`,
		},
		{
			name:         "leading slash",
			resource:     "/mappings/orders.json",
			wantMappings: `{"properties":{"value":{"type":"integer"}}}`,
		},
		{
			name:         "full body",
			resource:     "mappings/full.json",
			wantMappings: `{"dynamic":"strict","properties":{"name":{"type":"keyword"}}}`,
			wantSettings: `{"number_of_shards":1}`,
		},
		{name: "missing", resource: "mappings/nope.json", wantErr: ErrMappingNotFound},
		{name: "empty name", resource: "", wantErr: ErrMappingNotFound},
		{name: "escape", resource: "../secret.json", wantErr: ErrMappingNotFound},
		{name: "array", resource: "mappings/array.json", wantErr: ErrInvalidMapping},
		{name: "broken", resource: "mappings/broken.json", wantErr: ErrInvalidMapping},
		{name: "mappings not object", resource: "mappings/bad.json", wantErr: ErrInvalidMapping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, err := loadMapping(mappingFS, tt.resource)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !errors.Is(err, ErrConfiguration) {
					t.Error("mapping errors must be configuration errors")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertJSON(t, "mappings", m, tt.wantMappings)
			assertJSON(t, "settings", s, tt.wantSettings)
		})
	}
}

func assertJSON(t *testing.T, what string, got []byte, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Errorf("%s = %s, want nil", what, got)
		}
		return
	}
	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("%s is not JSON: %v", what, err)
	}
	_ = json.Unmarshal([]byte(want), &w)
	gb, _ := json.Marshal(g)
	wb, _ := json.Marshal(w)
	if string(gb) != string(wb) {
		t.Errorf("%s = %s, want %s", what, gb, wb)
	}
}

func TestIndexService_Create(t *testing.T) {
	var got *db.CreateIndexRequest
	store := &mockStore{createIndexFn: func(_ context.Context, req *db.CreateIndexRequest) (*db.CreateIndexResponse, error) {
		got = req
		return &db.CreateIndexResponse{Index: req.Name, Acknowledged: true, ShardsAcknowledged: true}, nil
	}}
	c := testClient(t, store, WithMappings(mappingFS))

	res, err := c.Indices().Create(context.Background(),
		IndexCoordinates{Name: "orders", Alias: "orders-alias"}, "mappings/full.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, isSuccess := res.(*IndexSuccess)
	if !isSuccess {
		t.Fatalf("want *IndexSuccess, got %T", res)
	}
	if ok.Index != "orders" || !ok.Acknowledged || !ok.ShardsAcknowledged {
		t.Errorf("IndexSuccess = %+v", ok)
	}
	if got.Alias != "orders-alias" {
		t.Errorf("Alias = %q", got.Alias)
	}
	assertJSON(t, "settings", got.Settings, `{"number_of_shards":1}`)
}

func TestIndexService_Create_ConfigErrorsSendNothing(t *testing.T) {
	store := &mockStore{createIndexFn: func(context.Context, *db.CreateIndexRequest) (*db.CreateIndexResponse, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	c := testClient(t, store, WithMappings(mappingFS))
	svc := c.Indices()
	ctx := context.Background()

	if _, err := svc.Create(ctx, IndexCoordinates{Name: "orders"}, "mappings/missing.json"); !errors.Is(err, ErrMappingNotFound) {
		t.Errorf("missing resource: err = %v", err)
	}
	if _, err := svc.Create(ctx, IndexCoordinates{Name: "Orders"}, "mappings/orders.json"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("upper-case name: err = %v", err)
	}
	if _, err := svc.Create(ctx, IndexCoordinates{Name: "orders", Alias: "a b"}, "mappings/orders.json"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("bad alias: err = %v", err)
	}
	if c.Provider().Built() {
		t.Error("engine handle built for a configuration error")
	}
}

func TestIndexService_Create_EngineFailure(t *testing.T) {
	store := &mockStore{createIndexFn: func(context.Context, *db.CreateIndexRequest) (*db.CreateIndexResponse, error) {
		return nil, &db.EngineError{
			Op: db.OpCreateIndex, StatusCode: 400,
			Type: "resource_already_exists_exception", Reason: "index [orders/abc] already exists",
			Metadata: map[string]any{"index": "orders"},
		}
	}}
	c := testClient(t, store, WithMappings(mappingFS))

	res, err := c.Indices().Create(context.Background(), IndexCoordinates{Name: "orders"}, "mappings/orders.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ie, isErr := res.(*IndexError)
	if !isErr {
		t.Fatalf("want *IndexError, got %T", res)
	}
	if ie.Kind != KindEngine {
		t.Errorf("Kind = %s", ie.Kind)
	}
	if !strings.Contains(ie.Message, "already exists") {
		t.Errorf("Message = %q", ie.Message)
	}
	if !errors.Is(ie, ErrIndexExists) {
		t.Error("expected errors.Is(ie, ErrIndexExists)")
	}
}

func TestIndexService_CreateWithMapping(t *testing.T) {
	var got *db.CreateIndexRequest
	store := &mockStore{createIndexFn: func(_ context.Context, req *db.CreateIndexRequest) (*db.CreateIndexResponse, error) {
		got = req
		return &db.CreateIndexResponse{Index: req.Name, Acknowledged: true}, nil
	}}
	c := testClient(t, store)

	m := NewMapping().Dynamic(DynamicStrict).Keyword("sku").Integer("value").MustBuild()
	res, err := c.Indices().CreateWithMapping(context.Background(), IndexCoordinates{Name: "orders"}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.(*IndexSuccess); !ok {
		t.Fatalf("want *IndexSuccess, got %T", res)
	}
	assertJSON(t, "mappings", got.Mappings,
		`{"dynamic":"strict","properties":{"sku":{"type":"keyword"},"value":{"type":"integer"}}}`)

	_, err = c.Indices().CreateWithMapping(context.Background(), IndexCoordinates{Name: "orders"}, &Mapping{
		Fields: []MappingField{{Name: "", Type: FieldKeyword}},
	})
	if !errors.Is(err, ErrInvalidMapping) {
		t.Errorf("invalid mapping: err = %v", err)
	}
}

func TestIndexService_GetMapping(t *testing.T) {
	store := &mockStore{getMappingFn: func(_ context.Context, index string) (map[string][]byte, error) {
		if index != "orders-*" {
			t.Errorf("index = %q", index)
		}
		return map[string][]byte{
			"orders-2":  []byte(`{"properties":{"b":{"type":"keyword"}}}`),
			"orders-10": []byte(`{"properties":{"a":{"type":"integer"}}}`),
		}, nil
	}}
	c := testClient(t, store)

	res := c.Indices().GetCoordinatesMapping(context.Background(),
		IndexCoordinates{Name: "orders-2", Pattern: "orders-*"})
	ok, isSuccess := res.(*MappingSuccess)
	if !isSuccess {
		t.Fatalf("want *MappingSuccess, got %T", res)
	}
	if len(ok.Indices) != 2 || ok.Indices[0] != "orders-10" || ok.Indices[1] != "orders-2" {
		t.Fatalf("Indices = %v", ok.Indices)
	}
	if !strings.Contains(ok.Mappings[0], "\n") {
		t.Errorf("mapping not pretty-printed: %q", ok.Mappings[0])
	}
	for i, m := range ok.Mappings {
		if strings.HasSuffix(m, "\n") {
			t.Errorf("Mappings[%d] ends with a newline: %q", i, m)
		}
	}
	assertJSON(t, "mapping", []byte(ok.Mappings[1]), `{"properties":{"b":{"type":"keyword"}}}`)
}

func TestIndexService_GetMapping_Empty(t *testing.T) {
	store := &mockStore{getMappingFn: func(context.Context, string) (map[string][]byte, error) {
		return map[string][]byte{}, nil
	}}
	c := testClient(t, store)

	res := c.Indices().GetMapping(context.Background(), "orders-*")
	ok, isSuccess := res.(*MappingSuccess)
	if !isSuccess {
		t.Fatalf("want *MappingSuccess, got %T", res)
	}
	if ok.Indices == nil || ok.Mappings == nil || len(ok.Indices) != 0 || len(ok.Mappings) != 0 {
		t.Errorf("got %#v, want empty non-nil lists", ok)
	}
}

func TestIndexService_GetMapping_Failure(t *testing.T) {
	store := &mockStore{getMappingFn: func(context.Context, string) (map[string][]byte, error) {
		return nil, &db.ResponseError{Op: db.OpGetMapping, StatusCode: 500, Body: "boom"}
	}}
	c := testClient(t, store)

	res := c.Indices().GetMapping(context.Background(), "orders")
	me, isErr := res.(*MappingError)
	if !isErr {
		t.Fatalf("want *MappingError, got %T", res)
	}
	if me.Kind != KindResponse || me.Message != "boom" {
		t.Errorf("Kind=%s Message=%q", me.Kind, me.Message)
	}
}
