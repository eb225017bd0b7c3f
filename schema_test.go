package searchkit

import (
	"encoding/json"
	"testing"
)

type listing struct {
	ID       string  `json:"id" searchkit:",id"`
	Title    string  `json:"title" searchkit:",text"`
	City     string  `searchkit:"address.city,keyword"`
	Rooms    int     `json:"rooms,omitempty" searchkit:",integer"`
	Location any     `json:"location" searchkit:",geo_point"`
	Internal string  `json:"-"`
	Score    float64 `json:"score"`
}

func TestMappingFor(t *testing.T) {
	m, err := MappingFor[listing]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertJSON(t, "mapping", data, `{"properties":{
		"title":{"type":"text"},
		"address":{"properties":{"city":{"type":"keyword"}}},
		"rooms":{"type":"integer"},
		"location":{"type":"geo_point"}
	}}`)
}

func TestMappingFor_PointerType(t *testing.T) {
	m, err := MappingFor[*listing]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Fields) != 4 {
		t.Errorf("fields = %d, want 4", len(m.Fields))
	}
}

func TestParseSchema_Errors(t *testing.T) {
	type twoIDs struct {
		A string `searchkit:",id"`
		B string `searchkit:",id"`
	}
	type intID struct {
		ID int `searchkit:",id"`
	}
	type badType struct {
		A string `searchkit:",vector"`
	}
	type dupField struct {
		A string `searchkit:"x,keyword"`
		B string `searchkit:"x,text"`
	}
	type noFields struct {
		A string
	}

	checks := map[string]func() error{
		"two ids":    func() error { _, err := MappingFor[twoIDs](); return err },
		"int id":     func() error { _, err := MappingFor[intID](); return err },
		"bad type":   func() error { _, err := MappingFor[badType](); return err },
		"dup field":  func() error { _, err := MappingFor[dupField](); return err },
		"no fields":  func() error { _, err := MappingFor[noFields](); return err },
		"not struct": func() error { _, err := MappingFor[map[string]any](); return err },
	}
	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			if fn() == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSchemaMeta_IDOf(t *testing.T) {
	meta, err := parseSchema[listing]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := meta.idOf(listing{ID: "l-1"}); got != "l-1" {
		t.Errorf("idOf(value) = %q", got)
	}
	if got := meta.idOf(&listing{ID: "l-2"}); got != "l-2" {
		t.Errorf("idOf(pointer) = %q", got)
	}
	if got := meta.idOf((*listing)(nil)); got != "" {
		t.Errorf("idOf(nil) = %q", got)
	}

	var none *schemaMeta
	if got := none.idOf(listing{ID: "x"}); got != "" {
		t.Errorf("nil meta idOf = %q", got)
	}
}
