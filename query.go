package searchkit

import (
	"encoding/json"
	"fmt"
)

// Query is an engine query clause. A nil Query matches every document.
type Query interface {
	json.Marshaler
}

type clause map[string]any

func (c clause) MarshalJSON() ([]byte, error) { return json.Marshal(map[string]any(c)) }

type rawQuery json.RawMessage

func (r rawQuery) MarshalJSON() ([]byte, error) { return json.RawMessage(r), nil }

// RawQuery passes an engine-native clause through unchanged.
func RawQuery(src string) Query { return rawQuery(src) }

// MatchAll matches every document.
func MatchAll() Query { return clause{"match_all": map[string]any{}} }

// Term matches documents whose field equals value exactly.
func Term(field string, value any) Query {
	return clause{"term": map[string]any{field: map[string]any{"value": value}}}
}

// Match runs a full-text match on field.
func Match(field, text string) Query {
	return clause{"match": map[string]any{field: map[string]any{"query": text}}}
}

// MatchPhrase matches the exact phrase on field.
func MatchPhrase(field, phrase string) Query {
	return clause{"match_phrase": map[string]any{field: map[string]any{"query": phrase}}}
}

// RangeQuery bounds a field. Build with Range and the Gt/Gte/Lt/Lte methods.
type RangeQuery struct {
	field  string
	bounds map[string]any
}

// Range starts a range query on field.
func Range(field string) *RangeQuery {
	return &RangeQuery{field: field, bounds: make(map[string]any, 2)}
}

// Gt sets an exclusive lower bound.
func (r *RangeQuery) Gt(v any) *RangeQuery { r.bounds["gt"] = v; return r }

// Gte sets an inclusive lower bound.
func (r *RangeQuery) Gte(v any) *RangeQuery { r.bounds["gte"] = v; return r }

// Lt sets an exclusive upper bound.
func (r *RangeQuery) Lt(v any) *RangeQuery { r.bounds["lt"] = v; return r }

// Lte sets an inclusive upper bound.
func (r *RangeQuery) Lte(v any) *RangeQuery { r.bounds["lte"] = v; return r }

// MarshalJSON implements Query.
func (r *RangeQuery) MarshalJSON() ([]byte, error) {
	if len(r.bounds) == 0 {
		return nil, fmt.Errorf("range on %q has no bounds", r.field)
	}
	return json.Marshal(map[string]any{"range": map[string]any{r.field: r.bounds}})
}

// Bool combines clauses. Must and Filter all have to match, MustNot must not,
// and at least one Should has to match when there is no Must or Filter.
type Bool struct {
	Must    []Query
	Filter  []Query
	Should  []Query
	MustNot []Query
}

// MarshalJSON implements Query.
func (b Bool) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 4)
	for key, list := range map[string][]Query{
		"must":     b.Must,
		"filter":   b.Filter,
		"should":   b.Should,
		"must_not": b.MustNot,
	} {
		if len(list) > 0 {
			body[key] = list
		}
	}
	return json.Marshal(map[string]any{"bool": body})
}

// encodeQuery renders q, or nil for match-all.
func encodeQuery(q Query) ([]byte, error) {
	if q == nil {
		return nil, nil
	}
	data, err := q.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("encode query: invalid JSON %q", data)
	}
	return data, nil
}
