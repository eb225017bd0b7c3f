package searchkit

import "testing"

func TestQueries(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"match all", MatchAll(), `{"match_all":{}}`},
		{"term string", Term("brand", "acme"), `{"term":{"brand":{"value":"acme"}}}`},
		{"term number", Term("value", 2), `{"term":{"value":{"value":2}}}`},
		{"match", Match("name", "blue mug"), `{"match":{"name":{"query":"blue mug"}}}`},
		{"phrase", MatchPhrase("name", "blue mug"), `{"match_phrase":{"name":{"query":"blue mug"}}}`},
		{"range", Range("price").Gte(1).Lt(10), `{"range":{"price":{"gte":1,"lt":10}}}`},
		{"raw", RawQuery(`{"exists":{"field":"sku"}}`), `{"exists":{"field":"sku"}}`},
		{
			"bool",
			Bool{Should: []Query{Term("a", 1), Term("b", 2)}, MustNot: []Query{MatchAll()}},
			`{"bool":{"must_not":[{"match_all":{}}],"should":[{"term":{"a":{"value":1}}},{"term":{"b":{"value":2}}}]}}`,
		},
		{"empty bool", Bool{}, `{"bool":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeQuery(tt.q)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncodeQuery_Nil(t *testing.T) {
	got, err := encodeQuery(nil)
	if err != nil || got != nil {
		t.Errorf("encodeQuery(nil) = %s, %v", got, err)
	}
}

func TestEncodeQuery_Invalid(t *testing.T) {
	if _, err := encodeQuery(Range("price")); err == nil {
		t.Error("expected error for range without bounds")
	}
	if _, err := encodeQuery(RawQuery(`{"term":`)); err == nil {
		t.Error("expected error for invalid raw query")
	}
}
