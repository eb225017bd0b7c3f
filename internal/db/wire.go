package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/sjson"
)

// Wire helpers shared by the drivers. OpenSearch and Elasticsearch speak the
// same JSON for the endpoints used here; only the client libraries differ.

// EncodeCreateIndexBody builds {"aliases":{...},"mappings":{...},"settings":{...}}.
func EncodeCreateIndexBody(req *CreateIndexRequest) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if req.Alias != "" {
		body, err = sjson.SetRawBytes(body, "aliases."+escapeKey(req.Alias), []byte(`{}`))
		if err != nil {
			return nil, fmt.Errorf("encode create index body: alias: %w", err)
		}
	}
	for _, part := range []struct {
		key string
		raw []byte
	}{{"mappings", req.Mappings}, {"settings", req.Settings}} {
		raw := bytes.TrimSpace(part.raw)
		if len(raw) == 0 {
			continue
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("encode create index body: %s is not valid JSON", part.key)
		}
		body, err = sjson.SetRawBytes(body, part.key, raw)
		if err != nil {
			return nil, fmt.Errorf("encode create index body: %s: %w", part.key, err)
		}
	}
	return body, nil
}

// escapeKey quotes path metacharacters so name is used as one literal key.
func escapeKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type bulkAction struct {
	Index bulkMeta `json:"index"`
}

type bulkMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id,omitempty"`
}

// EncodeBulkBody renders the NDJSON payload: one action line and one source
// line per operation, each terminated by a newline.
func EncodeBulkBody(req *BulkRequest) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range req.Ops {
		op := &req.Ops[i]
		if err := enc.Encode(bulkAction{Index: bulkMeta{Index: req.Index, ID: op.ID}}); err != nil {
			return nil, fmt.Errorf("encode bulk action %d: %w", i, err)
		}
		src := bytes.TrimSpace(op.Source)
		if len(src) == 0 || !json.Valid(src) {
			return nil, fmt.Errorf("bulk operation %d: source is not a JSON document", i)
		}
		buf.Write(src)
		buf.WriteByte('\n')
	}
	return &buf, nil
}

type wireBulkResponse struct {
	Took   int64                         `json:"took"`
	Errors bool                          `json:"errors"`
	Items  []map[string]wireBulkItemBody `json:"items"`
}

type wireBulkItemBody struct {
	Index         string `json:"_index"`
	ID            string `json:"_id"`
	Version       *int64 `json:"_version"`
	SeqNo         *int64 `json:"_seq_no"`
	PrimaryTerm   *int64 `json:"_primary_term"`
	Result        string `json:"result"`
	Status        int    `json:"status"`
	ForcedRefresh *bool  `json:"forced_refresh"`
	Error         *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// DecodeBulkResponse maps the engine bulk answer onto BulkResponse.
// Failed items never carry version or sequence numbers.
func DecodeBulkResponse(r io.Reader) (*BulkResponse, error) {
	var raw wireBulkResponse
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	out := &BulkResponse{
		Took:   raw.Took,
		Errors: raw.Errors,
		Items:  make([]BulkItem, 0, len(raw.Items)),
	}
	for i, entry := range raw.Items {
		if len(entry) != 1 {
			return nil, fmt.Errorf("bulk item %d: expected one action, got %d", i, len(entry))
		}
		for _, b := range entry {
			item := BulkItem{
				Index:         b.Index,
				ID:            b.ID,
				Result:        b.Result,
				Status:        b.Status,
				ForcedRefresh: b.ForcedRefresh,
			}
			if b.Error != nil {
				item.Error = &BulkItemError{Type: b.Error.Type, Reason: b.Error.Reason}
			} else {
				item.Version = b.Version
				item.SeqNo = b.SeqNo
				item.PrimaryTerm = b.PrimaryTerm
			}
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

// EncodeSearchBody builds {"from":..,"size":..,"query":..}.
func EncodeSearchBody(req *SearchRequest) ([]byte, error) {
	body := map[string]any{
		"from":  req.From,
		"size":  req.Size,
		"query": queryOrMatchAll(req.Query),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	return data, nil
}

// EncodeCountBody builds {"query":..} or an empty body for match_all.
func EncodeCountBody(query []byte) ([]byte, error) {
	if len(bytes.TrimSpace(query)) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(map[string]any{"query": json.RawMessage(query)})
	if err != nil {
		return nil, fmt.Errorf("encode count body: %w", err)
	}
	return data, nil
}

func queryOrMatchAll(q []byte) json.RawMessage {
	if len(bytes.TrimSpace(q)) == 0 {
		return json.RawMessage(`{"match_all":{}}`)
	}
	return json.RawMessage(q)
}

type wireTotal struct {
	Value int64 `json:"value"`
}

// UnmarshalJSON accepts both {"value":n} and a bare number.
func (t *wireTotal) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		t.Value = obj.Value
		return nil
	}
	return json.Unmarshal(data, &t.Value)
}

type wireSearchResponse struct {
	Took *int64 `json:"took"`
	Hits struct {
		Total    *wireTotal `json:"total"`
		MaxScore *float64   `json:"max_score"`
		Hits     []struct {
			Index  string          `json:"_index"`
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// DecodeSearchResponse maps the engine search answer onto SearchResponse.
func DecodeSearchResponse(r io.Reader) (*SearchResponse, error) {
	var raw wireSearchResponse
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	out := &SearchResponse{
		Took:     raw.Took,
		MaxScore: raw.Hits.MaxScore,
		Hits:     make([]Hit, 0, len(raw.Hits.Hits)),
	}
	if raw.Hits.Total != nil {
		out.Total = raw.Hits.Total.Value
	}
	for _, h := range raw.Hits.Hits {
		hit := Hit{Index: h.Index, ID: h.ID, Score: h.Score}
		if src := bytes.TrimSpace(h.Source); len(src) > 0 && !bytes.Equal(src, []byte("null")) {
			hit.Source = src
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// DecodeCountResponse reads {"count":n}.
func DecodeCountResponse(r io.Reader) (int64, error) {
	var raw struct {
		Count *int64 `json:"count"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return 0, err
	}
	if raw.Count == nil {
		return 0, fmt.Errorf("count missing from response")
	}
	return *raw.Count, nil
}

// DecodeMappingResponse reads {"<index>":{"mappings":{...}}}.
func DecodeMappingResponse(r io.Reader) (map[string][]byte, error) {
	var raw map[string]struct {
		Mappings json.RawMessage `json:"mappings"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(raw))
	for name, m := range raw {
		mapping := bytes.TrimSpace(m.Mappings)
		if len(mapping) == 0 || bytes.Equal(mapping, []byte("null")) {
			mapping = []byte("{}")
		}
		out[name] = mapping
	}
	return out, nil
}

// DecodeCreateIndexResponse reads the create-index acknowledgement.
func DecodeCreateIndexResponse(r io.Reader) (*CreateIndexResponse, error) {
	var out CreateIndexResponse
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
