// Package dbtest provides an in-memory search engine speaking the REST subset
// used by the drivers: info, create index, get mapping, bulk, search and count.
// It is meant for tests only.
package dbtest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
)

// Engine is a fake cluster. The zero value is not usable; call NewEngine.
type Engine struct {
	mu       sync.Mutex
	indices  map[string]*index
	aliases  map[string]string
	seq      int64
	autoID   int64
	failNext []cannedResponse
	requests []Request

	// Warning, when set, is sent as a Warning header on every response.
	Warning string
}

// Request records one call received by the engine.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type cannedResponse struct {
	status int
	body   string
}

type index struct {
	name     string
	mappings json.RawMessage
	settings json.RawMessage
	docs     map[string]*storedDoc
	order    []string
}

type storedDoc struct {
	source  []byte
	version int64
	seqNo   int64
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{
		indices: make(map[string]*index),
		aliases: make(map[string]string),
	}
}

// Start serves the engine over HTTP until the test ends.
func (e *Engine) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

// FailNext makes the next request answer with status and body verbatim.
func (e *Engine) FailNext(status int, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failNext = append(e.failNext, cannedResponse{status: status, body: body})
}

// Requests returns every request received so far, info probes excluded.
func (e *Engine) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Request, len(e.requests))
	copy(out, e.requests)
	return out
}

// Aliases returns the alias → index table.
func (e *Engine) Aliases() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.aliases))
	for k, v := range e.aliases {
		out[k] = v
	}
	return out
}

// Source returns the stored source of a document.
func (e *Engine) Source(indexName, id string) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.indices[e.resolveAlias(indexName)]
	if !ok {
		return nil, false
	}
	d, ok := idx.docs[id]
	if !ok {
		return nil, false
	}
	return d.source, true
}

// ServeHTTP implements http.Handler.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	e.mu.Lock()
	defer e.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	if e.Warning != "" {
		w.Header().Add("Warning", `299 Elasticsearch-8.0.0 "`+e.Warning+`"`)
	}

	if r.URL.Path == "/" {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":         "fake",
			"cluster_name": "searchkit-test",
			"version": map[string]any{
				"number":       "8.19.3",
				"distribution": "opensearch",
			},
			"tagline": "You Know, for Search",
		})
		return
	}

	e.requests = append(e.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   body,
	})

	if len(e.failNext) > 0 {
		canned := e.failNext[0]
		e.failNext = e.failNext[1:]
		w.WriteHeader(canned.status)
		_, _ = io.WriteString(w, canned.body)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodPut:
		e.createIndex(w, parts[0], body)
	case len(parts) == 2 && parts[1] == "_mapping" && r.Method == http.MethodGet:
		e.getMapping(w, parts[0])
	case len(parts) == 2 && parts[1] == "_bulk":
		e.bulk(w, parts[0], r.URL.Query().Get("refresh"), body)
	case len(parts) == 2 && parts[1] == "_search":
		e.search(w, parts[0], body)
	case len(parts) == 2 && parts[1] == "_count":
		e.count(w, parts[0], body)
	default:
		writeError(w, http.StatusBadRequest, "illegal_argument_exception",
			fmt.Sprintf("no handler for %s %s", r.Method, r.URL.Path), "")
	}
}

func (e *Engine) createIndex(w http.ResponseWriter, name string, body []byte) {
	if _, ok := e.indices[name]; ok {
		writeError(w, http.StatusBadRequest, "resource_already_exists_exception",
			fmt.Sprintf("index [%s/abc123] already exists", name), name)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 && !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "parse_exception", "request body is not valid JSON", "")
		return
	}

	parsed := gjson.ParseBytes(body)
	idx := &index{
		name:     name,
		mappings: rawOrEmpty(parsed.Get("mappings")),
		settings: rawOrEmpty(parsed.Get("settings")),
		docs:     make(map[string]*storedDoc),
	}
	if props := parsed.Get("mappings.properties"); props.Exists() && !props.IsObject() {
		writeError(w, http.StatusBadRequest, "mapper_parsing_exception",
			"Failed to parse mapping: properties must be an object", name)
		return
	}
	e.indices[name] = idx
	parsed.Get("aliases").ForEach(func(k, _ gjson.Result) bool {
		e.aliases[k.String()] = name
		return true
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"acknowledged":        true,
		"shards_acknowledged": true,
		"index":               name,
	})
}

// getMapping answers 404 only for a concrete missing name; an unmatched
// wildcard yields an empty object, as real clusters do.
func (e *Engine) getMapping(w http.ResponseWriter, target string) {
	matched := e.match(target)
	if len(matched) == 0 && strings.ContainsAny(target, "*?") {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	if len(matched) == 0 {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+target+"]", target)
		return
	}
	out := make(map[string]any, len(matched))
	for _, idx := range matched {
		out[idx.name] = map[string]any{"mappings": idx.mappings}
	}
	writeJSON(w, http.StatusOK, out)
}

func (e *Engine) bulk(w http.ResponseWriter, target, refresh string, body []byte) {
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, "action_request_validation_exception",
			"Validation Failed: 1: no requests added;", "")
		return
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)

	var items []map[string]any
	errorsSeen := false
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		action := gjson.GetBytes(line, "index")
		if !action.Exists() {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception",
				"Malformed action/metadata line, expected index", "")
			return
		}
		if !sc.Scan() {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception",
				"The bulk request must be terminated by a newline [\\n]", "")
			return
		}
		source := append([]byte(nil), bytes.TrimSpace(sc.Bytes())...)

		name := action.Get("_index").String()
		if name == "" {
			name = target
		}
		item := e.indexOne(e.resolveAlias(name), action.Get("_id").String(), source, refresh)
		if _, failed := item["error"]; failed {
			errorsSeen = true
		}
		items = append(items, map[string]any{"index": item})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"took":   3,
		"errors": errorsSeen,
		"items":  items,
	})
}

func (e *Engine) indexOne(name, id string, source []byte, refresh string) map[string]any {
	idx, ok := e.indices[name]
	if !ok {
		idx = &index{name: name, mappings: json.RawMessage(`{}`), docs: make(map[string]*storedDoc)}
		e.indices[name] = idx
	}
	if id == "" {
		e.autoID++
		id = fmt.Sprintf("auto-%06d", e.autoID)
	}

	if reason, bad := idx.reject(source); bad {
		return map[string]any{
			"_index": name,
			"_id":    id,
			"status": http.StatusBadRequest,
			"error": map[string]any{
				"type":   "mapper_parsing_exception",
				"reason": reason,
			},
		}
	}

	e.seq++
	status, result := http.StatusCreated, "created"
	d, exists := idx.docs[id]
	if exists {
		status, result = http.StatusOK, "updated"
		d.source = source
		d.version++
		d.seqNo = e.seq
	} else {
		idx.docs[id] = &storedDoc{source: source, version: 1, seqNo: e.seq}
		idx.order = append(idx.order, id)
		d = idx.docs[id]
	}

	item := map[string]any{
		"_index":        name,
		"_id":           id,
		"_version":      d.version,
		"result":        result,
		"_seq_no":       d.seqNo,
		"_primary_term": 1,
		"status":        status,
		"_shards":       map[string]int{"total": 1, "successful": 1, "failed": 0},
	}
	if refresh == "true" {
		item["forced_refresh"] = true
	}
	return item
}

// reject applies the numeric field types of the mapping to source.
func (idx *index) reject(source []byte) (string, bool) {
	if !gjson.ValidBytes(source) || !gjson.ParseBytes(source).IsObject() {
		return "failed to parse: document is not an object", true
	}
	var reason string
	gjson.GetBytes(idx.mappings, "properties").ForEach(func(field, def gjson.Result) bool {
		switch def.Get("type").String() {
		case "integer", "long", "short", "byte", "float", "double":
		default:
			return true
		}
		v := gjson.GetBytes(source, field.String())
		if !v.Exists() || v.Type == gjson.Null || v.Type == gjson.Number {
			return true
		}
		if v.Type == gjson.String {
			if _, err := strconv.ParseFloat(v.Str, 64); err == nil {
				return true
			}
		}
		reason = fmt.Sprintf("failed to parse field [%s] of type [%s]", field.String(), def.Get("type").String())
		return false
	})
	return reason, reason != ""
}

func (e *Engine) search(w http.ResponseWriter, target string, body []byte) {
	matched := e.match(target)
	if len(matched) == 0 {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+target+"]", target)
		return
	}

	req := gjson.ParseBytes(body)
	from, size := 0, 10
	if v := req.Get("from"); v.Exists() {
		from = int(v.Int())
	}
	if v := req.Get("size"); v.Exists() {
		size = int(v.Int())
	}

	var hits []map[string]any
	for _, idx := range matched {
		for _, id := range idx.order {
			d := idx.docs[id]
			ok, err := matches(req.Get("query"), d.source)
			if err != nil {
				writeError(w, http.StatusBadRequest, "parsing_exception", err.Error(), idx.name)
				return
			}
			if ok {
				hits = append(hits, map[string]any{
					"_index":  idx.name,
					"_id":     id,
					"_score":  1.0,
					"_source": json.RawMessage(d.source),
				})
			}
		}
	}

	total := len(hits)
	page := []map[string]any{}
	if from < total {
		end := min(from+size, total)
		page = hits[from:end]
	}
	var maxScore any
	if len(page) > 0 {
		maxScore = 1.0
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"took":      2,
		"timed_out": false,
		"hits": map[string]any{
			"total":     map[string]any{"value": total, "relation": "eq"},
			"max_score": maxScore,
			"hits":      page,
		},
	})
}

func (e *Engine) count(w http.ResponseWriter, target string, body []byte) {
	matched := e.match(target)
	if len(matched) == 0 {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+target+"]", target)
		return
	}
	query := gjson.GetBytes(body, "query")
	var n int
	for _, idx := range matched {
		for _, id := range idx.order {
			ok, err := matches(query, idx.docs[id].source)
			if err != nil {
				writeError(w, http.StatusBadRequest, "parsing_exception", err.Error(), idx.name)
				return
			}
			if ok {
				n++
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

// match resolves a name, alias or wildcard pattern to indices sorted by name.
func (e *Engine) match(target string) []*index {
	var out []*index
	for _, t := range strings.Split(target, ",") {
		if idx, ok := e.indices[e.resolveAlias(t)]; ok {
			out = append(out, idx)
			continue
		}
		if !strings.ContainsAny(t, "*?") {
			continue
		}
		for name, idx := range e.indices {
			if ok, _ := path.Match(t, name); ok {
				out = append(out, idx)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (e *Engine) resolveAlias(name string) string {
	if target, ok := e.aliases[name]; ok {
		return target
	}
	return name
}

func rawOrEmpty(r gjson.Result) json.RawMessage {
	if !r.Exists() || r.Type == gjson.Null {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(r.Raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, reason, indexName string) {
	cause := map[string]any{"type": typ, "reason": reason}
	if indexName != "" {
		cause["index"] = indexName
	}
	errBody := map[string]any{
		"type":       typ,
		"reason":     reason,
		"root_cause": []any{cause},
	}
	if indexName != "" {
		errBody["index"] = indexName
	}
	writeJSON(w, status, map[string]any{"error": errBody, "status": status})
}
