package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchkit"
	"github.com/kailas-cloud/searchkit/internal/db/dbtest"
	"github.com/kailas-cloud/searchkit/internal/metrics"
)

func newTestRouter(t *testing.T) (http.Handler, *dbtest.Engine) {
	t.Helper()
	engine := dbtest.NewEngine()
	srv := engine.Start(t)

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	conn := searchkit.DefaultConnectionConfig()
	conn.Host = u.Hostname()
	conn.Port = port

	client, err := searchkit.New(conn, searchkit.WithMappings(fstest.MapFS{
		"orders.json": {Data: []byte(`{"properties":{"value":{"type":"integer"}}}`)},
	}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)

	s := NewServer(client, Limits{DefaultPageSize: 10, MaxPageSize: 50, MaxBulkSize: 5}, []string{"orders"}, zap.NewNop())
	r := chi.NewRouter()
	s.Routes(r)
	return r, engine
}

func do(t *testing.T, h http.Handler, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if out != nil {
		if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return rr
}

func TestServer_OrdersFlow(t *testing.T) {
	h, engine := newTestRouter(t)

	var health HealthResponse
	if rr := do(t, h, "GET", "/health", "", &health); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("health before create: %d %+v", rr.Code, health)
	}

	var created IndexResponse
	rr := do(t, h, "PUT", "/indices/orders", `{"alias":"orders-alias","mapping":"orders.json"}`, &created)
	if rr.Code != http.StatusCreated || !created.Acknowledged {
		t.Fatalf("create: %d %+v", rr.Code, created)
	}
	if engine.Aliases()["orders-alias"] != "orders" {
		t.Errorf("aliases = %v", engine.Aliases())
	}

	indexedBefore := testutil.ToFloat64(metrics.DocumentsTotal.WithLabelValues("indexed"))
	rejectedBefore := testutil.ToFloat64(metrics.DocumentsTotal.WithLabelValues("rejected"))

	var bulk BulkResponse
	rr = do(t, h, "POST", "/indices/orders-alias/_bulk", `{"refresh":"true","documents":[
		{"id":"1","source":{"value":1}},
		{"id":"2","source":{"value":"two"}},
		{"source":{"value":3}}
	]}`, &bulk)
	if rr.Code != http.StatusOK {
		t.Fatalf("bulk: %d", rr.Code)
	}
	if bulk.DocumentCount != 3 || bulk.Succeeded != 2 || bulk.Failed != 1 {
		t.Errorf("bulk = %+v", bulk)
	}
	if !bulk.Items[1].Failed() || bulk.Items[1].Error.Type != "mapper_parsing_exception" {
		t.Errorf("item 1 = %+v", bulk.Items[1])
	}
	if d := testutil.ToFloat64(metrics.DocumentsTotal.WithLabelValues("indexed")) - indexedBefore; d != 2 {
		t.Errorf("indexed documents counted = %v, want 2", d)
	}
	if d := testutil.ToFloat64(metrics.DocumentsTotal.WithLabelValues("rejected")) - rejectedBefore; d != 1 {
		t.Errorf("rejected documents counted = %v, want 1", d)
	}

	var count CountResponse
	rr = do(t, h, "POST", "/indices/orders/_count", `{"query":{"range":{"value":{"gte":2}}}}`, &count)
	if rr.Code != http.StatusOK || count.Count != 1 {
		t.Errorf("count: %d %+v", rr.Code, count)
	}
	do(t, h, "GET", "/indices/orders/_count", "", &count)
	if count.Count != 2 {
		t.Errorf("count all = %d, want 2", count.Count)
	}

	var search SearchResponse
	rr = do(t, h, "POST", "/indices/orders*/_search", `{"query":{"term":{"value":{"value":1}}}}`, &search)
	if rr.Code != http.StatusOK {
		t.Fatalf("search: %d", rr.Code)
	}
	if search.Total != 1 || len(search.Hits) != 1 || search.Hits[0].ID != "1" || search.Size != 10 {
		t.Errorf("search = %+v", search)
	}
	if string(search.Hits[0].Source) != `{"value":1}` {
		t.Errorf("source = %s", search.Hits[0].Source)
	}

	var mapping MappingResponse
	rr = do(t, h, "GET", "/indices/orders-alias/_mapping", "", &mapping)
	if rr.Code != http.StatusOK || len(mapping.Items) != 1 || mapping.Items[0].Index != "orders" {
		t.Errorf("mapping: %d %+v", rr.Code, mapping)
	}

	if rr := do(t, h, "GET", "/health", "", &health); rr.Code != http.StatusOK || health.Status != "ok" {
		t.Errorf("health after create: %d %+v", rr.Code, health)
	}
}

func TestServer_CreateWithFields(t *testing.T) {
	h, engine := newTestRouter(t)

	rr := do(t, h, "PUT", "/indices/products", `{"dynamic":"strict","fields":[
		{"name":"sku","type":"keyword"},
		{"name":"title","type":"text","keyword_subfield":true},
		{"name":"added","type":"date","format":"strict_date"}
	]}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body)
	}

	reqs := engine.Requests()
	body := string(reqs[len(reqs)-1].Body)
	for _, want := range []string{`"dynamic":"strict"`, `"format":"strict_date"`, `"keyword"`} {
		if !strings.Contains(body, want) {
			t.Errorf("create body missing %s: %s", want, body)
		}
	}
}

func TestServer_Errors(t *testing.T) {
	h, engine := newTestRouter(t)
	do(t, h, "PUT", "/indices/orders", `{}`, nil)

	tests := []struct {
		name   string
		setup  func()
		method string
		path   string
		body   string
		status int
		code   ErrorCode
	}{
		{name: "missing mapping resource", method: "PUT", path: "/indices/other", body: `{"mapping":"nope.json"}`,
			status: http.StatusBadRequest, code: CodeValidationFailed},
		{name: "invalid index name", method: "PUT", path: "/indices/Other", body: `{}`,
			status: http.StatusBadRequest, code: CodeValidationFailed},
		{name: "both mapping and fields", method: "PUT", path: "/indices/other",
			body:   `{"mapping":"orders.json","fields":[{"name":"a","type":"keyword"}]}`,
			status: http.StatusBadRequest, code: CodeValidationFailed},
		{name: "index exists", method: "PUT", path: "/indices/orders", body: `{}`,
			status: http.StatusConflict, code: CodeIndexExists},
		{name: "index not found", method: "POST", path: "/indices/missing/_search", body: `{}`,
			status: http.StatusNotFound, code: CodeIndexNotFound},
		{name: "malformed body", method: "POST", path: "/indices/orders/_search", body: `{"query":`,
			status: http.StatusBadRequest, code: CodeBadRequest},
		{name: "page too large", method: "POST", path: "/indices/orders/_search", body: `{"size":500}`,
			status: http.StatusBadRequest, code: CodeValidationFailed},
		{name: "empty bulk", method: "POST", path: "/indices/orders/_bulk", body: `{"documents":[]}`,
			status: http.StatusBadRequest, code: CodeValidationFailed},
		{name: "bulk too large", method: "POST", path: "/indices/orders/_bulk",
			body:   `{"documents":[{"source":{}},{"source":{}},{"source":{}},{"source":{}},{"source":{}},{"source":{}}]}`,
			status: http.StatusBadRequest, code: CodeValidationFailed},
		{name: "bad refresh", method: "POST", path: "/indices/orders/_bulk",
			body:   `{"refresh":"soon","documents":[{"source":{}}]}`,
			status: http.StatusBadRequest, code: CodeValidationFailed},
		{name: "engine gateway error", setup: func() { engine.FailNext(502, "upstream down") },
			method: "POST", path: "/indices/orders/_bulk", body: `{"documents":[{"source":{"value":1}}]}`,
			status: http.StatusBadGateway, code: CodeEngineResponse},
		{name: "engine rejected query", method: "POST", path: "/indices/orders/_search",
			body:   `{"query":{"geo_shape":{}}}`,
			status: http.StatusBadRequest, code: CodeEngineRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			var resp ErrorResponse
			rr := do(t, h, tt.method, tt.path, tt.body, &resp)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d (%+v)", rr.Code, tt.status, resp)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestServer_EngineUnavailable(t *testing.T) {
	conn := searchkit.DefaultConnectionConfig()
	conn.Host = "127.0.0.1"
	conn.Port = 1
	client, err := searchkit.New(conn)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)

	r := chi.NewRouter()
	NewServer(client, Limits{DefaultPageSize: 10, MaxPageSize: 10, MaxBulkSize: 10}, nil, zap.NewNop()).Routes(r)

	var resp ErrorResponse
	rr := do(t, r, "GET", "/indices/orders/_count", "", &resp)
	if rr.Code != http.StatusServiceUnavailable || resp.Code != CodeEngineUnavail {
		t.Errorf("count: %d %+v", rr.Code, resp)
	}

	var health HealthResponse
	rr = do(t, r, "GET", "/health", "", &health)
	if rr.Code != http.StatusServiceUnavailable || health.Checks["engine"] != "error" {
		t.Errorf("health: %d %+v", rr.Code, health)
	}
}

func TestServer_Version(t *testing.T) {
	h, _ := newTestRouter(t)

	var info map[string]string
	if rr := do(t, h, "GET", "/version", "", &info); rr.Code != http.StatusOK || info["version"] == "" {
		t.Errorf("version: %d %v", rr.Code, info)
	}
}
