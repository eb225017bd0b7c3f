package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchkit"
	logpkg "github.com/kailas-cloud/searchkit/internal/logger"
	"github.com/kailas-cloud/searchkit/internal/metrics"
	"github.com/kailas-cloud/searchkit/internal/version"
)

// maxBodyBytes caps every request body; bulk payloads are the largest.
const maxBodyBytes = 32 << 20

// Limits bounds gateway requests.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
	MaxBulkSize     int
}

// Server exposes a searchkit Client over HTTP.
type Server struct {
	client   *searchkit.Client
	required []string
	limits   Limits
	logger   *zap.Logger
}

// NewServer creates an HTTP API server. required lists the indices /health
// reports on.
func NewServer(client *searchkit.Client, limits Limits, required []string, logger *zap.Logger) *Server {
	return &Server{
		client:   client,
		required: required,
		limits:   limits,
		logger:   logger,
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/version", s.Version)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/indices/{index}", func(r chi.Router) {
		r.Put("/", s.CreateIndex)
		r.Get("/_mapping", s.GetMapping)
		r.Post("/_bulk", s.Bulk)
		r.Post("/_search", s.Search)
		r.Get("/_count", s.Count)
		r.Post("/_count", s.Count)
	})
}

// CreateIndex handles PUT /indices/{index}.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req CreateIndexRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if req.Mapping != "" && len(req.Fields) > 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "mapping and fields are mutually exclusive")
		return
	}

	coords := searchkit.IndexCoordinates{Name: chi.URLParam(r, "index"), Alias: req.Alias}
	var (
		res searchkit.IndexResult
		err error
	)
	if req.Mapping != "" {
		res, err = s.client.Indices().Create(r.Context(), coords, req.Mapping)
	} else {
		var m *searchkit.Mapping
		if m, err = mappingFromRequest(&req); err == nil {
			res, err = s.client.Indices().CreateWithMapping(r.Context(), coords, m)
		}
	}
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	switch v := res.(type) {
	case *searchkit.IndexSuccess:
		writeJSON(w, http.StatusCreated, IndexResponse{
			Index:              v.Index,
			Alias:              coords.Alias,
			Acknowledged:       v.Acknowledged,
			ShardsAcknowledged: v.ShardsAcknowledged,
		})
	case *searchkit.IndexError:
		writeFailure(w, r, &v.Failure)
	default:
		writeFailure(w, r, fmt.Errorf("unexpected index result %T", res))
	}
}

func mappingFromRequest(req *CreateIndexRequest) (*searchkit.Mapping, error) {
	if len(req.Fields) == 0 {
		return nil, nil
	}
	b := searchkit.NewMapping()
	if req.Dynamic != "" {
		b.Dynamic(searchkit.DynamicMode(req.Dynamic))
	}
	for _, f := range req.Fields {
		typ := searchkit.FieldType(f.Type)
		switch {
		case f.NotIndexed:
			b.Stored(f.Name, typ)
		case typ == searchkit.FieldText && (f.Analyzer != "" || f.KeywordSubfield):
			b.TextWithOpts(f.Name, f.Analyzer, f.KeywordSubfield)
		case typ == searchkit.FieldDate:
			b.Date(f.Name, f.Format)
		default:
			b.Field(f.Name, typ)
		}
	}
	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", searchkit.ErrInvalidMapping, err)
	}
	return m, nil
}

// GetMapping handles GET /indices/{index}/_mapping. The index may be an alias
// or a wildcard pattern.
func (s *Server) GetMapping(w http.ResponseWriter, r *http.Request) {
	res := s.client.Indices().GetMapping(r.Context(), chi.URLParam(r, "index"))

	switch v := res.(type) {
	case *searchkit.MappingSuccess:
		items := make([]MappingItem, len(v.Indices))
		for i := range v.Indices {
			items[i] = MappingItem{Index: v.Indices[i], Mapping: json.RawMessage(v.Mappings[i])}
		}
		writeJSON(w, http.StatusOK, MappingResponse{Items: items})
	case *searchkit.MappingError:
		writeFailure(w, r, &v.Failure)
	default:
		writeFailure(w, r, fmt.Errorf("unexpected mapping result %T", res))
	}
}

// Bulk handles POST /indices/{index}/_bulk. Per-document rejections are
// reported with 200; only call-level failures produce an error status.
func (s *Server) Bulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	if len(req.Documents) == 0 || len(req.Documents) > s.limits.MaxBulkSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", s.limits.MaxBulkSize))
		return
	}

	var refresh searchkit.RefreshPolicy
	switch req.Refresh {
	case "", "false":
		refresh = searchkit.RefreshNone
	case "true":
		refresh = searchkit.RefreshTrue
	case "wait_for":
		refresh = searchkit.RefreshWaitFor
	default:
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "refresh must be true, false or wait_for")
		return
	}

	index := chi.URLParam(r, "index")
	docs := make([]searchkit.Document[json.RawMessage], len(req.Documents))
	for i, d := range req.Documents {
		if len(d.Source) == 0 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, fmt.Sprintf("documents[%d].source is required", i))
			return
		}
		docs[i] = searchkit.DocWithID(d.ID, d.Source)
	}

	ctx := logpkg.With(r.Context(), zap.String("index", index), zap.Int("documents", len(docs)))
	res := searchkit.BulkUpsert(ctx, s.client, index, docs, nil, searchkit.WithRefresh(refresh))

	switch v := res.(type) {
	case *searchkit.BulkSuccess:
		failed := len(v.FailedItems())
		metrics.DocumentsTotal.WithLabelValues("indexed").Add(float64(v.DocumentCount - failed))
		metrics.DocumentsTotal.WithLabelValues("rejected").Add(float64(failed))
		if failed > 0 {
			logpkg.FromContext(ctx).Info("bulk partially rejected", zap.Int("rejected", failed))
		}
		writeJSON(w, http.StatusOK, BulkResponse{
			DocumentCount: v.DocumentCount,
			Succeeded:     v.DocumentCount - failed,
			Failed:        failed,
			Items:         v.Items,
		})
	case *searchkit.BulkError:
		metrics.DocumentsTotal.WithLabelValues("failed").Add(float64(v.DocumentCount))
		f := v.Failure
		f.Warnings = v.Warnings
		writeFailure(w, r.WithContext(ctx), &f)
	default:
		writeFailure(w, r, fmt.Errorf("unexpected bulk result %T", res))
	}
}

// Search handles POST /indices/{index}/_search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	size := req.Size
	if size <= 0 {
		size = s.limits.DefaultPageSize
	}
	if size > s.limits.MaxPageSize || req.From < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("size must be at most %d and from must not be negative", s.limits.MaxPageSize))
		return
	}

	res, err := searchkit.Search[json.RawMessage](r.Context(), s.client, chi.URLParam(r, "index"), searchkit.SearchRequest{
		Query: rawQuery(req.Query),
		From:  req.From,
		Size:  size,
	}, nil)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	hits := make([]SearchHit, len(res.Documents))
	for i := range res.Documents {
		hits[i] = SearchHit{Hit: res.Hits[i], Source: res.Documents[i]}
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Total:    res.TotalHits,
		MaxScore: res.MaxScore,
		TookMs:   res.TookMs,
		From:     req.From,
		Size:     size,
		Hits:     hits,
	})
}

// Count handles GET and POST /indices/{index}/_count.
func (s *Server) Count(w http.ResponseWriter, r *http.Request) {
	var req CountRequest
	if r.Method == http.MethodPost && !decodeBody(w, r, &req, false) {
		return
	}

	n, err := s.client.Count(r.Context(), chi.URLParam(r, "index"), rawQuery(req.Query))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.client.Health(r.Context(), s.required...)

	if report.Checks["engine"] == "ok" {
		metrics.EngineUp.Set(1)
	} else {
		metrics.EngineUp.Set(0)
	}

	httpStatus := http.StatusOK
	if report.Status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}

// decodeBody reads a JSON body into v. An empty body is accepted unless required.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, required bool) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest,
				"request body exceeds "+strconv.Itoa(maxBodyBytes)+" bytes")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if len(body) == 0 {
		if required {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "request body is required")
			return false
		}
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// rawQuery passes a client-supplied engine clause through; empty or null matches all.
func rawQuery(q json.RawMessage) searchkit.Query {
	if len(q) == 0 || string(q) == "null" {
		return nil
	}
	return searchkit.RawQuery(string(q))
}
