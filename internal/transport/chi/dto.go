package chi

import (
	"encoding/json"

	"github.com/kailas-cloud/searchkit"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned by the gateway.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeIndexNotFound    ErrorCode = "index_not_found"
	CodeIndexExists      ErrorCode = "index_already_exists"
	CodeEngineRejected   ErrorCode = "engine_rejected"
	CodeEngineResponse   ErrorCode = "engine_bad_response"
	CodeEngineUnavail    ErrorCode = "engine_unavailable"
	CodeConfiguration    ErrorCode = "configuration_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code     ErrorCode      `json:"code"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// CreateIndexRequest is the body of PUT /indices/{index}. Mapping (a resource
// name) and Fields are mutually exclusive; with neither the index is created
// without explicit mappings.
type CreateIndexRequest struct {
	Alias   string         `json:"alias,omitempty"`
	Mapping string         `json:"mapping,omitempty"`
	Dynamic string         `json:"dynamic,omitempty"`
	Fields  []FieldRequest `json:"fields,omitempty"`
}

// FieldRequest declares one mapped field.
type FieldRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Format          string `json:"format,omitempty"`
	Analyzer        string `json:"analyzer,omitempty"`
	KeywordSubfield bool   `json:"keyword_subfield,omitempty"`
	NotIndexed      bool   `json:"not_indexed,omitempty"`
}

// IndexResponse acknowledges an index creation.
type IndexResponse struct {
	Index              string `json:"index"`
	Alias              string `json:"alias,omitempty"`
	Acknowledged       bool   `json:"acknowledged"`
	ShardsAcknowledged bool   `json:"shards_acknowledged"`
}

// MappingItem is the mapping of one index.
type MappingItem struct {
	Index   string          `json:"index"`
	Mapping json.RawMessage `json:"mapping"`
}

// MappingResponse lists mappings in index-name order.
type MappingResponse struct {
	Items []MappingItem `json:"items"`
}

// BulkRequest is the body of POST /indices/{index}/_bulk.
type BulkRequest struct {
	Refresh   string         `json:"refresh,omitempty"` // "", "true", "wait_for"
	Documents []BulkDocument `json:"documents"`
}

// BulkDocument is one document to index; an empty ID lets the engine assign one.
type BulkDocument struct {
	ID     string          `json:"id,omitempty"`
	Source json.RawMessage `json:"source"`
}

// BulkResponse reports per-document outcomes in submission order.
type BulkResponse struct {
	DocumentCount int                          `json:"document_count"`
	Succeeded     int                          `json:"succeeded"`
	Failed        int                          `json:"failed"`
	Items         []searchkit.BulkResponseItem `json:"items"`
}

// SearchRequest is the body of POST /indices/{index}/_search.
type SearchRequest struct {
	Query json.RawMessage `json:"query,omitempty"`
	From  int             `json:"from,omitempty"`
	Size  int             `json:"size,omitempty"`
}

// SearchHit is one returned document.
type SearchHit struct {
	searchkit.Hit
	Source json.RawMessage `json:"source"`
}

// SearchResponse is one page of hits.
type SearchResponse struct {
	Total    int64       `json:"total"`
	MaxScore float64     `json:"max_score"`
	TookMs   *int64      `json:"took_ms,omitempty"`
	From     int         `json:"from"`
	Size     int         `json:"size"`
	Hits     []SearchHit `json:"hits"`
}

// CountRequest is the optional body of POST /indices/{index}/_count.
type CountRequest struct {
	Query json.RawMessage `json:"query,omitempty"`
}

// CountResponse carries a document count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
