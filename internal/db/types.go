package db

import (
	"errors"
	"net/http"
)

// Config holds connection parameters shared by all drivers.
type Config struct {
	Addresses []string
	Username  string
	Password  string

	// InsecureTLS trusts any server certificate. Development only.
	InsecureTLS bool

	// Transport overrides the HTTP round tripper (tests, custom pooling).
	Transport  http.RoundTripper
	MaxRetries int
}

// Validate checks the driver configuration.
func (c *Config) Validate() error {
	if len(c.Addresses) == 0 {
		return errors.New("at least one address is required")
	}
	if c.Password != "" && c.Username == "" {
		return errors.New("password given without username")
	}
	return nil
}

// CreateIndexRequest describes an index with one attached alias.
type CreateIndexRequest struct {
	Name     string
	Alias    string
	Mappings []byte // raw JSON object, optional
	Settings []byte // raw JSON object, optional
}

// Validate checks that the request is well-formed.
func (r *CreateIndexRequest) Validate() error {
	if r.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIndexName(r.Name) {
		return errors.New("index name contains invalid characters: " + r.Name)
	}
	if r.Alias != "" && !IsValidIndexName(r.Alias) {
		return errors.New("alias contains invalid characters: " + r.Alias)
	}
	return nil
}

// CreateIndexResponse is the engine acknowledgement of an index creation.
type CreateIndexResponse struct {
	Index              string `json:"index"`
	Acknowledged       bool   `json:"acknowledged"`
	ShardsAcknowledged bool   `json:"shards_acknowledged"`
}

// BulkOp is one index (insert-or-replace) operation.
type BulkOp struct {
	ID     string // empty lets the engine assign one
	Source []byte // encoded document
}

// BulkRequest is a batch of index operations against a single index.
type BulkRequest struct {
	Index   string
	Refresh string // "", "true", "false" or "wait_for"
	Ops     []BulkOp
}

// BulkResponse is the decoded engine answer to a bulk call.
type BulkResponse struct {
	Took     int64
	Errors   bool
	Items    []BulkItem
	Warnings []string
}

// BulkItem is the per-operation outcome, in submission order.
type BulkItem struct {
	Index         string
	ID            string
	Result        string
	Status        int
	Version       *int64
	SeqNo         *int64
	PrimaryTerm   *int64
	ForcedRefresh *bool
	Error         *BulkItemError
}

// BulkItemError is the engine's reason for rejecting a single operation.
type BulkItemError struct {
	Type   string
	Reason string
}

// SearchRequest is an offset-paginated query against one index or pattern.
type SearchRequest struct {
	Index string
	Query []byte // raw query clause; nil means match_all
	From  int
	Size  int
}

// SearchResponse is the decoded hit list.
type SearchResponse struct {
	Took     *int64
	Total    int64
	MaxScore *float64
	Hits     []Hit
}

// Hit is a single search hit. Source is nil when the engine returned none.
type Hit struct {
	Index  string
	ID     string
	Score  *float64
	Source []byte
}
