package searchkit

// IndexResult is the outcome of an index creation: *IndexSuccess or *IndexError.
type IndexResult interface {
	indexResult()
}

// IndexSuccess carries the engine acknowledgement flags. They confirm the
// cluster accepted the index, not that data is available.
type IndexSuccess struct {
	Index              string
	Acknowledged       bool
	ShardsAcknowledged bool
}

// IndexError is a failed index creation.
type IndexError struct {
	Failure
}

func (*IndexSuccess) indexResult() {}
func (*IndexError) indexResult()   {}

// MappingResult is the outcome of a mapping lookup: *MappingSuccess or *MappingError.
type MappingResult interface {
	mappingResult()
}

// MappingSuccess holds one pretty-printed mapping per matching index, ordered
// by index name. Indices[i] names the index of Mappings[i].
type MappingSuccess struct {
	Indices  []string
	Mappings []string
}

// MappingError is a failed mapping lookup.
type MappingError struct {
	Failure
}

func (*MappingSuccess) mappingResult() {}
func (*MappingError) mappingResult()   {}

// BulkResult is the outcome of a bulk call: *BulkSuccess or *BulkError.
//
// Success means the round trip completed. Individual documents may still have
// been rejected; check BulkSuccess.HasErrors or each item.
type BulkResult interface {
	bulkResult()
}

// BulkSuccess lists one item per submitted document, in submission order.
type BulkSuccess struct {
	DocumentCount int
	Items         []BulkResponseItem
}

// BulkError is a call-level failure; no per-item outcome is known.
type BulkError struct {
	DocumentCount int
	Warnings      []string
	Failure
}

func (*BulkSuccess) bulkResult() {}
func (*BulkError) bulkResult()   {}

// HasErrors reports whether any item was rejected.
func (s *BulkSuccess) HasErrors() bool {
	for i := range s.Items {
		if s.Items[i].Failed() {
			return true
		}
	}
	return false
}

// FailedItems returns the rejected items, in submission order.
func (s *BulkSuccess) FailedItems() []BulkResponseItem {
	var out []BulkResponseItem
	for i := range s.Items {
		if s.Items[i].Failed() {
			out = append(out, s.Items[i])
		}
	}
	return out
}

// BulkResponseItem is the outcome of one document in a bulk call.
// Version, SeqNo and PrimaryTerm are nil when the item failed.
type BulkResponseItem struct {
	ID            string     `json:"id"`
	Index         string     `json:"index"`
	Version       *int64     `json:"version,omitempty"`
	SeqNo         *int64     `json:"seq_no,omitempty"`
	PrimaryTerm   *int64     `json:"primary_term,omitempty"`
	Status        int        `json:"status"`
	Result        string     `json:"result,omitempty"`
	ForcedRefresh *bool      `json:"forced_refresh,omitempty"`
	Error         *ItemError `json:"error,omitempty"`
}

// Failed reports whether the engine rejected this item.
func (it *BulkResponseItem) Failed() bool { return it.Error != nil }

// ItemError is the engine's reason for rejecting one document.
type ItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// SearchResult is one page of typed hits.
type SearchResult[T any] struct {
	Documents []T
	Hits      []Hit // Hits[i] describes Documents[i]
	TotalHits int64
	MaxScore  float64 // 0 when there are no hits
	TookMs    *int64  // nil when the engine omitted it
}

// Hit is the engine metadata of one returned document.
type Hit struct {
	Index string  `json:"index"`
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
