package domain

// SearchResult represents a single ranked hit.
// Results are produced per query and never persisted.
type SearchResult struct {
	// ID is the record id.
	ID string `json:"id"`

	// Score is the normalised relevance in [0, 100].
	Score float64 `json:"score"`

	// Heading is the heading the matched chunk sits under.
	Heading string `json:"heading"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Source is the document the chunk came from.
	Source string `json:"source,omitempty"`
}

// ItemResult is the outcome of one record inside a batch operation.
// A failed item carries its reason; it never fails the batch.
type ItemResult struct {
	ID  string
	Err error
}

// OK reports whether the item succeeded.
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// FlushResult collects per-item outcomes of a flush.
type FlushResult struct {
	Items []ItemResult
}

// Indexed returns the number of records written to the index.
func (r FlushResult) Indexed() int {
	n := 0
	for _, item := range r.Items {
		if item.OK() {
			n++
		}
	}
	return n
}

// Failed returns the items that were dropped.
func (r FlushResult) Failed() []ItemResult {
	var failed []ItemResult
	for _, item := range r.Items {
		if !item.OK() {
			failed = append(failed, item)
		}
	}
	return failed
}

// StoreStats summarises a vector store.
type StoreStats struct {
	Records int `json:"records"`
	Sources int `json:"sources"`
	Pending int `json:"pending"`
}

// SearchResponse is the structured reply of the service front ends.
type SearchResponse struct {
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// NewSearchResponse wraps results without reordering them.
func NewSearchResponse(results []SearchResult) SearchResponse {
	if results == nil {
		results = []SearchResult{}
	}
	return SearchResponse{Count: len(results), Results: results}
}
