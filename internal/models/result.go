package models

// SearchResult is a single search hit.
type SearchResult struct {
	ID       int64                  `json:"id"`
	Content  string                 `json:"content"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// SearchResponse is the response for a search request. Results are ordered by
// descending score; documents the store no longer has are omitted.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Query     string          `json:"query"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
}

// ResultFromDocument renders doc as a search hit with the given score.
func ResultFromDocument(doc *Document, score float64) *SearchResult {
	meta := doc.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return &SearchResult{
		ID:       doc.ID,
		Content:  doc.Content,
		Score:    score,
		Metadata: meta,
	}
}
