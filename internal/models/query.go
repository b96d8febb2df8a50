package models

import "fmt"

// Default and maximum number of search results.
const (
	DefaultTopK = 5
	MaxTopK     = 100
)

// ValidationError reports an invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// SearchQuery is a semantic search request.
type SearchQuery struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Validate checks the query and fills in the default top_k.
// maxTopK <= 0 means MaxTopK.
func (q *SearchQuery) Validate(defaultTopK, maxTopK int) error {
	if q.Query == "" {
		return &ValidationError{Field: "query", Message: "must not be empty"}
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	if q.TopK == 0 {
		q.TopK = defaultTopK
	}
	if q.TopK < 1 || q.TopK > maxTopK {
		return &ValidationError{Field: "top_k", Message: fmt.Sprintf("must be between 1 and %d", maxTopK)}
	}
	return nil
}
