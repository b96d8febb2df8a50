// Package models defines core data structures for documents, queries, and search results.
package models

import "time"

// Document is a stored document. ID is assigned by the document store on insert.
type Document struct {
	ID        int64                  `json:"id" db:"id"`
	Content   string                 `json:"content" db:"content"`
	Metadata  map[string]interface{} `json:"metadata" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for ingesting a document.
type DocumentInput struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Validate reports whether the input can be ingested.
func (in *DocumentInput) Validate() error {
	if in.Content == "" {
		return &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if in.Metadata == nil {
		in.Metadata = map[string]interface{}{}
	}
	return nil
}

// IngestResponse is returned after a document was stored and indexed.
type IngestResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
