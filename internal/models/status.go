package models

// StatusResponse describes the store and index state.
type StatusResponse struct {
	Documents         int64    `json:"documents"`
	IndexedVectors    int      `json:"indexed_vectors"`
	Orphans           int      `json:"orphans"`
	Dimensions        int      `json:"dimensions"`
	DatabasePath      string   `json:"database_path,omitempty"`
	IndexPath         string   `json:"index_path,omitempty"`
	DiskUsageBytes    int64    `json:"disk_usage_bytes,omitempty"`
	EmbeddingProvider string   `json:"embedding_provider,omitempty"`
	EmbeddingModel    string   `json:"embedding_model,omitempty"`
	WatchDirectories  []string `json:"watch_directories,omitempty"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	DocumentID int64  `json:"document_id,omitempty"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
