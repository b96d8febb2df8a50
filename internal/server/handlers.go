package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/deepsearch/internal/ingest"
	"github.com/hyperjump/deepsearch/internal/models"
	"github.com/hyperjump/deepsearch/internal/storage"
	"github.com/hyperjump/deepsearch/internal/vector"
	"go.uber.org/zap"
)

const serviceName = "deep-search-api"

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if !s.decodeBody(w, r, &query) {
		return
	}
	s.logger.Debug("Search request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if !s.decodeBody(w, r, &input) {
		return
	}
	if err := input.Validate(); err != nil {
		s.respondErr(w, r, err)
		return
	}
	id, err := s.coordinator.Ingest(r.Context(), input.Content, input.Metadata)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, models.IngestResponse{
		ID:      id,
		Message: "Document ingested successfully",
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondErr(w, r, &models.ValidationError{Field: "id", Message: "must be an integer"})
		return
	}
	result, err := s.engine.GetDocument(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Service: serviceName})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := CollectStatus(r.Context(), s.storage, s.coordinator, s.index, s.config)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	orphans, err := s.coordinator.Orphans(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"orphans": orphans,
		"count":   len(orphans),
	})
}

type repairResponse struct {
	*ingest.RepairReport
	Errors []string `json:"errors,omitempty"`
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	report, err := s.coordinator.Repair(r.Context())
	resp := repairResponse{RepairReport: report}
	status := http.StatusOK
	if err != nil {
		s.logger.Error("Repair incomplete", zap.Error(err))
		resp.Errors = splitJoined(err)
		status = http.StatusInternalServerError
	}
	s.respondJSON(w, status, resp)
}

// splitJoined flattens an errors.Join result into messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "invalid_request", "invalid request body: "+err.Error())
		return false
	}
	return true
}

// respondErr maps an error to its status code and error code.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *models.ValidationError
		partial    *ingest.PartialIngestError
	)
	reqID := middleware.GetReqID(r.Context())
	switch {
	case errors.As(err, &validation):
		s.respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, vector.ErrInvalidK):
		s.respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not_found", "Document not found")
	case errors.As(err, &partial):
		s.logger.Error("Ingest partially failed", zap.String("request_id", reqID),
			zap.Int64("document_id", partial.DocumentID), zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:      err.Error(),
			Code:       "index_failed",
			DocumentID: partial.DocumentID,
		})
	case errors.Is(err, ingest.ErrEmbedding):
		s.logger.Warn("Embedding failed", zap.String("request_id", reqID), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "embedding_failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		s.logger.Error("Request failed", zap.String("request_id", reqID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message, Code: code})
}
