package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ideaforge/backend/internal/books"
	"github.com/ideaforge/backend/internal/service"
	"github.com/ideaforge/backend/internal/store"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	store    store.Store
	sessions *service.SessionService
	queue    *service.ReviewQueueService
	mastery  *service.MasteryService
	analyzer *books.Analyzer
	metadata *books.MetadataClient
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(s store.Store, sessions *service.SessionService, queue *service.ReviewQueueService, mastery *service.MasteryService, analyzer *books.Analyzer, metadata *books.MetadataClient, logger *slog.Logger) *Handler {
	return &Handler{
		store:    s,
		sessions: sessions,
		queue:    queue,
		mastery:  mastery,
		analyzer: analyzer,
		metadata: metadata,
		logger:   logger,
	}
}

type validator interface {
	Validate() error
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body with the given status code.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeAndValidate decodes the request body into dst and runs its
// Validate method. Returns false (after writing a 400) on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst validator) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dst.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// handleStoreError checks for common store errors and writes the appropriate
// HTTP response. Returns true if an error was handled (caller should return).
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, entity+" not found")
		return true
	}
	h.logger.Error("store error", "error", err, "entity", entity)
	respondError(w, http.StatusInternalServerError, "internal error")
	return true
}
