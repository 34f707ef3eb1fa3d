package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/service"
)

// CatalogHandler serves the typeahead searches and ad-hoc tag creation.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HandleSearchAuthors serves the author typeahead.
//
// HTTP: GET /Snippets/SearchAuthors?query= — anonymous; an empty query
// matches every author (no emptiness constraint on this endpoint).
func (h *CatalogHandler) HandleSearchAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.catalog.SearchAuthors(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.logger.Error("author search failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authors)
}

// HandleSearchTags serves the tag typeahead.
//
// HTTP: GET /Snippets/SearchTags?query= — anonymous; an empty or
// whitespace query is a 400 and never reaches the data layer.
func (h *CatalogHandler) HandleSearchTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.SearchTags(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// HandleAddTag creates a tag on the fly from the add/edit forms.
//
// HTTP: POST /api/tags/add (requires auth)
//
// The body is a bare JSON string — the tag name — and the success
// response is the new tag's ID as a JSON string, both kept for client
// compatibility. Empty names are 400; unexpected failures are logged 500s
// with generic text.
func (h *CatalogHandler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := json.NewDecoder(r.Body).Decode(&name); err != nil {
		writeError(w, apperror.ValidationFailed("name", "invalid tag name"))
		return
	}

	tag, err := h.catalog.AddTag(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			writeError(w, err)
			return
		}
		h.logger.Error("tag creation failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An error occurred while adding the tag",
		})
		return
	}

	writeJSON(w, http.StatusOK, tag.ID)
}
