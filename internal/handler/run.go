package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/runner"
	"github.com/sakif/snippets-library/internal/service"
)

// RunHandler executes a stored snippet in the sandbox and returns its
// output. The runner may be nil when no Docker daemon was available at
// startup, in which case execution is reported as unavailable.
type RunHandler struct {
	snippets *service.SnippetService
	runner   runner.Runner
	logger   *slog.Logger
}

func NewRunHandler(snippets *service.SnippetService, r runner.Runner, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		snippets: snippets,
		runner:   r,
		logger:   logger,
	}
}

// HandleRunSnippet runs the snippet identified by the URL and responds
// with the captured stdout, stderr and exit code as JSON.
func (h *RunHandler) HandleRunSnippet(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "Snippet execution is not available",
		})
		return
	}

	id := r.PathValue("id")

	snippet, err := h.snippets.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeError(w, err)
			return
		}
		h.logger.Error("failed to load snippet for execution",
			slog.String("snippetId", id),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	if !h.runner.Supports(snippet.LanguageID) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported_language",
			Message: "This language cannot be executed",
		})
		return
	}

	result, err := h.runner.Run(r.Context(), runner.Request{
		Language: snippet.LanguageID,
		Code:     snippet.Code,
	})
	if err != nil {
		if errors.Is(err, runner.ErrUnsupportedLanguage) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "unsupported_language",
				Message: "This language cannot be executed",
			})
			return
		}
		h.logger.Error("snippet execution failed",
			slog.String("snippetId", id),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal",
			Message: "Execution failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
