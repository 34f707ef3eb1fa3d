package handler

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ErrorHandler renders the generic error page.
type ErrorHandler struct {
	renderer *Renderer
}

// NewErrorHandler creates an ErrorHandler.
func NewErrorHandler(renderer *Renderer) *ErrorHandler {
	return &ErrorHandler{renderer: renderer}
}

// HandleError serves the error page with the chi request ID, so a user
// screenshotting the page gives operators something to grep the logs for.
//
// HTTP: GET /Snippets/Error
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	h.renderer.Page(w, http.StatusOK, "error", ErrorPage{
		Title:     "Something went wrong",
		RequestID: chimiddleware.GetReqID(r.Context()),
	})
}
