package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/auth"
	"github.com/sakif/snippets-library/internal/middleware"
	"github.com/sakif/snippets-library/internal/model"
	"github.com/sakif/snippets-library/internal/repository"
	"github.com/sakif/snippets-library/internal/service"
)

// formResponse is the JSON shape returned by the create and edit form
// submissions. SnippetID uses its historical field casing — existing
// clients parse the response with that exact key.
type formResponse struct {
	Success   bool   `json:"success"`
	FormType  string `json:"formType"`
	SnippetID string `json:"SnippetID,omitempty"`
}

// SnippetHandler serves the snippet pages and mutation endpoints.
type SnippetHandler struct {
	snippets *service.SnippetService
	catalog  *service.CatalogService
	renderer *Renderer
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler.
func NewSnippetHandler(
	snippets *service.SnippetService,
	catalog *service.CatalogService,
	renderer *Renderer,
	logger *slog.Logger,
) *SnippetHandler {
	return &SnippetHandler{
		snippets: snippets,
		catalog:  catalog,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleAllSnippets serves the public listing.
//
// HTTP: GET /Snippets/AllSnippets?authorIds&categoryIds&tagIds&languageIds&sortOrder
//
// Anonymous access is allowed. An AJAX request (X-Requested-With) gets
// only the list fragment; a normal request gets the full page with the
// filter option sets.
func (h *SnippetHandler) HandleAllSnippets(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	snippets, err := h.snippets.ListPublished(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderListing(w, r, "All Snippets", "AllSnippets", snippets, filter)
}

// HandleMySnippets serves the caller's own snippets, drafts included.
//
// HTTP: GET /Snippets/MySnippets?... (requires authentication → 401)
func (h *SnippetHandler) HandleMySnippets(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in to see your snippets"))
		return
	}

	filter := filterFromQuery(r)
	snippets, err := h.snippets.ListMine(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	h.renderListing(w, r, "My Snippets", "MySnippets", snippets, filter)
}

// HandleFavoriteSnippets serves the caller's bookmarked snippets.
//
// HTTP: GET /Snippets/FavoriteSnippets?... (requires authentication → 401)
func (h *SnippetHandler) HandleFavoriteSnippets(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in to see your saved snippets"))
		return
	}

	filter := filterFromQuery(r)
	snippets, err := h.snippets.ListSaved(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	h.renderListing(w, r, "Favorite Snippets", "FavoriteSnippets", snippets, filter)
}

// HandleDetails serves the snippet detail page.
//
// HTTP: GET /Snippets/Details/{id} — anonymous allowed, 404 for unknown IDs.
func (h *SnippetHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	snippet, err := h.snippets.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	h.renderer.Page(w, http.StatusOK, "details", DetailPage{
		Title:     snippet.Title,
		Snippet:   snippet,
		UserID:    userID,
		CSRFToken: csrfToken(r),
	})
}

// HandleAddSnippetPage serves the add-snippet form.
//
// HTTP: GET /Snippets/AddSnippet (requires authentication)
func (h *SnippetHandler) HandleAddSnippetPage(w http.ResponseWriter, r *http.Request) {
	options, err := h.catalog.FilterOptions(r.Context())
	if err != nil {
		h.logger.Error("failed to load catalogs", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, http.StatusOK, "add_snippet", SnippetFormPage{
		Title:      "Add Snippet",
		FormType:   "add",
		Languages:  languageOptions(options.Languages, ""),
		Categories: categoryOptions(options.Categories, nil),
		Tags:       tagOptions(options.Tags, nil),
		CSRFToken:  csrfToken(r),
	})
}

// HandleCreateSnippet processes the add-snippet form submission.
//
// HTTP: POST /Snippets/CreateSnippetAsync (form fields, requires auth)
//
// Responds with JSON {success, formType, SnippetID} on success. A
// category or tag identifier that doesn't resolve is a logged 500; field
// validation failures are 400s.
func (h *SnippetHandler) HandleCreateSnippet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in to create snippets"))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.ValidationFailed("form", "malformed form data"))
		return
	}

	input := service.SnippetInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Code:        r.PostFormValue("code"),
		Status:      r.PostFormValue("status"),
		LanguageID:  r.PostFormValue("programmingLanguageID"),
		CategoryIDs: formValues(r, "categories"),
		TagIDs:      formValues(r, "tags"),
	}

	snippet, err := h.snippets.Create(r.Context(), input, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrUnauthorized) {
			writeError(w, err)
			return
		}
		h.logger.Error("snippet creation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, formResponse{Success: false, FormType: "add"})
		return
	}

	writeJSON(w, http.StatusOK, formResponse{
		Success:   true,
		FormType:  "add",
		SnippetID: snippet.ID,
	})
}

// HandleEditSnippetPage serves the edit form for a snippet the caller owns.
//
// HTTP: GET /Snippets/EditSnippet/{id} (requires auth; 403 non-owner, 404 unknown)
func (h *SnippetHandler) HandleEditSnippetPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in to edit snippets"))
		return
	}

	snippet, err := h.snippets.GetForEdit(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	options, err := h.catalog.FilterOptions(r.Context())
	if err != nil {
		h.logger.Error("failed to load catalogs", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, http.StatusOK, "edit_snippet", SnippetFormPage{
		Title:      "Edit Snippet",
		FormType:   "edit",
		Snippet:    snippet,
		Languages:  languageOptions(options.Languages, snippet.LanguageID),
		Categories: categoryOptions(options.Categories, snippet.Categories),
		Tags:       tagOptions(options.Tags, snippet.Tags),
		CSRFToken:  csrfToken(r),
	})
}

// HandleEditSnippetSubmit processes the edit form submission.
//
// HTTP: POST /Snippets/EditSnippet (anti-forgery token, requires auth)
//
// Invalid field input short-circuits with 400 {success:false} before
// anything is persisted. A missing snippet is answered 403, same as a
// non-owner — this endpoint does not reveal which of the two it was.
func (h *SnippetHandler) HandleEditSnippetSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in to edit snippets"))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.ValidationFailed("form", "malformed form data"))
		return
	}

	input := service.SnippetInput{
		ID:          r.PostFormValue("id"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Code:        r.PostFormValue("code"),
		Status:      r.PostFormValue("status"),
		LanguageID:  r.PostFormValue("programmingLanguageID"),
		CategoryIDs: formValues(r, "selectedCategories"),
		TagIDs:      formValues(r, "selectedTags"),
	}

	if err := h.snippets.Update(r.Context(), input, userID); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, formResponse{Success: false, FormType: "edit"})
			return
		}
		if errors.Is(err, apperror.ErrForbidden) || errors.Is(err, apperror.ErrUnauthorized) {
			writeError(w, err)
			return
		}
		h.logger.Error("snippet update failed",
			slog.String("id", input.ID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, formResponse{Success: false, FormType: "edit"})
		return
	}

	writeJSON(w, http.StatusOK, formResponse{Success: true, FormType: "edit"})
}

// HandleDeleteSnippet removes a snippet the caller owns and redirects to
// the public listing.
//
// HTTP: POST /Snippets/DeleteSnippet (anti-forgery token, requires auth)
// Form field: id. 404 unknown snippet, 403 non-owner.
func (h *SnippetHandler) HandleDeleteSnippet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in to delete snippets"))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.ValidationFailed("form", "malformed form data"))
		return
	}
	id := r.PostFormValue("id")

	if err := h.snippets.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/Snippets/AllSnippets", http.StatusSeeOther)
}

// HandleToggleSaved flips the caller's bookmark on a snippet.
//
// HTTP: POST /Snippets/AddSnippetToSavedAsync?snippetId= (requires auth → 401)
//
// Responds {success, isSaved} in every non-401 case; a failed mutation
// reports success=false with the pre-toggle saved state. The legacy
// userId query parameter is accepted but the session identity is
// authoritative.
func (h *SnippetHandler) HandleToggleSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in to save snippets"))
		return
	}

	snippetID := r.URL.Query().Get("snippetId")
	if snippetID == "" {
		writeError(w, apperror.ValidationFailed("snippetId", "snippetId is required"))
		return
	}

	result, err := h.snippets.ToggleSaved(r.Context(), userID, snippetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// renderListing branches between the full page and the AJAX fragment for
// the three listing entry points. The fragment skips the catalog loads —
// the filter UI is already on the page.
func (h *SnippetHandler) renderListing(w http.ResponseWriter, r *http.Request, title, pageType string, snippets []model.Snippet, filter repository.SnippetFilter) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if isAJAX(r) {
		h.renderer.Fragment(w, http.StatusOK, ListPage{
			PageType:  pageType,
			Snippets:  snippets,
			UserID:    userID,
			CSRFToken: csrfToken(r),
		})
		return
	}

	options, err := h.catalog.FilterOptions(r.Context())
	if err != nil {
		h.logger.Error("failed to load filter options", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, http.StatusOK, "snippets",
		listPage(title, pageType, snippets, options, filter, userID, csrfToken(r)))
}

// filterFromQuery extracts the listing filter from the query string.
// Each dimension accepts repeated keys and comma-separated values.
func filterFromQuery(r *http.Request) repository.SnippetFilter {
	q := r.URL.Query()
	return repository.SnippetFilter{
		AuthorIDs:   queryIDs(q["authorIds"]),
		CategoryIDs: queryIDs(q["categoryIds"]),
		TagIDs:      queryIDs(q["tagIds"]),
		LanguageIDs: queryIDs(q["languageIds"]),
		SortOrder:   q.Get("sortOrder"),
	}
}

// queryIDs flattens repeated query values and comma-separated lists into
// a clean ID slice.
func queryIDs(values []string) []string {
	ids := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
	}
	return ids
}

// formValues returns all values of a repeated form field, commas split.
func formValues(r *http.Request, key string) []string {
	return queryIDs(r.PostForm[key])
}

// csrfToken reads the anti-forgery cookie so pages can embed the token in
// their forms. Empty when the cookie hasn't been issued yet.
func csrfToken(r *http.Request) string {
	cookie, err := r.Cookie(middleware.AntiForgeryCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
