package handler

import (
	"github.com/sakif/snippets-library/internal/model"
	"github.com/sakif/snippets-library/internal/repository"
	"github.com/sakif/snippets-library/internal/service"
)

// Typed view models for the rendering layer. Every field a template needs
// is declared here — there is no untyped side channel between handlers
// and views.

// ListPage backs the three listing pages. PageType tells the template
// which entry point it is rendering ("AllSnippets", "MySnippets",
// "FavoriteSnippets") so the filter form posts back to the right route.
type ListPage struct {
	Title      string
	PageType   string
	Snippets   []model.Snippet
	Tags       []model.Tag
	Categories []model.Category
	Languages  []model.ProgrammingLanguage
	Filter     repository.SnippetFilter
	UserID     string // empty for anonymous visitors
	CSRFToken  string
}

// DetailPage backs the snippet detail view.
type DetailPage struct {
	Title     string
	Snippet   *model.Snippet
	UserID    string
	CSRFToken string
}

// SelectOption is one entry of a select list or checkbox group.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// SnippetFormPage backs the add and edit forms. For the add form Snippet
// is nil and no option is pre-selected.
type SnippetFormPage struct {
	Title      string
	FormType   string // "add" or "edit"
	Snippet    *model.Snippet
	Languages  []SelectOption
	Categories []SelectOption
	Tags       []SelectOption
	CSRFToken  string
}

// ErrorPage carries the request ID shown on the error view so users can
// report failures that operators can find in the logs.
type ErrorPage struct {
	Title     string
	RequestID string
}

// languageOptions builds the language select list with the snippet's
// current language (if any) pre-selected.
func languageOptions(languages []model.ProgrammingLanguage, selectedID string) []SelectOption {
	opts := make([]SelectOption, 0, len(languages))
	for _, l := range languages {
		opts = append(opts, SelectOption{
			Value:    l.ID,
			Label:    l.Name,
			Selected: l.ID == selectedID,
		})
	}
	return opts
}

// categoryOptions builds the category checkbox group, marking the
// snippet's current categories selected.
func categoryOptions(all []model.Category, selected []model.Category) []SelectOption {
	selectedIDs := make(map[string]bool, len(selected))
	for _, c := range selected {
		selectedIDs[c.ID] = true
	}
	opts := make([]SelectOption, 0, len(all))
	for _, c := range all {
		opts = append(opts, SelectOption{
			Value:    c.ID,
			Label:    c.Name,
			Selected: selectedIDs[c.ID],
		})
	}
	return opts
}

// tagOptions builds the tag checkbox group, marking the snippet's current
// tags selected.
func tagOptions(all []model.Tag, selected []model.Tag) []SelectOption {
	selectedIDs := make(map[string]bool, len(selected))
	for _, t := range selected {
		selectedIDs[t.ID] = true
	}
	opts := make([]SelectOption, 0, len(all))
	for _, t := range all {
		opts = append(opts, SelectOption{
			Value:    t.ID,
			Label:    t.Name,
			Selected: selectedIDs[t.ID],
		})
	}
	return opts
}

// listPage assembles a ListPage from the snippets, catalogs, and request
// context shared by the three listing entry points.
func listPage(title, pageType string, snippets []model.Snippet, options *service.FilterOptions, filter repository.SnippetFilter, userID, csrfToken string) ListPage {
	return ListPage{
		Title:      title,
		PageType:   pageType,
		Snippets:   snippets,
		Tags:       options.Tags,
		Categories: options.Categories,
		Languages:  options.Languages,
		Filter:     filter,
		UserID:     userID,
		CSRFToken:  csrfToken,
	}
}
