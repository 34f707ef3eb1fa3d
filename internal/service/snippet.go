// Package service contains the business logic layer.
//
// Handlers parse HTTP and shape responses; services enforce the rules
// (validation, ownership, change detection) against the repository
// interfaces; repositories own the SQL. Services receive interfaces, not
// concrete types, so tests can inject in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/model"
	"github.com/sakif/snippets-library/internal/repository"
)

const (
	MaxTitleLength = 200
	MaxCodeLength  = 100000 // ~100KB of code
)

// SnippetInput carries the submitted fields of the create and edit forms.
// Category and tag selections arrive as raw identifier arrays; the service
// resolves them to full records before anything touches the store.
type SnippetInput struct {
	ID          string // empty on create
	Title       string
	Description string
	Code        string
	Status      string // raw status token from the form
	LanguageID  string
	CategoryIDs []string
	TagIDs      []string
}

// ToggleResult is the outcome of a save/unsave toggle.
//
// Success reports whether the underlying mutation went through; IsSaved is
// the resulting bookmark state — or the pre-toggle state when the mutation
// failed, so the client UI stays truthful either way.
type ToggleResult struct {
	Success bool `json:"success"`
	IsSaved bool `json:"isSaved"`
}

// SnippetService handles the snippet lifecycle: listing with filters,
// creation, owner-scoped edit and delete, and the per-user saved relation.
type SnippetService struct {
	snippets   repository.SnippetRepository
	tags       repository.TagRepository
	categories repository.CategoryRepository
	languages  repository.LanguageRepository
	logger     *slog.Logger
}

// NewSnippetService creates a SnippetService.
func NewSnippetService(
	snippets repository.SnippetRepository,
	tags repository.TagRepository,
	categories repository.CategoryRepository,
	languages repository.LanguageRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets:   snippets,
		tags:       tags,
		categories: categories,
		languages:  languages,
		logger:     logger,
	}
}

// ListPublished returns the public listing: published snippets matching
// the filter. Anonymous callers are allowed.
func (s *SnippetService) ListPublished(ctx context.Context, filter repository.SnippetFilter) ([]model.Snippet, error) {
	snippets, err := s.snippets.ListPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing published snippets: %w", err)
	}
	return snippets, nil
}

// ListMine returns every snippet authored by the user, drafts included.
func (s *SnippetService) ListMine(ctx context.Context, userID string, filter repository.SnippetFilter) ([]model.Snippet, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	snippets, err := s.snippets.ListByAuthor(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing snippets for author %s: %w", userID, err)
	}
	return snippets, nil
}

// ListSaved returns the snippets the user has bookmarked.
func (s *SnippetService) ListSaved(ctx context.Context, userID string, filter repository.SnippetFilter) ([]model.Snippet, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	snippets, err := s.snippets.ListSavedBy(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing saved snippets for user %s: %w", userID, err)
	}
	return snippets, nil
}

// GetByID retrieves one snippet with its associations populated.
// Returns apperror.ErrNotFound for an unknown ID.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	return s.snippets.GetByID(ctx, id)
}

// Create validates the input, resolves the selected categories and tags,
// and persists a new snippet owned by authorID.
//
// Resolution is sequential, one lookup per identifier; any identifier that
// doesn't resolve fails the whole operation. That failure is a server
// error, not a validation error — the form UI only offers identifiers that
// exist, so a miss means the client and store disagree.
func (s *SnippetService) Create(ctx context.Context, input SnippetInput, authorID string) (*model.Snippet, error) {
	if authorID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	categories, tags, err := s.resolveSelections(ctx, input.CategoryIDs, input.TagIDs)
	if err != nil {
		s.logger.Error("failed to resolve snippet selections",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	snippet := &model.Snippet{
		Title:       input.Title,
		Description: input.Description,
		Code:        input.Code,
		Status:      model.Status(input.Status),
		AuthorID:    authorID,
		LanguageID:  input.LanguageID,
		Categories:  categories,
		Tags:        tags,
	}

	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", input.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("authorID", authorID),
	)

	return snippet, nil
}

// GetForEdit loads a snippet for the edit form, enforcing ownership.
// Returns ErrNotFound for an unknown ID and ErrForbidden when the acting
// user is not the author.
func (s *SnippetService) GetForEdit(ctx context.Context, id, actingUserID string) (*model.Snippet, error) {
	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.AuthorID != actingUserID {
		return nil, apperror.Forbidden("only the author can edit this snippet")
	}
	return snippet, nil
}

// Update applies an edit submission: full replacement of the mutable
// fields plus an update-timestamp bump.
//
// A snippet that doesn't exist is reported as ErrForbidden, same as a
// non-owner — the submit endpoint never confirms existence to callers who
// couldn't edit the snippet anyway.
//
// The category and tag lists are diffed against the stored ones by
// identifier sequence (order-sensitive); the resulting flags tell the
// repository whether the link tables need rewriting.
func (s *SnippetService) Update(ctx context.Context, input SnippetInput, actingUserID string) error {
	if actingUserID == "" {
		return apperror.Unauthorized("authentication required")
	}
	if err := validateInput(&input); err != nil {
		return err
	}

	categories, tags, err := s.resolveSelections(ctx, input.CategoryIDs, input.TagIDs)
	if err != nil {
		s.logger.Error("failed to resolve snippet selections",
			slog.String("snippetID", input.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	existing, err := s.snippets.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Forbidden("snippet cannot be edited")
		}
		return err
	}
	if existing.AuthorID != actingUserID {
		return apperror.Forbidden("only the author can edit this snippet")
	}

	categoriesChanged := !identitySequenceEqual(existing.Categories, categories)
	tagsChanged := !identitySequenceEqual(existing.Tags, tags)

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Code = input.Code
	existing.Status = model.Status(input.Status)
	existing.LanguageID = input.LanguageID
	existing.Categories = categories
	existing.Tags = tags

	if err := s.snippets.Update(ctx, existing, categoriesChanged, tagsChanged); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", input.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", existing.ID),
		slog.Bool("categoriesChanged", categoriesChanged),
		slog.Bool("tagsChanged", tagsChanged),
	)

	return nil
}

// Delete removes a snippet after verifying ownership. Unknown IDs return
// ErrNotFound; a non-owner gets ErrForbidden and nothing is deleted.
func (s *SnippetService) Delete(ctx context.Context, id, actingUserID string) error {
	if actingUserID == "" {
		return apperror.Unauthorized("authentication required")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.AuthorID != actingUserID {
		return apperror.Forbidden("only the author can delete this snippet")
	}

	if err := s.snippets.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted",
		slog.String("id", id),
		slog.String("userID", actingUserID),
	)
	return nil
}

// ToggleSaved flips the user's bookmark on a snippet: saved becomes
// unsaved and vice versa, exactly once per call.
//
// A failed mutation is reported in the result (Success=false, IsSaved
// still the pre-toggle state) rather than as an error — the endpoint
// answers with that JSON either way. An error is returned only when the
// current state can't even be read.
func (s *SnippetService) ToggleSaved(ctx context.Context, userID, snippetID string) (ToggleResult, error) {
	if userID == "" {
		return ToggleResult{}, apperror.Unauthorized("authentication required")
	}

	isSaved, err := s.snippets.IsSaved(ctx, userID, snippetID)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("checking saved state: %w", err)
	}

	if isSaved {
		if err := s.snippets.RemoveSaved(ctx, userID, snippetID); err != nil {
			s.logger.Error("failed to unsave snippet",
				slog.String("userID", userID),
				slog.String("snippetID", snippetID),
				slog.String("error", err.Error()),
			)
			return ToggleResult{Success: false, IsSaved: true}, nil
		}
		return ToggleResult{Success: true, IsSaved: false}, nil
	}

	if err := s.snippets.AddSaved(ctx, userID, snippetID); err != nil {
		s.logger.Error("failed to save snippet",
			slog.String("userID", userID),
			slog.String("snippetID", snippetID),
			slog.String("error", err.Error()),
		)
		return ToggleResult{Success: false, IsSaved: false}, nil
	}
	return ToggleResult{Success: true, IsSaved: true}, nil
}

// resolveSelections turns category and tag ID arrays into full records
// via one repository lookup per identifier, preserving submission order.
func (s *SnippetService) resolveSelections(ctx context.Context, categoryIDs, tagIDs []string) ([]model.Category, []model.Tag, error) {
	categories := make([]model.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		category, err := s.categories.GetCategoryByID(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving category %s: %w", id, err)
		}
		categories = append(categories, *category)
	}

	tags := make([]model.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tag, err := s.tags.GetTagByID(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving tag %s: %w", id, err)
		}
		tags = append(tags, *tag)
	}

	return categories, tags, nil
}

// validateInput enforces the field-level rules shared by create and edit.
func validateInput(input *SnippetInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if input.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(input.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if input.Code == "" {
		return apperror.ValidationFailed("code", "code is required")
	}
	if len(input.Code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	if input.LanguageID == "" {
		return apperror.ValidationFailed("languageId", "programming language is required")
	}
	if !model.Status(input.Status).Valid() {
		return apperror.ValidationFailed("status", "status must be draft or published")
	}
	return nil
}

// identitySequenceEqual compares two association lists by identifier
// sequence. The comparison is order-sensitive: a reordered list counts
// as a change, which merely triggers one idempotent link-table rewrite.
func identitySequenceEqual[T model.Identifiable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Identity() != b[i].Identity() {
			return false
		}
	}
	return true
}
