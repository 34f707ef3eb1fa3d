package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/model"
	"github.com/sakif/snippets-library/internal/repository"
)

// FilterOptions bundles the full tag, category, and language catalogs.
// Every listing page ships these to the client so the filter UI can be
// populated without extra round trips.
type FilterOptions struct {
	Tags       []model.Tag
	Categories []model.Category
	Languages  []model.ProgrammingLanguage
}

// CatalogService serves the taxonomy catalogs and the typeahead searches,
// and handles ad-hoc tag creation.
type CatalogService struct {
	tags       repository.TagRepository
	categories repository.CategoryRepository
	languages  repository.LanguageRepository
	users      repository.UserRepository
	logger     *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(
	tags repository.TagRepository,
	categories repository.CategoryRepository,
	languages repository.LanguageRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		tags:       tags,
		categories: categories,
		languages:  languages,
		users:      users,
		logger:     logger,
	}
}

// FilterOptions loads all three catalogs, sequentially.
func (s *CatalogService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	tags, err := s.tags.SearchTags(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading tag catalog: %w", err)
	}
	categories, err := s.categories.AllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading category catalog: %w", err)
	}
	languages, err := s.languages.AllLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading language catalog: %w", err)
	}

	return &FilterOptions{
		Tags:       tags,
		Categories: categories,
		Languages:  languages,
	}, nil
}

// SearchTags is the tag typeahead. An empty or whitespace query is a
// validation error and never reaches the data layer.
func (s *CatalogService) SearchTags(ctx context.Context, query string) ([]model.Tag, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperror.ValidationFailed("query", "query cannot be empty")
	}
	return s.tags.SearchTags(ctx, query)
}

// SearchAuthors is the author typeahead. Unlike SearchTags, an empty
// query is allowed and matches every author.
func (s *CatalogService) SearchAuthors(ctx context.Context, query string) ([]model.Author, error) {
	return s.users.SearchAuthors(ctx, query)
}

// AddTag creates a tag with the given name if it doesn't already exist
// and returns it. Empty and whitespace-only names are rejected before the
// data layer is consulted.
func (s *CatalogService) AddTag(ctx context.Context, name string) (*model.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.ValidationFailed("name", "tag name cannot be empty")
	}

	tag, err := s.tags.GetOrCreateTag(ctx, name)
	if err != nil {
		s.logger.Error("failed to add tag",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding tag %q: %w", name, err)
	}

	s.logger.Info("tag ensured", slog.String("id", tag.ID), slog.String("name", tag.Name))
	return tag, nil
}
