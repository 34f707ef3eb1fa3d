// Package repository declares the data-access interfaces consumed by the
// service layer. The concrete implementation lives in repository/sqlite;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/snippets-library/internal/model"
)

// SnippetFilter narrows a snippet listing.
//
// Each ID slice is disjunctive within itself (any match qualifies) and
// conjunctive with the other dimensions. A nil or empty slice imposes no
// constraint. SortOrder is an opaque token; the data layer whitelists the
// values it understands and falls back to newest-first for anything else.
type SnippetFilter struct {
	AuthorIDs   []string
	CategoryIDs []string
	TagIDs      []string
	LanguageIDs []string
	SortOrder   string
}

// SnippetRepository is the persistence contract for snippets and the
// per-user saved (bookmark) relation.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)

	// ListPublished returns published snippets matching the filter.
	ListPublished(ctx context.Context, filter SnippetFilter) ([]model.Snippet, error)
	// ListByAuthor returns all of one author's snippets (drafts included)
	// matching the filter.
	ListByAuthor(ctx context.Context, authorID string, filter SnippetFilter) ([]model.Snippet, error)
	// ListSavedBy returns the snippets a user has bookmarked, filtered.
	ListSavedBy(ctx context.Context, userID string, filter SnippetFilter) ([]model.Snippet, error)

	// Update overwrites the snippet's mutable fields. The changed flags
	// report whether the category/tag association lists differ from the
	// stored ones; the link tables are rewritten only when flagged.
	Update(ctx context.Context, snippet *model.Snippet, categoriesChanged, tagsChanged bool) error
	Delete(ctx context.Context, id string) error

	IsSaved(ctx context.Context, userID, snippetID string) (bool, error)
	AddSaved(ctx context.Context, userID, snippetID string) error
	RemoveSaved(ctx context.Context, userID, snippetID string) error
}

// TagRepository manages the user-extensible tag catalog.
//
// Method names carry the entity (SearchTags, GetTagByID) because the
// sqlite.DB type implements every repository interface on one receiver.
type TagRepository interface {
	// SearchTags returns tags whose name contains the query
	// (case-insensitive). An empty query returns the full catalog.
	SearchTags(ctx context.Context, query string) ([]model.Tag, error)
	GetTagByID(ctx context.Context, id string) (*model.Tag, error)
	// GetOrCreateTag returns the tag with the exact name, creating it
	// first if it doesn't exist.
	GetOrCreateTag(ctx context.Context, name string) (*model.Tag, error)
}

// CategoryRepository serves the seeded category catalog.
type CategoryRepository interface {
	AllCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
}

// LanguageRepository serves the seeded programming-language catalog.
type LanguageRepository interface {
	AllLanguages(ctx context.Context) ([]model.ProgrammingLanguage, error)
	GetLanguageByID(ctx context.Context, id string) (*model.ProgrammingLanguage, error)
}

// UserRepository manages accounts and the author typeahead.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// SearchAuthors returns authors whose login contains the query
	// (case-insensitive). An empty query returns all authors.
	SearchAuthors(ctx context.Context, query string) ([]model.Author, error)
}
