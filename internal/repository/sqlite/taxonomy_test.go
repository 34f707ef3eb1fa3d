package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippets-library/internal/apperror"
)

func TestSeededCatalogs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	languages, err := db.AllLanguages(ctx)
	if err != nil {
		t.Fatalf("AllLanguages() error = %v", err)
	}
	if len(languages) == 0 {
		t.Fatal("language catalog is empty after migration")
	}

	python, err := db.GetLanguageByID(ctx, "python")
	if err != nil {
		t.Fatalf("GetLanguageByID(python) error = %v", err)
	}
	if python.Name != "Python" {
		t.Errorf("Name = %q, want %q", python.Name, "Python")
	}

	categories, err := db.AllCategories(ctx)
	if err != nil {
		t.Fatalf("AllCategories() error = %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("category catalog is empty after migration")
	}
}

func TestGetLanguageByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetLanguageByID(context.Background(), "brainfuck")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetCategoryByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetCategoryByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetOrCreateTag(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.GetOrCreateTag(ctx, "memoization")
	if err != nil {
		t.Fatalf("GetOrCreateTag() error = %v", err)
	}
	if first.ID == "" {
		t.Error("GetOrCreateTag() did not assign an ID")
	}

	// A second call with the same name returns the same tag.
	second, err := db.GetOrCreateTag(ctx, "memoization")
	if err != nil {
		t.Fatalf("GetOrCreateTag() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("GetOrCreateTag() created a duplicate: %q vs %q", first.ID, second.ID)
	}
}

func TestSearchTags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"sorting", "searching", "graphs"} {
		if _, err := db.GetOrCreateTag(ctx, name); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	// Case-insensitive substring match.
	tags, err := db.SearchTags(ctx, "SEARCH")
	if err != nil {
		t.Fatalf("SearchTags() error = %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "searching" {
		t.Errorf("SearchTags(SEARCH) = %v, want [searching]", tags)
	}

	// Empty query returns the whole catalog (used for filter options).
	all, err := db.SearchTags(ctx, "")
	if err != nil {
		t.Fatalf("SearchTags() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("SearchTags(\"\") returned %d tags, want 3", len(all))
	}
}

func TestGetTagByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetTagByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
