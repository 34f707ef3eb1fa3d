package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/model"
)

type mockUserRepo struct {
	users map[string]model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users: map[string]model.User{
			"user-a": {ID: "user-a", GitHubID: 1001, Login: "alice"},
			"user-b": {ID: "user-b", GitHubID: 1002, Login: "bob"},
		},
	}
}

// Upsert mimics the real repository: keyed by GitHub ID, the internal
// ID survives re-upserts and is assigned on first insert.
func (m *mockUserRepo) Upsert(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.GitHubID == user.GitHubID {
			user.ID = existing.ID
			m.users[user.ID] = *user
			return nil
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (m *mockUserRepo) SearchAuthors(_ context.Context, query string) ([]model.Author, error) {
	result := []model.Author{}
	for _, u := range m.users {
		if query == "" || strings.Contains(u.Login, query) {
			result = append(result, model.Author{ID: u.ID, Login: u.Login})
		}
	}
	return result, nil
}

func newTestCatalogService(t *testing.T) *CatalogService {
	t.Helper()
	catalogs := newMockCatalogRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewCatalogService(catalogs, catalogs, catalogs, newMockUserRepo(), logger)
}

func TestFilterOptions(t *testing.T) {
	svc := newTestCatalogService(t)

	options, err := svc.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("FilterOptions() error = %v", err)
	}

	if len(options.Tags) == 0 {
		t.Error("expected tags in filter options")
	}
	if len(options.Categories) == 0 {
		t.Error("expected categories in filter options")
	}
	if len(options.Languages) == 0 {
		t.Error("expected languages in filter options")
	}
}

func TestSearchTags_EmptyQueryRejected(t *testing.T) {
	svc := newTestCatalogService(t)

	for _, query := range []string{"", "   "} {
		_, err := svc.SearchTags(context.Background(), query)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("SearchTags(%q) error = %v, want ErrValidation", query, err)
		}
	}
}

func TestSearchTags_Match(t *testing.T) {
	svc := newTestCatalogService(t)

	tags, err := svc.SearchTags(context.Background(), "sort")
	if err != nil {
		t.Fatalf("SearchTags() error = %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "sorting" {
		t.Errorf("SearchTags() = %v, want [sorting]", tags)
	}
}

func TestSearchAuthors_EmptyQueryAllowed(t *testing.T) {
	svc := newTestCatalogService(t)

	authors, err := svc.SearchAuthors(context.Background(), "")
	if err != nil {
		t.Fatalf("SearchAuthors() error = %v", err)
	}
	if len(authors) != 2 {
		t.Errorf("got %d authors, want 2", len(authors))
	}
}

func TestAddTag_EmptyNameRejected(t *testing.T) {
	svc := newTestCatalogService(t)

	_, err := svc.AddTag(context.Background(), "  ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAddTag_ReturnsExisting(t *testing.T) {
	svc := newTestCatalogService(t)

	first, err := svc.AddTag(context.Background(), "memoization")
	if err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	second, err := svc.AddTag(context.Background(), "memoization")
	if err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("AddTag() created a duplicate: %q vs %q", first.ID, second.ID)
	}
}
