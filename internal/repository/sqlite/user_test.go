package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/model"
)

func TestUpsert_InsertThenUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &model.User{GitHubID: 4242, Login: "alice", AvatarURL: "https://example.com/a.png"}
	if err := db.Upsert(ctx, user); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("Upsert() did not assign an internal ID")
	}
	firstID := user.ID

	// Same GitHub identity with changed profile data: the internal ID
	// must survive, because snippets reference it.
	renamed := &model.User{GitHubID: 4242, Login: "alice-renamed"}
	if err := db.Upsert(ctx, renamed); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if renamed.ID != firstID {
		t.Errorf("internal ID changed on re-upsert: %q vs %q", renamed.ID, firstID)
	}

	stored, err := db.GetUserByID(ctx, firstID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if stored.Login != "alice-renamed" {
		t.Errorf("Login = %q, want refreshed %q", stored.Login, "alice-renamed")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSearchAuthors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i, login := range []string{"alice", "albert", "bob"} {
		user := &model.User{GitHubID: int64(9000 + i), Login: login}
		if err := db.Upsert(ctx, user); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	// Case-insensitive substring match on login.
	authors, err := db.SearchAuthors(ctx, "AL")
	if err != nil {
		t.Fatalf("SearchAuthors() error = %v", err)
	}
	if len(authors) != 2 {
		t.Errorf("SearchAuthors(AL) returned %d authors, want 2", len(authors))
	}

	// Empty query matches everyone.
	all, err := db.SearchAuthors(ctx, "")
	if err != nil {
		t.Fatalf("SearchAuthors() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("SearchAuthors(\"\") returned %d authors, want 3", len(all))
	}
}
