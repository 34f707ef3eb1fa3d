package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/model"
	"github.com/sakif/snippets-library/internal/repository"
)

// Compile-time check that *DB implements repository.SnippetRepository.
var _ repository.SnippetRepository = (*DB)(nil)

// sortClauses whitelists the sort tokens the listing endpoints accept.
// The token arrives straight from the query string, so it must never be
// interpolated into SQL — unknown tokens fail closed to newest-first.
var sortClauses = map[string]string{
	"newest":     "s.created_at DESC",
	"oldest":     "s.created_at ASC",
	"title":      "s.title COLLATE NOCASE ASC",
	"title_desc": "s.title COLLATE NOCASE DESC",
}

const defaultSortClause = "s.created_at DESC"

// Create inserts a snippet and its category/tag associations.
// The caller's struct is updated in place with the generated ID and
// timestamps.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, title, description, code, status, author_id, language_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Description,
		snippet.Code,
		string(snippet.Status),
		snippet.AuthorID,
		snippet.LanguageID,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	if err := db.writeCategories(ctx, snippet.ID, snippet.Categories); err != nil {
		return err
	}
	if err := db.writeTags(ctx, snippet.ID, snippet.Tags); err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a single snippet with its categories and tags loaded
// in stored order. Returns apperror.ErrNotFound for an unknown ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var s model.Snippet
	var status string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, description, code, status, author_id, language_id, created_at, updated_at
		 FROM snippets
		 WHERE id = ?`,
		id,
	).Scan(
		&s.ID, &s.Title, &s.Description, &s.Code, &status,
		&s.AuthorID, &s.LanguageID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}
	s.Status = model.Status(status)

	if err := db.loadAssociations(ctx, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// ListPublished returns published snippets matching the filter.
func (db *DB) ListPublished(ctx context.Context, filter repository.SnippetFilter) ([]model.Snippet, error) {
	return db.list(ctx, `s.status = 'published'`, nil, filter)
}

// ListByAuthor returns all of one author's snippets, drafts included.
func (db *DB) ListByAuthor(ctx context.Context, authorID string, filter repository.SnippetFilter) ([]model.Snippet, error) {
	return db.list(ctx, `s.author_id = ?`, []any{authorID}, filter)
}

// ListSavedBy returns the snippets a user has bookmarked.
func (db *DB) ListSavedBy(ctx context.Context, userID string, filter repository.SnippetFilter) ([]model.Snippet, error) {
	return db.list(ctx,
		`EXISTS (SELECT 1 FROM saved_snippets sv WHERE sv.snippet_id = s.id AND sv.user_id = ?)`,
		[]any{userID}, filter)
}

// list builds and runs the filtered listing query. The scope clause sets
// the base visibility (published / by author / saved-by); filter
// dimensions are ANDed together, and within a dimension the IN clause
// gives OR semantics. Empty dimensions add no clause at all.
func (db *DB) list(ctx context.Context, scope string, scopeArgs []any, filter repository.SnippetFilter) ([]model.Snippet, error) {
	where := []string{scope}
	args := append([]any{}, scopeArgs...)

	if len(filter.AuthorIDs) > 0 {
		where = append(where, fmt.Sprintf(`s.author_id IN (%s)`, placeholders(len(filter.AuthorIDs))))
		args = appendStrings(args, filter.AuthorIDs)
	}
	if len(filter.LanguageIDs) > 0 {
		where = append(where, fmt.Sprintf(`s.language_id IN (%s)`, placeholders(len(filter.LanguageIDs))))
		args = appendStrings(args, filter.LanguageIDs)
	}
	if len(filter.CategoryIDs) > 0 {
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM snippet_categories sc
			         WHERE sc.snippet_id = s.id AND sc.category_id IN (%s))`,
			placeholders(len(filter.CategoryIDs))))
		args = appendStrings(args, filter.CategoryIDs)
	}
	if len(filter.TagIDs) > 0 {
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM snippet_tags st
			         WHERE st.snippet_id = s.id AND st.tag_id IN (%s))`,
			placeholders(len(filter.TagIDs))))
		args = appendStrings(args, filter.TagIDs)
	}

	orderBy, ok := sortClauses[filter.SortOrder]
	if !ok {
		orderBy = defaultSortClause
	}

	query := fmt.Sprintf(
		`SELECT s.id, s.title, s.description, s.code, s.status, s.author_id, s.language_id, s.created_at, s.updated_at
		 FROM snippets s
		 WHERE %s
		 ORDER BY %s`,
		strings.Join(where, " AND "), orderBy)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := []model.Snippet{}
	for rows.Next() {
		var s model.Snippet
		var status string
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Code, &status,
			&s.AuthorID, &s.LanguageID, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		s.Status = model.Status(status)
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	for i := range snippets {
		if err := db.loadAssociations(ctx, &snippets[i]); err != nil {
			return nil, err
		}
	}

	return snippets, nil
}

// Update overwrites the snippet's mutable fields and stamps updated_at.
// The link tables are rewritten only when the corresponding changed flag
// is set; an unchanged list costs no writes.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet, categoriesChanged, tagsChanged bool) error {
	snippet.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, description = ?, code = ?, status = ?, language_id = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Description,
		snippet.Code,
		string(snippet.Status),
		snippet.LanguageID,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	if categoriesChanged {
		if _, err := db.conn.ExecContext(ctx,
			`DELETE FROM snippet_categories WHERE snippet_id = ?`, snippet.ID,
		); err != nil {
			return fmt.Errorf("sqlite: clearing snippet categories: %w", err)
		}
		if err := db.writeCategories(ctx, snippet.ID, snippet.Categories); err != nil {
			return err
		}
	}
	if tagsChanged {
		if _, err := db.conn.ExecContext(ctx,
			`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippet.ID,
		); err != nil {
			return fmt.Errorf("sqlite: clearing snippet tags: %w", err)
		}
		if err := db.writeTags(ctx, snippet.ID, snippet.Tags); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a snippet. The link and saved rows cascade with it.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

// IsSaved reports whether the user has bookmarked the snippet.
func (db *DB) IsSaved(ctx context.Context, userID, snippetID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM saved_snippets WHERE user_id = ? AND snippet_id = ?`,
		userID, snippetID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking saved snippet: %w", err)
	}
	return count > 0, nil
}

// AddSaved bookmarks a snippet for the user. Saving twice is a no-op.
func (db *DB) AddSaved(ctx context.Context, userID, snippetID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO saved_snippets (user_id, snippet_id, created_at)
		 VALUES (?, ?, ?)`,
		userID, snippetID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving snippet %s for user %s: %w", snippetID, userID, err)
	}
	return nil
}

// RemoveSaved drops the user's bookmark. Removing a missing bookmark is a
// no-op.
func (db *DB) RemoveSaved(ctx context.Context, userID, snippetID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM saved_snippets WHERE user_id = ? AND snippet_id = ?`,
		userID, snippetID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unsaving snippet %s for user %s: %w", snippetID, userID, err)
	}
	return nil
}

// loadAssociations fills the snippet's Categories and Tags in stored order.
func (db *DB) loadAssociations(ctx context.Context, s *model.Snippet) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.name
		 FROM snippet_categories sc
		 JOIN categories c ON c.id = sc.category_id
		 WHERE sc.snippet_id = ?
		 ORDER BY sc.position`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading snippet categories: %w", err)
	}
	defer rows.Close()

	s.Categories = []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		s.Categories = append(s.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating categories: %w", err)
	}

	tagRows, err := db.conn.QueryContext(ctx,
		`SELECT t.id, t.name
		 FROM snippet_tags st
		 JOIN tags t ON t.id = st.tag_id
		 WHERE st.snippet_id = ?
		 ORDER BY st.position`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading snippet tags: %w", err)
	}
	defer tagRows.Close()

	s.Tags = []model.Tag{}
	for tagRows.Next() {
		var t model.Tag
		if err := tagRows.Scan(&t.ID, &t.Name); err != nil {
			return fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		s.Tags = append(s.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return nil
}

func (db *DB) writeCategories(ctx context.Context, snippetID string, categories []model.Category) error {
	for i, c := range categories {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO snippet_categories (snippet_id, category_id, position) VALUES (?, ?, ?)`,
			snippetID, c.ID, i,
		); err != nil {
			return fmt.Errorf("sqlite: linking category %s: %w", c.ID, err)
		}
	}
	return nil
}

func (db *DB) writeTags(ctx context.Context, snippetID string, tags []model.Tag) error {
	for i, t := range tags {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, tag_id, position) VALUES (?, ?, ?)`,
			snippetID, t.ID, i,
		); err != nil {
			return fmt.Errorf("sqlite: linking tag %s: %w", t.ID, err)
		}
	}
	return nil
}

// placeholders returns "?, ?, ?" with n markers for an IN clause.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func appendStrings(args []any, values []string) []any {
	for _, v := range values {
		args = append(args, v)
	}
	return args
}
