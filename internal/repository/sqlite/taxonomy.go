package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/snippets-library/internal/apperror"
	"github.com/sakif/snippets-library/internal/model"
	"github.com/sakif/snippets-library/internal/repository"
)

// compile-time checks for the taxonomy interfaces
var (
	_ repository.TagRepository      = (*DB)(nil)
	_ repository.CategoryRepository = (*DB)(nil)
	_ repository.LanguageRepository = (*DB)(nil)
)

// SearchTags returns tags whose name contains the query,
// case-insensitively. An empty query returns the whole catalog — the
// listing pages use that to populate the filter UI.
func (db *DB) SearchTags(ctx context.Context, query string) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM tags
		 WHERE name LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY name COLLATE NOCASE`,
		strings.TrimSpace(query),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}

// GetTagByID returns the tag with the given ID, or apperror.ErrNotFound.
func (db *DB) GetTagByID(ctx context.Context, id string) (*model.Tag, error) {
	var t model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag", id)
		}
		return nil, fmt.Errorf("sqlite: getting tag %s: %w", id, err)
	}
	return &t, nil
}

// GetOrCreateTag returns the tag with the exact (trimmed) name, inserting
// it first when missing. The UNIQUE constraint on name makes the insert
// race safe: a concurrent insert loses to OR IGNORE and the follow-up
// select picks up the winner's row.
func (db *DB) GetOrCreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)

	if _, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO tags (id, name) VALUES (?, ?)`,
		xid.New().String(), name,
	); err != nil {
		return nil, fmt.Errorf("sqlite: inserting tag %q: %w", name, err)
	}

	var t model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ?`, name,
	).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading back tag %q: %w", name, err)
	}

	return &t, nil
}

// AllCategories returns the seeded category catalog, name-ordered.
func (db *DB) AllCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM categories ORDER BY name COLLATE NOCASE`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategoryByID returns one category, or apperror.ErrNotFound.
func (db *DB) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %s: %w", id, err)
	}
	return &c, nil
}

// AllLanguages returns the seeded programming-language catalog.
func (db *DB) AllLanguages(ctx context.Context) ([]model.ProgrammingLanguage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM languages ORDER BY name COLLATE NOCASE`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing languages: %w", err)
	}
	defer rows.Close()

	languages := []model.ProgrammingLanguage{}
	for rows.Next() {
		var l model.ProgrammingLanguage
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning language row: %w", err)
		}
		languages = append(languages, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating languages: %w", err)
	}

	return languages, nil
}

// GetLanguageByID returns one language, or apperror.ErrNotFound.
func (db *DB) GetLanguageByID(ctx context.Context, id string) (*model.ProgrammingLanguage, error) {
	var l model.ProgrammingLanguage
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM languages WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("language", id)
		}
		return nil, fmt.Errorf("sqlite: getting language %s: %w", id, err)
	}
	return &l, nil
}
