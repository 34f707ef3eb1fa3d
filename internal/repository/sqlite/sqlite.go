// Package sqlite implements the repository interfaces on an embedded
// SQLite database.
//
// We use modernc.org/sqlite (a pure-Go translation of SQLite) rather than
// the CGo-based mattn driver, so the server cross-compiles to a single
// static binary. The database is one file on disk; ":memory:" gives an
// ephemeral database for tests.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface in internal/repository. One value serves them all — the
// server owns it and closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// WAL mode lets reads proceed while a write is in flight, which matters
// for a web server. Foreign keys are off by default in SQLite; we turn
// them on because the snippet link tables rely on ON DELETE CASCADE.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema and seeds the fixed catalogs. Every statement
// is idempotent (CREATE IF NOT EXISTS / INSERT OR IGNORE), so this is safe
// to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS languages (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS categories (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS snippets (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			code        TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'draft',
			author_id   TEXT NOT NULL REFERENCES users(id),
			language_id TEXT NOT NULL REFERENCES languages(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_author_id ON snippets(author_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_status ON snippets(status);
		CREATE INDEX IF NOT EXISTS idx_snippets_created_at ON snippets(created_at);

		CREATE TABLE IF NOT EXISTS snippet_categories (
			snippet_id  TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			category_id TEXT NOT NULL REFERENCES categories(id),
			position    INTEGER NOT NULL,
			PRIMARY KEY (snippet_id, category_id)
		);

		CREATE TABLE IF NOT EXISTS snippet_tags (
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			tag_id     TEXT NOT NULL REFERENCES tags(id),
			position   INTEGER NOT NULL,
			PRIMARY KEY (snippet_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS saved_snippets (
			user_id    TEXT NOT NULL REFERENCES users(id),
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, snippet_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return db.seedCatalogs()
}

// seedCatalogs populates the fixed language and category catalogs. Slug
// IDs keep the seeds stable across databases (a snippet created against
// one deployment references the same "python" row in another).
func (db *DB) seedCatalogs() error {
	languages := [][2]string{
		{"python", "Python"},
		{"javascript", "JavaScript"},
		{"typescript", "TypeScript"},
		{"go", "Go"},
		{"csharp", "C#"},
		{"java", "Java"},
		{"cpp", "C++"},
		{"rust", "Rust"},
		{"ruby", "Ruby"},
		{"sql", "SQL"},
		{"bash", "Bash"},
	}
	for _, l := range languages {
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO languages (id, name) VALUES (?, ?)`, l[0], l[1],
		); err != nil {
			return fmt.Errorf("seeding language %s: %w", l[0], err)
		}
	}

	categories := [][2]string{
		{"algorithms", "Algorithms"},
		{"data-structures", "Data Structures"},
		{"web", "Web"},
		{"database", "Database"},
		{"networking", "Networking"},
		{"testing", "Testing"},
		{"devops", "DevOps"},
		{"utilities", "Utilities"},
	}
	for _, c := range categories {
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO categories (id, name) VALUES (?, ?)`, c[0], c[1],
		); err != nil {
			return fmt.Errorf("seeding category %s: %w", c[0], err)
		}
	}

	return nil
}
