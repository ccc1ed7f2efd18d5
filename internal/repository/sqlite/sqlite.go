// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. It is the
// default store: set DATABASE_URL to switch to the postgres package instead.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code, so no C compiler is needed, works everywhere Go works.
//
// ONE DB, THREE REPOSITORIES:
// DB owns the connection pool and the schema. The ledgers each get a small
// typed view over it (Votes, Comments, Profiles) so that method names like
// Create and Delete don't collide.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Blank import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the repositories.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database and runs migrations.
//
// dbPath examples:
//   - "data/pawpoll.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (great for tests, lost on close)
//
// SINGLE CONNECTION:
// The pool is capped at one open connection. SQLite allows one writer at a
// time anyway, so this turns "database is locked" errors under concurrent
// requests into plain queueing inside database/sql. It is also required for
// ":memory:", where every new connection would otherwise see its own empty
// database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight (file databases only;
	// ":memory:" silently keeps its own journal mode).
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
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

// Ping checks that the database still answers. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Votes returns the vote repository backed by this database.
func (db *DB) Votes() *VoteDB {
	return &VoteDB{conn: db.conn}
}

// Comments returns the comment repository backed by this database.
func (db *DB) Comments() *CommentDB {
	return &CommentDB{conn: db.conn}
}

// Profiles returns the profile repository backed by this database.
func (db *DB) Profiles() *ProfileDB {
	return &ProfileDB{conn: db.conn}
}

// migrate creates the schema.
//
// CREATE ... IF NOT EXISTS keeps this safe to run on every start. The
// PostgreSQL store uses versioned goose migrations instead; the two schemas
// must stay equivalent.
func (db *DB) migrate() error {
	// One vote per (place, user, question). The UNIQUE index is what makes
	// two racing submissions for the same triple end in exactly one row.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS votes (
			id            TEXT PRIMARY KEY,
			place_id      TEXT NOT NULL,
			place_name    TEXT NOT NULL DEFAULT '',
			place_address TEXT NOT NULL DEFAULT '',
			vote_type     TEXT NOT NULL CHECK (vote_type IN ('yes', 'no')),
			question_type TEXT NOT NULL CHECK (question_type IN ('dog', 'pet')),
			user_email    TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_place_user_question
			ON votes(place_id, user_email, question_type);
		CREATE INDEX IF NOT EXISTS idx_votes_user_email ON votes(user_email);
	`)
	if err != nil {
		return fmt.Errorf("creating votes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id            TEXT PRIMARY KEY,
			place_id      TEXT NOT NULL,
			place_name    TEXT NOT NULL,
			place_address TEXT NOT NULL,
			comment_text  TEXT NOT NULL,
			user_email    TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_place_id ON comments(place_id);
		CREATE INDEX IF NOT EXISTS idx_comments_user_email ON comments(user_email);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			email        TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	return nil
}
