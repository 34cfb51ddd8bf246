// Package store is the owner-scoped SQLite persistence layer for
// career-history nodes: point CRUD plus recursive tree traversal. It
// owns no business rules beyond ownership scoping, except that Move
// re-validates edge and cycle safety inside its own transaction (see
// move.go).
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// maxTraversalDepth bounds every recursive query. Write-time
// invariants keep forests acyclic; the cap guarantees termination over
// externally mutated data anyway.
const maxTraversalDepth = 100

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	parent_id  TEXT REFERENCES nodes(id) ON DELETE SET NULL,
	meta       TEXT NOT NULL DEFAULT '{}',
	owner_id   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_owner ON nodes(owner_id);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);
CREATE INDEX IF NOT EXISTS idx_nodes_owner_parent ON nodes(owner_id, parent_id);
`

// Store wraps a SQLite database connection.
type Store struct {
	conn *sql.DB
	Path string
}

// Open opens (creating if needed) a SQLite database with WAL mode and
// foreign keys enabled, and bootstraps the nodes schema. Transactions
// take the write lock up front (_txlock=immediate) so check-then-write
// sequences inside one transaction cannot interleave.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries.
func (s *Store) Conn() *sql.DB {
	return s.conn
}
