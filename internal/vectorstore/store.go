package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Metadata is the per-entry provenance persisted alongside each vector.
type Metadata struct {
	FilePath   string
	Language   string
	ChunkIndex int
	ChunkKind  string
	StartLine  int
	EndLine    int
}

// Entry is one persisted chunk: vector, text, and metadata.
type Entry struct {
	ID      string
	Vector  []float32
	Content string
	Meta    Metadata
}

// SearchResult is one similarity hit. Distance is 1 − cosine similarity,
// so 0 means identical direction.
type SearchResult struct {
	Content  string
	Meta     Metadata
	Distance float64
}

// Filter restricts a search to entries whose metadata it accepts.
// A nil Filter accepts everything.
type Filter func(Metadata) bool

// Store keeps one named vector collection per repository in a single sqlite
// database under its directory. Writes are serialized through a mutex and a
// single connection; concurrent reads of different collections are
// independent.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the collection store rooted at dir.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, "collections.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open collection db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	pragmas := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
	}
	for _, stmt := range pragmas {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init collection db: %w", err)
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			repository_id TEXT NOT NULL,
			dimensions INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			file_path TEXT NOT NULL,
			language TEXT,
			chunk_index INTEGER,
			chunk_kind TEXT,
			start_line INTEGER,
			end_line INTEGER,
			content TEXT,
			vector TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_collection ON entries (collection);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init collection db: %w", err)
		}
	}
	return nil
}

// CollectionName derives the deterministic collection name for a repository
// identifier.
func CollectionName(repoID string) string {
	return "repo_" + strings.ReplaceAll(repoID, "-", "_")
}

// Create makes a fresh empty collection, replacing any prior collection of
// the same name together with its entries. Never a silent merge.
func (s *Store) Create(ctx context.Context, name, repoID string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE collection = ?`, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collections (name, repository_id, dimensions, created_at) VALUES (?, ?, ?, strftime('%s','now'))`,
		name, repoID, dimensions,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Delete removes a collection and its entries. Deleting a collection that
// does not exist is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE collection = ?`, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Exists reports whether a collection of that name has been created.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM collections WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert persists entries in the given order within one transaction.
func (s *Store) Insert(ctx context.Context, name string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries
		(id, collection, file_path, language, chunk_index, chunk_kind, start_line, end_line, content, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		vectorJSON, err := encodeVector(entry.Vector)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			entry.ID, name,
			entry.Meta.FilePath, entry.Meta.Language, entry.Meta.ChunkIndex, entry.Meta.ChunkKind,
			entry.Meta.StartLine, entry.Meta.EndLine,
			entry.Content, vectorJSON,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of entries in a collection; zero when the
// collection does not exist.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM entries WHERE collection = ?`, name).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
