// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a log of retrievals and commits in SQLite, so
// past queries and the keys committed from them can be reviewed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the schema
// and parent directory if they do not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS retrievals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			backends TEXT NOT NULL,
			fetched INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			duplicates INTEGER NOT NULL,
			parse_errors INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS commits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			retrieval_id INTEGER NOT NULL REFERENCES retrievals(id) ON DELETE CASCADE,
			keys TEXT NOT NULL,
			target TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commits_retrieval ON commits(retrieval_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Retrieval is one logged query with its statistics.
type Retrieval struct {
	ID          int64
	Query       string
	Backends    []string
	Fetched     int
	Entries     int
	Duplicates  int
	ParseErrors int
	CreatedAt   time.Time
	Commits     []Commit
}

// Commit is one logged commit of entries from a retrieval.
type Commit struct {
	Keys      []string
	Target    string
	CreatedAt time.Time
}

// RecordRetrieval logs one completed retrieval and returns its row id.
func (s *Store) RecordRetrieval(ctx context.Context, query string, backends []string, fetched, entries, duplicates, parseErrors int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO retrievals (query, backends, fetched, entries, duplicates, parse_errors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		query, strings.Join(backends, ","), fetched, entries, duplicates, parseErrors,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("recording retrieval: %w", err)
	}
	return res.LastInsertId()
}

// RecordCommit logs the keys committed from a retrieval. A target of "-"
// means the entries were returned inline rather than appended to a file.
func (s *Store) RecordCommit(ctx context.Context, retrievalID int64, keys []string, target string) error {
	if target == "" {
		target = "-"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commits (retrieval_id, keys, target, created_at) VALUES (?, ?, ?, ?)`,
		retrievalID, strings.Join(keys, ","), target, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording commit: %w", err)
	}
	return nil
}

// List returns the most recent retrievals, newest first, with their commits.
func (s *Store) List(ctx context.Context, limit int) ([]Retrieval, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, backends, fetched, entries, duplicates, parse_errors, created_at
		 FROM retrievals ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing retrievals: %w", err)
	}
	defer rows.Close()

	var out []Retrieval
	for rows.Next() {
		var (
			r        Retrieval
			backends string
			created  string
		)
		if err := rows.Scan(&r.ID, &r.Query, &backends, &r.Fetched, &r.Entries, &r.Duplicates, &r.ParseErrors, &created); err != nil {
			return nil, fmt.Errorf("scanning retrieval: %w", err)
		}
		if backends != "" {
			r.Backends = strings.Split(backends, ",")
		}
		if t, parseErr := time.Parse(time.RFC3339, created); parseErr == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating retrievals: %w", err)
	}

	for i := range out {
		commits, err := s.commitsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Commits = commits
	}
	return out, nil
}

func (s *Store) commitsFor(ctx context.Context, retrievalID int64) ([]Commit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keys, target, created_at FROM commits WHERE retrieval_id = ? ORDER BY id`, retrievalID)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}
	defer rows.Close()

	var out []Commit
	for rows.Next() {
		var (
			c       Commit
			keys    string
			created string
		)
		if err := rows.Scan(&keys, &c.Target, &created); err != nil {
			return nil, fmt.Errorf("scanning commit: %w", err)
		}
		if keys != "" {
			c.Keys = strings.Split(keys, ",")
		}
		if t, parseErr := time.Parse(time.RFC3339, created); parseErr == nil {
			c.CreatedAt = t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Clear deletes all history rows.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"commits", "retrievals"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}
