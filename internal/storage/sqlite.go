// Package storage persists pattern embeddings in SQLite so restarts can skip re-encoding
// catalog patterns that were already embedded by the same model.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/vector"
)

// maxQueryParams keeps IN (...) lists under SQLite's default host parameter limit.
const maxQueryParams = 500

// SQLiteStorage stores embeddings keyed by (model, text).
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// ModelStats summarizes stored vectors for one model key.
type ModelStats struct {
	Model      string `json:"model"`
	Count      int64  `json:"count"`
	Dimensions int    `json:"dimensions"`
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		model TEXT NOT NULL,
		text TEXT NOT NULL,
		dims INTEGER NOT NULL,
		vector BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (model, text)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// GetEmbeddings returns the stored vectors for texts under model. Texts without a stored
// vector are absent from the result.
func (s *SQLiteStorage) GetEmbeddings(ctx context.Context, model string, texts []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(texts))
	for start := 0; start < len(texts); start += maxQueryParams {
		end := start + maxQueryParams
		if end > len(texts) {
			end = len(texts)
		}
		if err := s.getChunk(ctx, model, texts[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStorage) getChunk(ctx context.Context, model string, texts []string, out map[string][]float32) error {
	if len(texts) == 0 {
		return nil
	}
	args := make([]any, 0, len(texts)+1)
	args = append(args, model)
	for _, t := range texts {
		args = append(args, t)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(texts)), ",")
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, dims, vector FROM embeddings WHERE model = ? AND text IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			text string
			dims int
			blob []byte
		)
		if err := rows.Scan(&text, &dims, &blob); err != nil {
			return fmt.Errorf("failed to scan embedding: %w", err)
		}
		vec, err := vector.DecodeFloat32(blob)
		if err != nil {
			return fmt.Errorf("embedding for %q: %w", text, err)
		}
		if len(vec) != dims {
			return fmt.Errorf("embedding for %q has %d values, expected %d", text, len(vec), dims)
		}
		out[text] = vec
	}
	return rows.Err()
}

// PutEmbeddings upserts vectors for texts under model in one transaction.
func (s *SQLiteStorage) PutEmbeddings(ctx context.Context, model string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("texts and vectors length mismatch: %d != %d", len(texts), len(vectors))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (model, text, dims, vector, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(model, text) DO UPDATE SET dims = excluded.dims, vector = excluded.vector, created_at = excluded.created_at`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, text := range texts {
		if _, err := stmt.ExecContext(ctx, model, text, len(vectors[i]), vector.EncodeFloat32(vectors[i]), now); err != nil {
			return fmt.Errorf("failed to store embedding for %q: %w", text, err)
		}
	}
	return tx.Commit()
}

// Stats returns per-model counts, ordered by model.
func (s *SQLiteStorage) Stats(ctx context.Context) ([]ModelStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, COUNT(*), MAX(dims) FROM embeddings GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()
	var out []ModelStats
	for rows.Next() {
		var st ModelStats
		if err := rows.Scan(&st.Model, &st.Count, &st.Dimensions); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Count returns the total number of stored vectors.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n)
	return n, err
}

// DeleteModel removes every vector stored under model, or all vectors when model is empty.
// It returns the number of rows removed.
func (s *SQLiteStorage) DeleteModel(ctx context.Context, model string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if model == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM embeddings`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE model = ?`, model)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete embeddings: %w", err)
	}
	return res.RowsAffected()
}

// SizeBytes returns the on-disk size of the database including WAL side files.
func (s *SQLiteStorage) SizeBytes() (int64, error) {
	return DiskUsageBytes(DatabaseFiles(s.path)...)
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
