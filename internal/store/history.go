// Package store persists resolution history in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	release_id TEXT NOT NULL,
	catalog_id TEXT NOT NULL DEFAULT '',
	class TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	artists TEXT NOT NULL DEFAULT '',
	resolved_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resolutions_resolved_at ON resolutions(resolved_at);
`

// Resolution is one recorded catalog resolution.
type Resolution struct {
	ID         int64
	Query      string
	ReleaseID  string
	CatalogID  string
	Class      string
	Title      string
	Artists    string
	ResolvedAt time.Time
}

// History is the sqlite-backed resolution log.
type History struct {
	db     *sql.DB
	logger *zap.Logger
}

func OpenHistory(path string, logger *zap.Logger) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	logger.Debug("History store opened", zap.String("path", path))

	return &History{db: db, logger: logger}, nil
}

// Record appends a resolution and fills in its assigned ID.
func (h *History) Record(ctx context.Context, r *Resolution) error {
	if r.ResolvedAt.IsZero() {
		r.ResolvedAt = time.Now().UTC()
	}

	result, err := h.db.ExecContext(ctx,
		`INSERT INTO resolutions (query, release_id, catalog_id, class, title, artists, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Query, r.ReleaseID, r.CatalogID, r.Class, r.Title, r.Artists, r.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to record resolution: %w", err)
	}

	r.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read resolution id: %w", err)
	}

	return nil
}

// Recent returns the latest resolutions, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Resolution, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, query, release_id, catalog_id, class, title, artists, resolved_at
		 FROM resolutions
		 ORDER BY resolved_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var resolutions []Resolution
	for rows.Next() {
		var r Resolution
		if err := rows.Scan(&r.ID, &r.Query, &r.ReleaseID, &r.CatalogID, &r.Class, &r.Title, &r.Artists, &r.ResolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		resolutions = append(resolutions, r)
	}

	return resolutions, rows.Err()
}

func (h *History) Close() error {
	return h.db.Close()
}
