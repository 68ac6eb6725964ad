package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// History records every page upload attempt in a local SQLite database.
type History struct {
	db *sql.DB
}

// DefaultHistoryPath returns ~/.go_yt2notion/history.db.
func DefaultHistoryPath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_yt2notion", "history.db")
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, errors.New("history: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initHistorySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &History{db: db}, nil
}

func initHistorySchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS uploads (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id   TEXT NOT NULL,
		title      TEXT NOT NULL,
		part       INTEGER NOT NULL,
		page_id    TEXT,
		page_url   TEXT,
		status     TEXT NOT NULL,
		error      TEXT,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS uploads_video_id ON uploads (video_id)`)
	return err
}

// Record inserts one upload row and returns its id.
func (h *History) Record(ctx context.Context, u Upload) (int64, error) {
	if u.VideoID == "" || u.Part <= 0 {
		return 0, errors.New("history: video id and part are required")
	}
	if u.Status != UploadCreated && u.Status != UploadFailed {
		return 0, fmt.Errorf("history: invalid status %q", u.Status)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO uploads (video_id, title, part, page_id, page_url, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.VideoID, u.Title, u.Part, u.PageID, u.PageURL, string(u.Status), u.Error, now,
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// List returns uploads for videoID, newest first. limit <= 0 means 50.
func (h *History) List(ctx context.Context, videoID string, limit int) ([]Upload, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, video_id, title, part, page_id, page_url, status, error, created_at
		 FROM uploads WHERE video_id = ? ORDER BY id DESC LIMIT ?`,
		videoID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	uploads := []Upload{}
	for rows.Next() {
		var u Upload
		var pageID, pageURL, errText sql.NullString
		var status string
		if err := rows.Scan(&u.ID, &u.VideoID, &u.Title, &u.Part, &pageID, &pageURL,
			&status, &errText, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		u.PageID = pageID.String
		u.PageURL = pageURL.String
		u.Error = errText.String
		u.Status = UploadStatus(status)
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
