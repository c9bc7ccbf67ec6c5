package inference

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Fixed-fraction RFC 3339 keeps lexicographic and chronological order
// aligned in the TEXT column.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteFeatureWindowStore persists feature windows in SQLite.
type SQLiteFeatureWindowStore struct {
	db *sql.DB
}

// NewSQLiteFeatureWindowStore creates a feature window store backed by db.
func NewSQLiteFeatureWindowStore(db *sql.DB) *SQLiteFeatureWindowStore {
	return &SQLiteFeatureWindowStore{db: db}
}

// Append stores a feature window.
func (s *SQLiteFeatureWindowStore) Append(ctx context.Context, w FeatureWindow) error {
	raw, err := json.Marshal(w.Payload)
	if err != nil {
		return fmt.Errorf("serializing feature window: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feature_windows (payload, created_at)
		VALUES (?, ?)`,
		string(raw), w.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting feature window: %w", err)
	}
	return nil
}

// Recent returns up to limit windows ordered oldest first, the order the
// decision engine expects (most recent last).
func (s *SQLiteFeatureWindowStore) Recent(ctx context.Context, limit int) ([]FeatureWindow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload, created_at FROM (
			SELECT payload, created_at
			FROM feature_windows
			ORDER BY created_at DESC
			LIMIT ?
		)
		ORDER BY created_at ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying feature windows: %w", err)
	}
	defer rows.Close()

	var out []FeatureWindow
	for rows.Next() {
		var (
			raw       string
			createdAt string
			w         FeatureWindow
		)
		if err := rows.Scan(&raw, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning feature window: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &w.Payload); err != nil {
			return nil, fmt.Errorf("parsing feature window payload: %w", err)
		}
		if w.Timestamp, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing feature window created_at: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feature windows: %w", err)
	}
	return out, nil
}
