package control

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 with a fixed nine-digit fraction so
// that lexicographic order in the TEXT column matches chronological order.
// RFC3339Nano would strip trailing zeros and break ORDER BY.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteOverrideStore persists manual overrides in SQLite.
type SQLiteOverrideStore struct {
	db *sql.DB
}

// NewSQLiteOverrideStore creates an override store backed by db.
func NewSQLiteOverrideStore(db *sql.DB) *SQLiteOverrideStore {
	return &SQLiteOverrideStore{db: db}
}

// Create stores a new override.
func (s *SQLiteOverrideStore) Create(ctx context.Context, o ManualOverride) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manual_overrides (id, intensity, cct_kelvin, reason, created_at, expires_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Intensity, o.CCTKelvin, o.Reason,
		o.CreatedAt.UTC().Format(timeLayout),
		o.ExpiresAt.UTC().Format(timeLayout),
		boolToInt(o.Active),
	)
	if err != nil {
		return fmt.Errorf("inserting override: %w", err)
	}
	return nil
}

// FindCurrent returns the active, unexpired override with the latest
// expiry. When two pins overlap, the one that holds the luminaire longest
// wins.
func (s *SQLiteOverrideStore) FindCurrent(ctx context.Context, now time.Time) (*ManualOverride, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, intensity, cct_kelvin, reason, created_at, expires_at, active
		FROM manual_overrides
		WHERE active = 1 AND expires_at > ?
		ORDER BY expires_at DESC
		LIMIT 1`,
		now.UTC().Format(timeLayout),
	)

	var (
		o                    ManualOverride
		createdAt, expiresAt string
		active               int
	)
	err := row.Scan(&o.ID, &o.Intensity, &o.CCTKelvin, &o.Reason, &createdAt, &expiresAt, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying current override: %w", err)
	}

	if o.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing override created_at: %w", err)
	}
	if o.ExpiresAt, err = time.Parse(timeLayout, expiresAt); err != nil {
		return nil, fmt.Errorf("parsing override expires_at: %w", err)
	}
	o.Active = active != 0
	return &o, nil
}

// Deactivate marks all active overrides inactive.
func (s *SQLiteOverrideStore) Deactivate(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE manual_overrides SET active = 0 WHERE active = 1`)
	if err != nil {
		return 0, fmt.Errorf("deactivating overrides: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(affected), nil
}

// SQLiteDecisionStore persists the decision log in SQLite.
type SQLiteDecisionStore struct {
	db *sql.DB
}

// NewSQLiteDecisionStore creates a decision store backed by db.
func NewSQLiteDecisionStore(db *sql.DB) *SQLiteDecisionStore {
	return &SQLiteDecisionStore{db: db}
}

// Append records a decision. The log is append-only; decisions are never
// updated or deleted.
func (s *SQLiteDecisionStore) Append(ctx context.Context, d Decision) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, decided_at, intensity, cct_kelvin, reason, source, payload_bytes, override_applied, energy_saving)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.DecidedAt.UTC().Format(timeLayout),
		d.Intensity, d.CCTKelvin, d.Reason, string(d.Source),
		d.PayloadBytes, boolToInt(d.OverrideApplied), d.EnergySaving,
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

// Latest returns the most recent decision.
func (s *SQLiteDecisionStore) Latest(ctx context.Context) (*Decision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, decided_at, intensity, cct_kelvin, reason, source, payload_bytes, override_applied, energy_saving
		FROM decisions
		ORDER BY decided_at DESC
		LIMIT 1`,
	)
	return scanDecision(row)
}

// Recent returns up to limit decisions, most recent first.
func (s *SQLiteDecisionStore) Recent(ctx context.Context, limit int) ([]Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, decided_at, intensity, cct_kelvin, reason, source, payload_bytes, override_applied, energy_saving
		FROM decisions
		ORDER BY decided_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		d, err := scanDecisionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}
	return out, nil
}

func scanDecision(row *sql.Row) (*Decision, error) {
	var (
		d         Decision
		decidedAt string
		source    string
		override  int
	)
	err := row.Scan(&d.ID, &decidedAt, &d.Intensity, &d.CCTKelvin, &d.Reason,
		&source, &d.PayloadBytes, &override, &d.EnergySaving)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDecisions
	}
	if err != nil {
		return nil, fmt.Errorf("scanning decision: %w", err)
	}
	if d.DecidedAt, err = time.Parse(timeLayout, decidedAt); err != nil {
		return nil, fmt.Errorf("parsing decided_at: %w", err)
	}
	d.Source = Source(source)
	d.OverrideApplied = override != 0
	return &d, nil
}

func scanDecisionRow(rows *sql.Rows) (Decision, error) {
	var (
		d         Decision
		decidedAt string
		source    string
		override  int
	)
	err := rows.Scan(&d.ID, &decidedAt, &d.Intensity, &d.CCTKelvin, &d.Reason,
		&source, &d.PayloadBytes, &override, &d.EnergySaving)
	if err != nil {
		return Decision{}, fmt.Errorf("scanning decision: %w", err)
	}
	if d.DecidedAt, err = time.Parse(timeLayout, decidedAt); err != nil {
		return Decision{}, fmt.Errorf("parsing decided_at: %w", err)
	}
	d.Source = Source(source)
	d.OverrideApplied = override != 0
	return d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
