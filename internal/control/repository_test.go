package control

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumenlogic/lumen-core/internal/infrastructure/database"
	_ "github.com/lumenlogic/lumen-core/migrations"
)

func openStoreDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "control.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestOverrideStoreRoundTrip(t *testing.T) {
	db := openStoreDB(t)
	store := NewSQLiteOverrideStore(db.DB)
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	override := ManualOverride{
		ID:        "ovr-11111111",
		Intensity: 25,
		CCTKelvin: 3000,
		Reason:    "movie night",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		Active:    true,
	}
	if err := store.Create(ctx, override); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.FindCurrent(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("FindCurrent() error = %v", err)
	}
	if got.ID != override.ID || got.Intensity != 25 || got.CCTKelvin != 3000 {
		t.Errorf("FindCurrent() = %+v, want stored override", got)
	}
	if !got.ExpiresAt.Equal(override.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, override.ExpiresAt)
	}
}

func TestOverrideStoreSkipsExpiredAndInactive(t *testing.T) {
	db := openStoreDB(t)
	store := NewSQLiteOverrideStore(db.DB)
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	expired := ManualOverride{
		ID: "ovr-expired", Intensity: 10, CCTKelvin: 2000,
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour), Active: true,
	}
	inactive := ManualOverride{
		ID: "ovr-inactive", Intensity: 20, CCTKelvin: 2500,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour), Active: false,
	}
	for _, o := range []ManualOverride{expired, inactive} {
		if err := store.Create(ctx, o); err != nil {
			t.Fatalf("Create(%s) error = %v", o.ID, err)
		}
	}

	_, err := store.FindCurrent(ctx, now)
	if !errors.Is(err, ErrOverrideNotFound) {
		t.Errorf("FindCurrent() error = %v, want ErrOverrideNotFound", err)
	}
}

func TestOverrideStoreLatestExpiryWins(t *testing.T) {
	db := openStoreDB(t)
	store := NewSQLiteOverrideStore(db.DB)
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	short := ManualOverride{
		ID: "ovr-short", Intensity: 25, CCTKelvin: 3000,
		CreatedAt: now, ExpiresAt: now.Add(30 * time.Minute), Active: true,
	}
	long := ManualOverride{
		ID: "ovr-long", Intensity: 70, CCTKelvin: 5000,
		CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour), Active: true,
	}
	for _, o := range []ManualOverride{short, long} {
		if err := store.Create(ctx, o); err != nil {
			t.Fatalf("Create(%s) error = %v", o.ID, err)
		}
	}

	got, err := store.FindCurrent(ctx, now)
	if err != nil {
		t.Fatalf("FindCurrent() error = %v", err)
	}
	if got.ID != "ovr-long" {
		t.Errorf("FindCurrent() = %s, want ovr-long", got.ID)
	}
}

func TestOverrideStoreDeactivate(t *testing.T) {
	db := openStoreDB(t)
	store := NewSQLiteOverrideStore(db.DB)
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"ovr-a", "ovr-b"} {
		err := store.Create(ctx, ManualOverride{
			ID: id, Intensity: 50, CCTKelvin: 4000,
			CreatedAt: now, ExpiresAt: now.Add(time.Hour), Active: true,
		})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	count, err := store.Deactivate(ctx)
	if err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Deactivate() = %d, want 2", count)
	}
	if _, err := store.FindCurrent(ctx, now); !errors.Is(err, ErrOverrideNotFound) {
		t.Errorf("FindCurrent() after deactivate error = %v, want ErrOverrideNotFound", err)
	}
}

func TestDecisionStoreAppendAndLatest(t *testing.T) {
	db := openStoreDB(t)
	store := NewSQLiteDecisionStore(db.DB)
	ctx := context.Background()
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	if _, err := store.Latest(ctx); !errors.Is(err, ErrNoDecisions) {
		t.Fatalf("Latest() on empty log error = %v, want ErrNoDecisions", err)
	}

	// Sub-second spacing must not break ordering.
	for i, spacing := range []time.Duration{0, 200 * time.Millisecond, 400 * time.Millisecond} {
		err := store.Append(ctx, Decision{
			ID:           "dec-" + string(rune('a'+i)),
			DecidedAt:    base.Add(spacing),
			Intensity:    40 + i,
			CCTKelvin:    4000,
			Reason:       "cycle",
			Source:       SourceAI,
			EnergySaving: 0.6,
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Intensity != 42 {
		t.Errorf("Latest().Intensity = %d, want 42", latest.Intensity)
	}
	if !latest.DecidedAt.Equal(base.Add(400 * time.Millisecond)) {
		t.Errorf("Latest().DecidedAt = %v, want %v", latest.DecidedAt, base.Add(400*time.Millisecond))
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Intensity != 42 || recent[1].Intensity != 41 {
		t.Errorf("Recent() = %+v, want newest first", recent)
	}
}
