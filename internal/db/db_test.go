package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/banshee-data/roughness.report/internal/profile"
	"github.com/banshee-data/roughness.report/internal/trip"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	fname := t.Name() + ".db"
	_ = os.Remove(fname)

	db, err := NewDB(fname)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		_ = os.Remove(fname)
		_ = os.Remove(fname + "-shm")
		_ = os.Remove(fname + "-wal")
	})
	return db
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	// NewDB already migrated; a second run must be a no-op.
	if err := db.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if dirty {
		t.Error("migration state is dirty")
	}
	if version == 0 {
		t.Error("no migrations applied")
	}
}

func TestCreateTrip_AndLookup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.CreateTrip(ctx, "morning survey")
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("trip id is empty")
	}

	got, err := db.Trip(ctx, created.ID)
	if err != nil {
		t.Fatalf("Trip failed: %v", err)
	}
	if got.Name != "morning survey" {
		t.Errorf("Name = %q, want %q", got.Name, "morning survey")
	}

	if _, err := db.Trip(ctx, "no-such-trip"); err != ErrTripNotFound {
		t.Errorf("Trip(missing) error = %v, want ErrTripNotFound", err)
	}

	trips, err := db.Trips(ctx)
	if err != nil {
		t.Fatalf("Trips failed: %v", err)
	}
	if len(trips) != 1 {
		t.Errorf("Trips = %d entries, want 1", len(trips))
	}
}

func TestRecordFixes_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tr, err := db.CreateTrip(ctx, "fixes")
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	base := time.Date(2026, 5, 2, 8, 0, 0, 250_000_000, time.UTC)
	fixes := []trip.LocationFix{
		{Timestamp: base, Speed: 28.5, Latitude: 37.1, Longitude: -122.2},
		{Timestamp: base.Add(100 * time.Millisecond), Speed: 29.0, Latitude: 37.1001, Longitude: -122.2},
	}
	if err := db.RecordFixes(ctx, tr.ID, fixes); err != nil {
		t.Fatalf("RecordFixes failed: %v", err)
	}

	got, err := db.TripFixes(ctx, tr.ID)
	if err != nil {
		t.Fatalf("TripFixes failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("TripFixes = %d fixes, want 2", len(got))
	}
	if got[0].Speed != 28.5 || got[1].Speed != 29.0 {
		t.Errorf("speeds = %v, %v, want 28.5, 29.0", got[0].Speed, got[1].Speed)
	}

	// sub-second precision must survive the round trip
	delta := got[1].Timestamp.Sub(got[0].Timestamp)
	if delta < 99*time.Millisecond || delta > 101*time.Millisecond {
		t.Errorf("timestamp delta = %v, want ~100ms", delta)
	}
}

func TestRecordSamples_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tr, err := db.CreateTrip(ctx, "samples")
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	base := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	samples := []trip.InertialSample{
		{Timestamp: base, AccelX: 0.01, AccelY: 0.2, AccelZ: 9.8, GyroX: 0.001, GyroY: 0.002, GyroZ: 0.003},
		{Timestamp: base.Add(20 * time.Millisecond), AccelX: 0.02, AccelY: 0.3, AccelZ: 9.7},
	}
	if err := db.RecordSamples(ctx, tr.ID, samples); err != nil {
		t.Fatalf("RecordSamples failed: %v", err)
	}

	got, err := db.TripSamples(ctx, tr.ID)
	if err != nil {
		t.Fatalf("TripSamples failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("TripSamples = %d samples, want 2", len(got))
	}
	if got[0].AccelY != 0.2 || got[1].AccelY != 0.3 {
		t.Errorf("AccelY = %v, %v, want 0.2, 0.3", got[0].AccelY, got[1].AccelY)
	}
}

func TestRecordProfile_ReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tr, err := db.CreateTrip(ctx, "profile")
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	makePreds := func(n int, score float64) []profile.Prediction {
		preds := make([]profile.Prediction, n)
		for i := range preds {
			preds[i] = profile.Prediction{
				Segment: trip.Segment{
					AvgAccelY: 0.1, AvgAccelZ: 9.8, AvgSpeed: 30,
					UnixTimestamp: 1700000000 + int64(i),
					Latitude:      37, Longitude: -122,
				},
				Score:         score,
				OK:            true,
				DistanceStart: float64(i) * 0.1,
				DistanceEnd:   float64(i+1) * 0.1,
			}
		}
		return preds
	}

	if err := db.RecordProfile(ctx, tr.ID, makePreds(3, 2.0)); err != nil {
		t.Fatalf("RecordProfile failed: %v", err)
	}
	if err := db.RecordProfile(ctx, tr.ID, makePreds(5, 4.0)); err != nil {
		t.Fatalf("second RecordProfile failed: %v", err)
	}

	got, err := db.TripProfile(ctx, tr.ID)
	if err != nil {
		t.Fatalf("TripProfile failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("TripProfile = %d predictions, want 5 (replace semantics)", len(got))
	}
	for i, p := range got {
		if p.Score != 4.0 {
			t.Errorf("prediction %d score = %v, want 4.0", i, p.Score)
		}
		if p.DistanceStart != float64(i)*0.1 {
			t.Errorf("prediction %d DistanceStart = %v, want %v", i, p.DistanceStart, float64(i)*0.1)
		}
	}
}

func TestTripProfile_EmptyForUnknownTrip(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.TripProfile(context.Background(), "nothing-here")
	if err != nil {
		t.Fatalf("TripProfile failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("TripProfile = %d predictions, want 0", len(got))
	}
}
