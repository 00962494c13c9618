package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/roughness.report/internal/profile"
	"github.com/banshee-data/roughness.report/internal/trip"
)

// Trip is one recorded survey run.
type Trip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrTripNotFound is returned when a trip id does not exist.
var ErrTripNotFound = fmt.Errorf("trip not found")

// CreateTrip inserts a new trip and returns it with a generated id.
func (db *DB) CreateTrip(ctx context.Context, name string) (*Trip, error) {
	t := &Trip{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO trips (trip_id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, unixFloat(t.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return t, nil
}

// Trip looks up a single trip by id.
func (db *DB) Trip(ctx context.Context, id string) (*Trip, error) {
	var t Trip
	var created float64
	err := db.QueryRowContext(ctx,
		`SELECT trip_id, name, created_at FROM trips WHERE trip_id = ?`, id).
		Scan(&t.ID, &t.Name, &created)
	if err == sql.ErrNoRows {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CreatedAt = timeFromUnixFloat(created)
	return &t, nil
}

// Trips lists trips, most recent first.
func (db *DB) Trips(ctx context.Context) ([]Trip, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT trip_id, name, created_at FROM trips ORDER BY created_at DESC LIMIT 500`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		var created float64
		if err := rows.Scan(&t.ID, &t.Name, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = timeFromUnixFloat(created)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// RecordFixes bulk-inserts a trip's location fixes in one transaction.
func (db *DB) RecordFixes(ctx context.Context, tripID string, fixes []trip.LocationFix) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO location_fixes (trip_id, ts_unix, speed_mph, latitude, longitude)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range fixes {
		if _, err := stmt.ExecContext(ctx, tripID, unixFloat(f.Timestamp), f.Speed, f.Latitude, f.Longitude); err != nil {
			return fmt.Errorf("failed to insert fix: %w", err)
		}
	}

	return tx.Commit()
}

// RecordSamples bulk-inserts a trip's inertial samples in one transaction.
func (db *DB) RecordSamples(ctx context.Context, tripID string, samples []trip.InertialSample) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO inertial_samples (trip_id, ts_unix, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, tripID, unixFloat(s.Timestamp),
			s.AccelX, s.AccelY, s.AccelZ, s.GyroX, s.GyroY, s.GyroZ); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	return tx.Commit()
}

// TripFixes loads a trip's fixes ordered by timestamp.
func (db *DB) TripFixes(ctx context.Context, tripID string) ([]trip.LocationFix, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ts_unix, speed_mph, latitude, longitude
		 FROM location_fixes WHERE trip_id = ? ORDER BY ts_unix`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixes []trip.LocationFix
	for rows.Next() {
		var ts float64
		var f trip.LocationFix
		if err := rows.Scan(&ts, &f.Speed, &f.Latitude, &f.Longitude); err != nil {
			return nil, err
		}
		f.Timestamp = timeFromUnixFloat(ts)
		fixes = append(fixes, f)
	}
	return fixes, rows.Err()
}

// TripSamples loads a trip's inertial samples ordered by timestamp.
func (db *DB) TripSamples(ctx context.Context, tripID string) ([]trip.InertialSample, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ts_unix, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z
		 FROM inertial_samples WHERE trip_id = ? ORDER BY ts_unix`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []trip.InertialSample
	for rows.Next() {
		var ts float64
		var s trip.InertialSample
		if err := rows.Scan(&ts, &s.AccelX, &s.AccelY, &s.AccelZ, &s.GyroX, &s.GyroY, &s.GyroZ); err != nil {
			return nil, err
		}
		s.Timestamp = timeFromUnixFloat(ts)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// RecordProfile replaces a trip's stored roughness profile with the given
// predictions, keyed by segment position so re-running a profile is
// idempotent.
func (db *DB) RecordProfile(ctx context.Context, tripID string, predictions []profile.Prediction) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM predictions WHERE trip_id = ?`, tripID); err != nil {
		return fmt.Errorf("failed to clear previous profile: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO predictions (
			trip_id, position, score, ok, distance_start, distance_end,
			avg_accel_y, avg_accel_z, avg_speed_mph, unix_timestamp, latitude, longitude
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range predictions {
		if _, err := stmt.ExecContext(ctx, tripID, i, p.Score, p.OK,
			p.DistanceStart, p.DistanceEnd,
			p.Segment.AvgAccelY, p.Segment.AvgAccelZ, p.Segment.AvgSpeed,
			p.Segment.UnixTimestamp, p.Segment.Latitude, p.Segment.Longitude); err != nil {
			return fmt.Errorf("failed to insert prediction %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// TripProfile loads a trip's stored roughness profile in segment order.
func (db *DB) TripProfile(ctx context.Context, tripID string) ([]profile.Prediction, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT score, ok, distance_start, distance_end,
		        avg_accel_y, avg_accel_z, avg_speed_mph, unix_timestamp, latitude, longitude
		 FROM predictions WHERE trip_id = ? ORDER BY position`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []profile.Prediction
	for rows.Next() {
		var p profile.Prediction
		if err := rows.Scan(&p.Score, &p.OK, &p.DistanceStart, &p.DistanceEnd,
			&p.Segment.AvgAccelY, &p.Segment.AvgAccelZ, &p.Segment.AvgSpeed,
			&p.Segment.UnixTimestamp, &p.Segment.Latitude, &p.Segment.Longitude); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// unixFloat converts a time to fractional unix seconds, the storage format
// for all timestamps. Sub-second precision is required by the 10 Hz fix rate.
func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnixFloat(ts float64) time.Time {
	return time.Unix(0, int64(ts*1e9)).UTC()
}
