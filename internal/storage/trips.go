package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

// SaveTrip records a calculator snapshot.
func (s *SQLiteStorage) SaveTrip(ctx context.Context, snapshot model.Snapshot, note string) (*model.Trip, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	trip := &model.Trip{
		Snapshot:   snapshot,
		Note:       strings.TrimSpace(note),
		RecordedAt: s.now().UTC(),
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (bus, car, bike, cycle, walking, total_distance, total_emission, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.Bus, snapshot.Car, snapshot.Bike, snapshot.Cycle, snapshot.Walking,
		snapshot.TotalDistance, snapshot.TotalEmission, trip.Note, trip.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get trip ID: %w", err)
	}
	trip.ID = int(id)
	return trip, nil
}

// ListTrips returns saved trips, most recent first.
func (s *SQLiteStorage) ListTrips(ctx context.Context, limit int) ([]model.Trip, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, bus, car, bike, cycle, walking, total_distance, total_emission, note, recorded_at
		FROM trips
		ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	trips := []model.Trip{}
	for rows.Next() {
		var t model.Trip
		snap := &t.Snapshot
		if err := rows.Scan(&t.ID, &snap.Bus, &snap.Car, &snap.Bike, &snap.Cycle, &snap.Walking,
			&snap.TotalDistance, &snap.TotalEmission, &t.Note, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}
