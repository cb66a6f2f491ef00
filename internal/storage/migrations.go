package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS news_items (
				link TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				summary TEXT NOT NULL DEFAULT '',
				source TEXT NOT NULL DEFAULT '',
				published TEXT NOT NULL DEFAULT '',
				published_at DATETIME,
				category TEXT NOT NULL DEFAULT '',
				image TEXT NOT NULL DEFAULT '',
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_news_items_published_at ON news_items(published_at)`,
		),
	},
	{
		Version:     2,
		Description: "Add challenges and users",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS challenges (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				challenge_type TEXT NOT NULL,
				target_value REAL NOT NULL,
				target_unit TEXT NOT NULL DEFAULT '',
				points_reward INTEGER NOT NULL DEFAULT 0,
				badge_icon TEXT NOT NULL DEFAULT '🏆',
				start_date DATETIME NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT 1
			)`,
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT UNIQUE NOT NULL,
				name TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
		),
	},
	{
		Version:     3,
		Description: "Add challenge participation",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS user_challenges (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				challenge_id INTEGER NOT NULL,
				current_progress REAL NOT NULL DEFAULT 0,
				joined_at DATETIME NOT NULL,
				UNIQUE(user_id, challenge_id),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (challenge_id) REFERENCES challenges(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX idx_user_challenges_challenge ON user_challenges(challenge_id)`,
		),
	},
	{
		Version:     4,
		Description: "Add saved calculator trips",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS trips (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				bus REAL NOT NULL DEFAULT 0,
				car REAL NOT NULL DEFAULT 0,
				bike REAL NOT NULL DEFAULT 0,
				cycle REAL NOT NULL DEFAULT 0,
				walking REAL NOT NULL DEFAULT 0,
				total_distance REAL NOT NULL DEFAULT 0,
				total_emission REAL NOT NULL DEFAULT 0,
				note TEXT NOT NULL DEFAULT '',
				recorded_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_trips_recorded_at ON trips(recorded_at)`,
		),
	},
}

func execAll(queries ...string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, query := range queries {
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
		}
		return nil
	}
}

// Migrate applies every pending migration.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
