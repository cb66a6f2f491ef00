package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidBackupPath is returned for backup destinations that cannot be
// safely embedded in a VACUUM INTO statement.
var ErrInvalidBackupPath = errors.New("invalid backup path")

// Backup writes a consistent copy of the database to dir and returns its
// path. The copy is verified with an integrity check before returning.
func (s *SQLiteStorage) Backup(ctx context.Context, dir string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if s.dbPath == ":memory:" {
		return "", fmt.Errorf("%w: in-memory databases cannot be backed up", ErrInvalidBackupPath)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve backup directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("footprint-%s.db", s.now().UTC().Format("20060102-150405"))
	dest := filepath.Join(dir, name)
	if strings.ContainsAny(dest, `'";`) {
		return "", fmt.Errorf("%w: %s", ErrInvalidBackupPath, dest)
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%w: %s already exists", ErrInvalidBackupPath, dest)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// #nosec G201 - dest is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}

	if err := verifyIntegrity(dest); err != nil {
		_ = os.Remove(dest)
		return "", err
	}

	slog.Info("Database backed up", "path", dest, "at", time.Now().Format(time.RFC3339))
	return dest, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close backup database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup integrity check failed: %s", result)
	}
	return nil
}
