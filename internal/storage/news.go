package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

// UpsertNewsItems stores items keyed by link, replacing earlier copies.
// It returns the number of items written.
func (s *SQLiteStorage) UpsertNewsItems(ctx context.Context, items []model.NewsItem) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news_items (link, title, summary, source, published, published_at, category, image, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			source = excluded.source,
			published = excluded.published,
			published_at = excluded.published_at,
			category = excluded.category,
			image = excluded.image,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := s.now().UTC()
	for i, item := range items {
		if err = validateString(item.Link, "link"); err != nil {
			return 0, fmt.Errorf("news item at index %d: %w", i, err)
		}
		if err = validateString(item.Title, "title"); err != nil {
			return 0, fmt.Errorf("news item at index %d: %w", i, err)
		}

		var publishedAt sql.NullTime
		if t := item.PublishedAt(); !t.IsZero() {
			publishedAt = sql.NullTime{Time: t.UTC(), Valid: true}
		}

		if _, err = stmt.ExecContext(ctx,
			item.Link, item.Title, item.Summary, item.Source, item.Published,
			publishedAt, item.Category, item.Image, now,
		); err != nil {
			return 0, fmt.Errorf("failed to save news item %q: %w", item.Link, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit news items: %w", err)
	}
	return len(items), nil
}

// ListNewsItems returns stored items newest first. Items without a parsable
// publication date sort last. A limit of zero or less returns everything.
func (s *SQLiteStorage) ListNewsItems(ctx context.Context, limit int) ([]model.NewsItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT title, summary, source, published, link, category, image
		FROM news_items
		ORDER BY published_at IS NULL, published_at DESC, title`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.NewsItem{}
	for rows.Next() {
		var item model.NewsItem
		if err := rows.Scan(&item.Title, &item.Summary, &item.Source, &item.Published,
			&item.Link, &item.Category, &item.Image); err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountNewsItems returns the number of stored news items.
func (s *SQLiteStorage) CountNewsItems(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count news items: %w", err)
	}
	return count, nil
}
