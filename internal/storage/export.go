package storage

import (
	"context"
	"fmt"
	"time"
)

// ExportTimeLayout formats date columns in exports.
const ExportTimeLayout = "2006-01-02 15:04:05"

// TableExport is a dump of one table.
type TableExport struct {
	Columns  []string         `json:"columns"`
	Data     []map[string]any `json:"data"`
	RowCount int              `json:"row_count"`
}

// ExportAll dumps every user table keyed by table name.
func (s *SQLiteStorage) ExportAll(ctx context.Context) (map[string]TableExport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tables, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	export := make(map[string]TableExport, len(tables))
	for _, table := range tables {
		dump, err := s.exportTable(ctx, table)
		if err != nil {
			return nil, err
		}
		export[table] = dump
	}
	return export, nil
}

func (s *SQLiteStorage) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStorage) exportTable(ctx context.Context, table string) (TableExport, error) {
	// table comes from sqlite_master, never from user input
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %q`, table))
	if err != nil {
		return TableExport{}, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return TableExport{}, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	dump := TableExport{Columns: columns, Data: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return TableExport{}, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = exportValue(values[i])
		}
		dump.Data = append(dump.Data, row)
	}
	if err := rows.Err(); err != nil {
		return TableExport{}, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	dump.RowCount = len(dump.Data)
	return dump, nil
}

func exportValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(ExportTimeLayout)
	case []byte:
		return string(val)
	default:
		return val
	}
}
