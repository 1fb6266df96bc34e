package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// requiredColumns lists the tables and columns the climate queries read.
// The tables are populated by an external loader; extra columns are ignored.
var requiredColumns = map[string][]string{
	"station":     {"station", "name", "latitude", "longitude", "elevation"},
	"measurement": {"station", "date", "prcp", "tobs"},
}

// VerifySchema fails when a required table or column is missing. A nil
// logger means slog.Default().
func VerifySchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	tables := make([]string, 0, len(requiredColumns))
	for table := range requiredColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		have, err := tableColumns(ctx, db, table, logger)
		if err != nil {
			return fmt.Errorf("inspect table %s: %w", table, err)
		}
		if len(have) == 0 {
			return fmt.Errorf("schema: table %q not found", table)
		}

		var missing []string
		for _, col := range requiredColumns[table] {
			if !have[col] {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("schema: table %q missing columns: %s", table, strings.Join(missing, ", "))
		}
		logger.Debug("schema table ok", "table", table, "columns", len(have))
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string, logger *slog.Logger) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("close table info rows", "table", table, "error", err)
		}
	}()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = true
	}
	return out, rows.Err()
}
