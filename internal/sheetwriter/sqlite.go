package sheetwriter

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// DefaultTableName is used when WriteSQLite gets an empty name.
const DefaultTableName = "results"

// WriteSQLite writes table into the SQLite database at path, replacing any
// table of the same name. Columns are untyped so every value keeps its
// own storage class; absent cells are NULL. Column names that differ only
// in case are suffixed with _1, _2, ... since SQLite treats them as one.
func WriteSQLite(path, name string, table types.Table) error {
	if name == "" {
		name = DefaultTableName
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("unable to open sqlite database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	columns := table.Columns()
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range sqliteColumns(columns) {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}

	stmts := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name)),
		fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(quoted, ", ")),
	}
	if len(columns) == 0 {
		stmts[1] = fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), quoteIdent("_empty"))
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table %q: %w", name, err)
		}
	}

	if len(columns) > 0 {
		insert, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(name), strings.Join(quoted, ", "), strings.Join(marks, ", ")))
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer insert.Close()

		args := make([]any, len(columns))
		for i, row := range table.Rows {
			for j, c := range columns {
				args[j] = cell(row.Value(c))
			}
			if _, err := insert.Exec(args...); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// sqliteColumns names the database columns for columns. SQLite compares
// identifiers case-insensitively, so a later name that collides with an
// earlier one gets the first free _N suffix.
func sqliteColumns(columns []string) []string {
	names := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	for i, c := range columns {
		name := c
		for n := 1; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", c, n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// quoteIdent quotes an SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
