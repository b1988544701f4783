package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// SQLite column affinities.
const (
	sqlInteger = "INTEGER"
	sqlReal    = "REAL"
	sqlText    = "TEXT"
)

type sqlColumn struct {
	name     string
	affinity string
}

// WriteSQLite writes items into table of the SQLite database at path,
// creating the file if needed. An existing table of the same name is
// replaced. Columns follow the instances' field order; nested instances and
// sequences are stored as JSON text.
func WriteSQLite(ctx context.Context, path, table string, items []*generator.Instance) error {
	if table == "" {
		return errors.New("table name cannot be empty")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}
	defer db.Close()

	cols := sqlColumns(items)
	if len(cols) == 0 {
		return fmt.Errorf("no fields to write to table %s", table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, cols)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, cols))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i, in := range items {
		for j, c := range cols {
			v, _ := in.Get(c.name)
			if args[j], err = sqlValue(v); err != nil {
				return fmt.Errorf("item %d field %s: %w", i, c.name, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// sqlColumns collects the fields of items in first-seen order, typed by the
// first non-null value of each.
func sqlColumns(items []*generator.Instance) []sqlColumn {
	var cols []sqlColumn
	index := map[string]int{}
	for _, in := range items {
		for _, k := range in.Keys() {
			v, _ := in.Get(k)
			i, seen := index[k]
			if !seen {
				index[k] = len(cols)
				cols = append(cols, sqlColumn{name: k})
				i = len(cols) - 1
			}
			if cols[i].affinity == "" && v != nil {
				cols[i].affinity = affinityOf(v)
			}
		}
	}
	for i := range cols {
		if cols[i].affinity == "" {
			cols[i].affinity = sqlText
		}
	}
	return cols
}

func affinityOf(v any) string {
	switch v.(type) {
	case bool, int, int32, int64, uint64:
		return sqlInteger
	case float32, float64:
		return sqlReal
	default:
		return sqlText
	}
}

// sqlValue converts a generated value into a driver argument.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int, int32, int64, float32, float64, string:
		return x, nil
	case uint64:
		return int64(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case *generator.Instance, []any, map[string]any:
		data, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return fmt.Sprint(generator.Plain(x)), nil
	}
}

func createTableSQL(table string, cols []sqlColumn) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.name) + " " + c.affinity
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func insertSQL(table string, cols []sqlColumn) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
