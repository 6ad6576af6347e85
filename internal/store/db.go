package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"go-insights-engine/internal/model"
)

const recordsTable = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	end_year REAL,
	intensity REAL,
	sector TEXT,
	topic TEXT,
	insight TEXT,
	url TEXT,
	region TEXT,
	start_year REAL,
	impact TEXT,
	added TEXT,
	published TEXT,
	country TEXT,
	relevance REAL,
	pestle TEXT,
	source TEXT,
	title TEXT,
	likelihood REAL,
	city TEXT
);
`

// DB is the SQLite-backed record store. It is safe for concurrent readers.
type DB struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at path and creates the schema if
// missing.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. The schema is not touched.
func New(db *sqlx.DB) *DB {
	return &DB{db: db}
}

// Migrate creates the records table if it does not exist.
func (s *DB) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, recordsTable); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *DB) Close() error {
	return s.db.Close()
}

// ReplaceRecords swaps the whole collection for records in one transaction.
func (s *DB) ReplaceRecords(ctx context.Context, records []model.Record) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertRecordSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		if _, err = stmt.ExecContext(ctx, toRow(&records[i])); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM records`); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Scan iterates every record in insertion order.
func (s *DB) Scan(ctx context.Context) (model.RecordIterator, error) {
	rows, err := s.db.QueryxContext(ctx, selectRecordsSQL+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return &rowIterator{rows: rows}, nil
}

// Find returns the records matching every constraint of filter. Constraints
// are pushed into the WHERE clause as bind parameters.
func (s *DB) Find(ctx context.Context, filter model.Filter) ([]model.Record, error) {
	where, args := whereClause(filter)

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, selectRecordsSQL+where+` ORDER BY id`, args...); err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}

	records := make([]model.Record, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Distinct returns the distinct non-null, non-empty values of field, ordered
// ascending.
func (s *DB) Distinct(ctx context.Context, field model.Field) ([]model.Value, error) {
	if !field.Known() {
		return nil, fmt.Errorf("distinct: unknown field %q", field)
	}
	col := string(field)
	query := fmt.Sprintf(
		`SELECT DISTINCT %[1]s FROM records WHERE %[1]s IS NOT NULL AND %[1]s != '' ORDER BY %[1]s`, col)

	var raw []string
	if err := s.db.SelectContext(ctx, &raw, query); err != nil {
		return nil, fmt.Errorf("distinct %s: %w", col, err)
	}

	values := make([]model.Value, 0, len(raw))
	for _, r := range raw {
		v, err := parseColumn(field, r)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// whereClause renders filter as " WHERE col = ? AND ...". Column names come
// from the fixed field list, never from input.
func whereClause(filter model.Filter) (string, []any) {
	if filter.IsEmpty() {
		return "", nil
	}
	if filter.Unsatisfiable() {
		return ` WHERE 1 = 0`, nil
	}

	var (
		conds []string
		args  []any
	)
	for _, c := range filter.Constraints() {
		conds = append(conds, string(c.Field)+` = ?`)
		if n, ok := c.Value.Float(); ok {
			args = append(args, n)
		} else {
			s, _ := c.Value.Str()
			args = append(args, s)
		}
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}
