// Package sqldriver implements the storage interfaces on database/sql with
// plain SQL, shared by the sqlite and postgres backends. Dialect differences
// are limited to the schema DDL, placeholder style, and id generation.
package sqldriver

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/storage"
)

// Dialect selects the SQL flavor for DDL and placeholders.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLDriver provides storage operations over an open *sql.DB. The backend
// packages own the driver import and connection setup; SQLDriver owns the
// schema and every query.
type SQLDriver struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database handle and runs migration.
func New(db *sql.DB, dialect Dialect) (*SQLDriver, error) {
	d := &SQLDriver{db: db, dialect: dialect}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, wrapPersist("migrating database", err)
	}

	return d, nil
}

// migrate creates the tables if they don't exist.
func (d *SQLDriver) migrate() error {
	schema := sqliteSchema
	if d.dialect == DialectPostgres {
		schema = postgresSchema
	}

	_, err := d.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (d *SQLDriver) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres. Queries are written in
// ? style throughout and rebound at the call site.
func (d *SQLDriver) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func (d *SQLDriver) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.rebind(query), args...)
}

func (d *SQLDriver) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.rebind(query), args...)
}

func (d *SQLDriver) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.rebind(query), args...)
}

// insertID runs an INSERT and returns the generated id. Postgres needs a
// RETURNING clause because LastInsertId is not supported by the pgx stdlib
// driver.
func (d *SQLDriver) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	if d.dialect == DialectPostgres {
		var id int64
		if err := d.db.QueryRowContext(ctx, d.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// hasRow reports whether a SELECT 1 style query returns anything.
func (d *SQLDriver) hasRow(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := d.queryRow(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// wrapPersist tags err with storage.ErrPersistence so callers can detect
// store failures with errors.Is.
func wrapPersist(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, storage.ErrPersistence, err)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}

	t := nt.Time
	return &t
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}

	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}

	n := int(ni.Int64)
	return &n
}

// Compile-time interface checks.
var (
	_ storage.Driver         = (*SQLDriver)(nil)
	_ storage.LearningStore  = (*SQLDriver)(nil)
	_ storage.ChallengeStore = (*SQLDriver)(nil)
	_ storage.StatsStore     = (*SQLDriver)(nil)
)
