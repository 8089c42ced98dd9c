package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures the differences between the supported databases.
type Dialect interface {
	// DriverName returns the database/sql driver name.
	DriverName() string
	// DSN builds the connection string from cfg.
	DSN(cfg Config) string
	// GooseDialect returns the dialect name goose expects.
	GooseDialect() string
	// MigrationsDir is the subdirectory of migrations/ holding this dialect's files.
	MigrationsDir() string
	// Rewrite converts ? placeholders when the driver needs another syntax.
	Rewrite(query string) string
	// ConfigurePool applies connection pool limits.
	ConfigurePool(db *sql.DB)
}

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3", "":
		return SQLiteDialect{}, nil
	case "postgres", "postgresql":
		return PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

type SQLiteDialect struct{}

func (SQLiteDialect) DriverName() string          { return "sqlite" }
func (SQLiteDialect) DSN(cfg Config) string       { return sqliteDSN(cfg.Path) }
func (SQLiteDialect) GooseDialect() string        { return "sqlite3" }
func (SQLiteDialect) MigrationsDir() string       { return "sqlite" }
func (SQLiteDialect) Rewrite(query string) string { return query }

func (SQLiteDialect) ConfigurePool(db *sql.DB) {
	// One writer at a time; _txlock=immediate and busy_timeout serialize the rest.
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

type PostgresDialect struct{}

func (PostgresDialect) DriverName() string    { return "postgres" }
func (PostgresDialect) DSN(cfg Config) string { return cfg.URL }
func (PostgresDialect) GooseDialect() string  { return "postgres" }
func (PostgresDialect) MigrationsDir() string { return "postgres" }

// Rewrite converts ? placeholders to $1, $2, ... Placeholders inside
// single-quoted literals are left alone.
func (PostgresDialect) Rewrite(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (PostgresDialect) ConfigurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
}

// IsUniqueViolation reports whether err is a unique or primary key constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign key constraint failure.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
