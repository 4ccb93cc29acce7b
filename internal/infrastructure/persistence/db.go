package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

// DB is a database handle that knows which SQL dialect it speaks
type DB struct {
	*sql.DB
	driver string
}

// Open connects to the configured driver and makes sure the schema exists
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case driverPostgres:
		return NewPostgresDB(ctx, dsn)
	case driverSQLite:
		return NewSQLiteDB(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Driver returns the name of the underlying database/sql driver
func (db *DB) Driver() string {
	return db.driver
}

// rebind turns ? placeholders into $n for Postgres
func (db *DB) rebind(query string) string {
	if db.driver != driverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
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

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}

func migrate(db *DB) error {
	var statements []string
	if db.driver == driverPostgres {
		statements = postgresSchema
	} else {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
