package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect isolates the differences between the supported SQL backends.
// Repositories write queries with ? placeholders and let the dialect
// rewrite them.
type Dialect interface {
	// Name is the configuration name: "sqlite", "postgres" or "mysql".
	Name() string

	// DriverName returns the database/sql driver name.
	DriverName() string

	// RewriteQuery converts placeholder syntax if needed.
	RewriteQuery(query string) string

	// SupportsLastInsertId reports whether sql.Result.LastInsertId works.
	SupportsLastInsertId() bool

	// ConfigureConnection sets pool limits and session options.
	ConfigureConnection(db *sql.DB) error

	// LockClause is appended to a SELECT that reads a row for update.
	LockClause() string

	// SchemaFile names the embedded DDL file for this backend.
	SchemaFile() string

	// IsUniqueViolation and IsForeignKeyViolation classify driver errors.
	IsUniqueViolation(err error) bool
	IsForeignKeyViolation(err error) bool
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return sqliteDialect{}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", name)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
// Queries in this package never carry a literal ? in strings.
func rewritePlaceholdersToNumbered(query string) string {
	n := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}
