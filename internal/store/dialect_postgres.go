package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }
func (postgresDialect) SchemaFile() string { return "schema/postgres.sql" }
func (postgresDialect) LockClause() string { return " FOR UPDATE" }

func (postgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

// Postgres needs RETURNING id instead.
func (postgresDialect) SupportsLastInsertId() bool { return false }

func (postgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (postgresDialect) IsUniqueViolation(err error) bool {
	return pqCode(err) == "23505"
}

func (postgresDialect) IsForeignKeyViolation(err error) bool {
	return pqCode(err) == "23503"
}

func pqCode(err error) pq.ErrorCode {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
