package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

type mysqlDialect struct{}

func (mysqlDialect) Name() string                     { return "mysql" }
func (mysqlDialect) DriverName() string               { return "mysql" }
func (mysqlDialect) RewriteQuery(query string) string { return query }
func (mysqlDialect) SupportsLastInsertId() bool       { return true }
func (mysqlDialect) SchemaFile() string               { return "schema/mysql.sql" }
func (mysqlDialect) LockClause() string               { return " FOR UPDATE" }

func (mysqlDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (mysqlDialect) IsUniqueViolation(err error) bool {
	return mysqlNumber(err) == 1062
}

func (mysqlDialect) IsForeignKeyViolation(err error) bool {
	n := mysqlNumber(err)
	return n == 1451 || n == 1452
}

func mysqlNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// mysqlDSN makes sure DATETIME columns scan as time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
