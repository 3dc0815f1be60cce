package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	sqliteUniqueFailed     = "UNIQUE constraint failed"
	sqliteForeignKeyFailed = "FOREIGN KEY constraint failed"
)

const (
	mysqlDuplicateEntry  uint16 = 1062
	mysqlRowIsReferenced uint16 = 1451
	mysqlNoReferencedRow uint16 = 1452
)

// IsDuplicateKeyErr reports a unique constraint violation on any supported dialect.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return matchDriverErr(err, pgUniqueViolation, mysqlDuplicateEntry) ||
		strings.Contains(err.Error(), sqliteUniqueFailed) ||
		strings.Contains(err.Error(), "Error 1062")
}

// IsForeignKeyErr reports a write that referenced a missing row, or a delete
// of a row still referenced.
func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return matchDriverErr(err, pgForeignKeyViolation, mysqlNoReferencedRow, mysqlRowIsReferenced) ||
		strings.Contains(err.Error(), sqliteForeignKeyFailed)
}

func matchDriverErr(err error, pgCode string, mysqlNumbers ...uint16) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCode
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		for _, n := range mysqlNumbers {
			if myErr.Number == n {
				return true
			}
		}
	}
	return false
}
