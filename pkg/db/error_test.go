package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm duplicated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres unique", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres other", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "mysql message", err: errors.New("Error 1062: Duplicate entry"), want: true},
		{name: "mysql typed", err: fmt.Errorf("create: %w", &mysql.MySQLError{Number: 1062}), want: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1452}, want: false},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: fare_classes.airline_id, fare_classes.code"), want: true},
		{name: "other", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestIsForeignKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrForeignKeyViolated, want: true},
		{name: "postgres", err: fmt.Errorf("insert fare rule: %w", &pgconn.PgError{Code: "23503"}), want: true},
		{name: "postgres unique", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "mysql missing parent", err: &mysql.MySQLError{Number: 1452}, want: true},
		{name: "mysql still referenced", err: &mysql.MySQLError{Number: 1451}, want: true},
		{name: "sqlite", err: errors.New("FOREIGN KEY constraint failed"), want: true},
		{name: "duplicate", err: errors.New("UNIQUE constraint failed: fare_rules.id"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsForeignKeyErr(tc.err))
		})
	}
}
