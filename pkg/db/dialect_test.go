package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectByType(t *testing.T) {
	for _, typ := range []string{"postgres", "MySQL", " sqlite "} {
		d, err := Dialect(Config{Type: typ, Name: "skyfare"})
		require.NoError(t, err, typ)
		assert.NotNil(t, d)
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestDSNIsUTC(t *testing.T) {
	dsn := DSN(Config{Host: "db", Port: "5432", User: "fares", Password: "secret", Name: "skyfare", SSLMode: "disable"})
	assert.Equal(t, "host=db user=fares password=secret dbname=skyfare port=5432 sslmode=disable TimeZone=UTC", dsn)
}

func TestMigrateURLEscapesCredentials(t *testing.T) {
	got := MigrateURL(Config{Host: "db", Port: "5432", User: "fares", Password: "p@ss/word", Name: "skyfare", SSLMode: "require"})
	assert.Equal(t, "postgres://fares:p%40ss%2Fword@db:5432/skyfare?sslmode=require", got)
}
