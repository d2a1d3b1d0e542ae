package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"":           MySQL,
		"mysql":      MySQL,
		"MySQL ":     MySQL,
		"postgres":   Postgres,
		"postgresql": Postgres,
		"pgx":        Postgres,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("sqlite")
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y = ?"
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", Postgres.Rebind(q))
	assert.Equal(t, "SELECT 1", Postgres.Rebind("SELECT 1"))
}

func TestUniqueViolation(t *testing.T) {
	key, ok := MySQL.uniqueViolation(&mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'bob' for key 'users.uq_users_username'",
	})
	require.True(t, ok)
	assert.Equal(t, "uq_users_username", key)

	key, ok = MySQL.uniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	require.True(t, ok)
	assert.Empty(t, key)

	key, ok = Postgres.uniqueViolation(fmt.Errorf("insert: %w",
		&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"}))
	require.True(t, ok)
	assert.Equal(t, "uq_users_email", key)

	_, ok = MySQL.uniqueViolation(&mysql.MySQLError{Number: 1452})
	assert.False(t, ok)
	_, ok = Postgres.uniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)
	_, ok = MySQL.uniqueViolation(errors.New("boom"))
	assert.False(t, ok)
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "a|b", PairKey("b", "a"))
}

func TestMissing(t *testing.T) {
	assert.True(t, Postgres.missing(sql.ErrNoRows))
	assert.True(t, Postgres.missing(fmt.Errorf("query: %w", &pgconn.PgError{Code: "22P02"})))
	assert.True(t, MySQL.missing(fmt.Errorf("scan: %w", sql.ErrNoRows)))
	assert.False(t, Postgres.missing(&pgconn.PgError{Code: "23505"}))
	assert.False(t, Postgres.missing(errors.New("conn reset")))
	assert.False(t, Postgres.missing(nil))
}
