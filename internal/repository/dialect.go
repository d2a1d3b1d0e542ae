package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect captures the few SQL differences between the supported databases:
// placeholder style, upsert syntax and how unique violations are reported.
type Dialect int

const (
	MySQL Dialect = iota
	Postgres
)

// ParseDialect maps a driver name from configuration to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql", "":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return MySQL, fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "mysql"
}

// Rebind rewrites '?' placeholders to '$n' for PostgreSQL. Queries in this
// package never contain literal question marks.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// uniqueViolation reports whether err is a unique-constraint violation and,
// when the driver exposes it, the name of the violated constraint.
func (d Dialect) uniqueViolation(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		// Duplicate entry 'x' for key 'users.uq_users_email'
		msg := me.Message
		if i := strings.LastIndex(msg, "for key '"); i >= 0 {
			key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
			if j := strings.LastIndex(key, "."); j >= 0 {
				key = key[j+1:]
			}
			return key, true
		}
		return "", true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == "23505" {
		return pe.ConstraintName, true
	}
	return "", false
}

// missing reports whether err means the addressed row does not exist. Besides
// sql.ErrNoRows this covers ids PostgreSQL cannot parse as a uuid (22P02),
// which can never match a row.
func (d Dialect) missing(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == "22P02"
}
