// Package dialect holds the SQL differences between the supported database
// drivers: placeholder tokens and how a freshly inserted key is read back.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names a SQL flavour
type Dialect int

const (
	MySQL Dialect = iota
	Postgres
	SQLite
)

// String returns the dialect name
func (d Dialect) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Drivers lists the database/sql driver names ForDriver accepts. Each one is
// the name its driver package registers, so it can go to sql.Open unchanged.
var Drivers = []string{"mysql", "pgx", "postgres", "sqlite3"}

// ForDriver maps a registered database/sql driver name to its dialect
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return MySQL, nil
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return MySQL, fmt.Errorf("unsupported database driver %q, use one of %s", driver, strings.Join(Drivers, ", "))
	}
}

// Placeholder returns the bind token for the n-th (1-based) parameter
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns count comma-separated bind tokens starting at from
func (d Dialect) Placeholders(from, count int) string {
	tokens := make([]string, count)
	for i := range tokens {
		tokens[i] = d.Placeholder(from + i)
	}
	return strings.Join(tokens, ", ")
}

// SupportsReturning reports whether INSERT ... RETURNING yields the new key
func (d Dialect) SupportsReturning() bool {
	return d == Postgres
}

// Counter hands out sequential placeholders while a statement is built
type Counter struct {
	dialect Dialect
	n       int
}

// NewCounter creates a placeholder counter starting at 1
func NewCounter(d Dialect) *Counter {
	return &Counter{dialect: d}
}

// Next returns the next placeholder token
func (c *Counter) Next() string {
	c.n++
	return c.dialect.Placeholder(c.n)
}

// Count returns the number of placeholders handed out so far
func (c *Counter) Count() int {
	return c.n
}
