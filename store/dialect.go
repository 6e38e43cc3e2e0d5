package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names supported by Open.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// dialect carries the few SQL differences between the supported engines.
type dialect struct {
	name   string
	driver string
	pk     string
	// returning is true when INSERT ... RETURNING id replaces LastInsertId.
	returning bool
}

var dialects = map[string]dialect{
	SQLite:   {name: SQLite, driver: "sqlite", pk: "INTEGER PRIMARY KEY AUTOINCREMENT"},
	Postgres: {name: Postgres, driver: "postgres", pk: "BIGSERIAL PRIMARY KEY", returning: true},
	MySQL:    {name: MySQL, driver: "mysql", pk: "BIGINT AUTO_INCREMENT PRIMARY KEY"},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return dialect{}, fmt.Errorf("store: unsupported dialect %q", name)
	}
	return d, nil
}

// placeholder returns the n-th (1-based) bind parameter.
func (d dialect) placeholder(n int) string {
	if d.name == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d dialect) placeholders(from, count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = d.placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}
