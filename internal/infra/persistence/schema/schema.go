// Package schema embeds the DDL applied by the durable persistence backends.
package schema

import (
	"bufio"
	_ "embed"
	"strings"
)

var (
	//go:embed sqlite.sql
	sqliteDDL string
	//go:embed postgres.sql
	postgresDDL string
)

// SQLite returns the SQLite DDL for the snapshot table.
func SQLite() string { return sqliteDDL }

// Postgres returns the Postgres DDL for the snapshot table.
func Postgres() string { return postgresDDL }

// SplitStatements splits a semicolon-terminated DDL script into executable statements.
// It drops blank lines and single-line comments that start with "--".
func SplitStatements(ddl string) []string {
	scanner := bufio.NewScanner(strings.NewReader(ddl))
	var stmts []string
	var current strings.Builder
	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
		current.Reset()
	}
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()
	return stmts
}
