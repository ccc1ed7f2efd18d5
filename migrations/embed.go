// Package migrations embeds the PostgreSQL schema migrations so the server
// binary and the integration tests can apply them with goose without
// depending on files at runtime.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
