// Package migrations carries the cache database schema as embedded SQL
// migration files.
package migrations

import "embed"

// FS exposes the migration files to the migrate iofs source.
//
//go:embed *.sql
var FS embed.FS
