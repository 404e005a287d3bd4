package migrations

import "embed"

// FS contains embedded SQLite migrations for the operations journal.
//
//go:embed *.sql
var FS embed.FS
