// Package migrations embeds the versioned SQL schema applied by golang-migrate.
package migrations

import "embed"

// FS holds the PostgreSQL migrations under postgres/.
//
//go:embed postgres/*.sql
var FS embed.FS

// PostgresDir is the directory inside FS holding the PostgreSQL migrations.
const PostgresDir = "postgres"
