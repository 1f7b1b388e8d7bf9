// Package migrations embeds the SQL schema applied by pkg/db.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
