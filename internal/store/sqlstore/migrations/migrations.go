// Package migrations embeds the SQL schema shared by the sqlite and postgres backends.
package migrations

import "embed"

// FS holds the ordered *.sql schema files
//
//go:embed *.sql
var FS embed.FS
