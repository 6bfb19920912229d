// Package migrations embeds the SQL schema migrations so the migrate tool
// and the test helpers apply the same files.
package migrations

import "embed"

// FS holds the numbered *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
