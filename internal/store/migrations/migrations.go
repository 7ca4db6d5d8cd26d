// Package migrations embeds the schema shared by the sqlite and
// postgres stores. The SQL sticks to types both engines accept.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
