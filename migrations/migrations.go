// Package migrations holds the forward-only SQL schema, applied at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
