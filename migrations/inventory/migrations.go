// Package inventory embeds the goose migrations for the inventory ledger schema.
package inventory

import "embed"

//go:embed *.sql
var FS embed.FS
