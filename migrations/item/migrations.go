// Package item holds the items schema.
package item

import "embed"

//go:embed *.sql
var FS embed.FS
