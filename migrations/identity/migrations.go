// Package identity holds the tenants and users schema. It must be applied
// before the item schema, whose items table references tenants.
package identity

import "embed"

//go:embed *.sql
var FS embed.FS
