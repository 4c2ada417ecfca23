// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS contains the forward migrations, applied in lexical order.
//
//go:embed *_up.sql
var FS embed.FS
