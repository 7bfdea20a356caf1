package migrations

import "embed"

// FS embeds the SQL schema migrations, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
