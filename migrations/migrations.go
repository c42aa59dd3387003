// Package migrations хранит схему БД внутри бинарника.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
