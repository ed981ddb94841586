// Package migrations embeds the goose SQL migrations of the server database.
package migrations

import "embed"

// Migrations holds the *.sql files at the package root; goose is pointed at ".".
//
//go:embed *.sql
var Migrations embed.FS
