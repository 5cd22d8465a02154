// Package migrations embeds the PostgreSQL schema migrations applied with goose.
package migrations

import "embed"

// Migrations holds the goose SQL files
//
//go:embed *.sql
var Migrations embed.FS
