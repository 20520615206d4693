// Package appfs embeds the database migrations & email templates into the binaries.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS

// MigrationsDir returns the migrations directory of a database engine.
func MigrationsDir(engine string) string {
	return "migrations/" + engine
}
