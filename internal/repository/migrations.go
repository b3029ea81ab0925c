package repository

import (
	"embed"
	"io/fs"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// PostgresMigrations returns the embedded Postgres migration files. Files
// ending in .up.sql are applied in name order; 000_drop_all.sql drops the schema.
func PostgresMigrations() fs.FS {
	sub, err := fs.Sub(postgresMigrations, "migrations/postgres")
	if err != nil {
		panic(err)
	}
	return sub
}
