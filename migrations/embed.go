// Package migrations embeds the schema migrations of both analytics stores.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql mongo/*.json
var files embed.FS

// Postgres returns the relational schema migrations
func Postgres() fs.FS {
	sub, _ := fs.Sub(files, "postgres")
	return sub
}

// Mongo returns the document store index migrations
func Mongo() fs.FS {
	sub, _ := fs.Sub(files, "mongo")
	return sub
}
