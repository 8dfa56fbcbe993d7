// Package uri maps between canonical {database, schema, name} resource
// identifiers and the flat table keys the backend stores, in the form
// {database}://default.{schema}/{name} with spaces encoded as underscores.
//
// The encoding is lossy by design: decode cannot tell an original space from
// an original underscore, so two names differing only in that respect collide
// on the same key. Stored backend identifiers already depend on this behavior,
// so it is preserved rather than fixed here.
package uri

import "strings"

// DefaultDatabase is the database assumed when a key carries none.
const DefaultDatabase = "optimusdb"

// ResourceID identifies a table-like resource in the catalog.
type ResourceID struct {
	Database string
	Schema   string
	Name     string
}

// Sentinel is the identity reported when a key cannot be parsed; downstream
// table lookups must always have some identity to report.
func Sentinel() ResourceID {
	return ResourceID{Database: DefaultDatabase, Schema: "default", Name: "unknown"}
}

// Encode builds the backend table key for the given identifier. Empty
// components get the backend defaults; spaces become underscores.
func Encode(database, schema, name string) string {
	if database == "" {
		database = DefaultDatabase
	}
	if schema == "" {
		schema = "default"
	}
	if name == "" {
		name = "unknown"
	}
	database = strings.ReplaceAll(database, " ", "_")
	schema = strings.ReplaceAll(schema, " ", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return database + "://default." + schema + "/" + name
}

// Key serializes the identifier as its backend table key.
func (id ResourceID) Key() string {
	return Encode(id.Database, id.Schema, id.Name)
}

// Decode parses a table key of the form {database}://{cluster}.{schema}/{name}
// back into its components. The cluster segment is discarded. Underscores are
// mapped back to spaces in schema and name. Malformed input yields Sentinel()
// rather than an error.
func Decode(key string) ResourceID {
	key = strings.ReplaceAll(strings.TrimSpace(key), "%20", " ")
	if key == "" {
		return Sentinel()
	}

	database := DefaultDatabase
	rest := key
	if before, after, found := strings.Cut(key, "://"); found {
		database = before
		rest = after
	}

	schema := "default"
	name := rest
	if clusterSchema, n, found := strings.Cut(rest, "/"); found {
		name = n
		if _, s, dotted := strings.Cut(clusterSchema, "."); dotted {
			schema = s
		}
	}

	if name == "" {
		return Sentinel()
	}

	return ResourceID{
		Database: database,
		Schema:   strings.ReplaceAll(schema, "_", " "),
		Name:     strings.ReplaceAll(name, "_", " "),
	}
}
