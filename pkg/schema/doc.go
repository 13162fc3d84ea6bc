// Package schema defines the parsed relational-schema model consumed by the
// diagram builder.
//
// The model is produced by an external schema-description parser and handed
// to schemaflow as a JSON or YAML document. It is read-only: a new parse
// replaces the whole [Model], it is never mutated in place.
//
// # Identity
//
// Tables are addressed by an identity key. When the model contains a single
// schema the key is the bare table name; with multiple schemas it is
// "schema.table", which keeps duplicate table names apart:
//
//	m.TableKey(t)            // "users" or "core.users"
//	m.EndpointKey(ref.Source) // same rule for reference endpoints
//
// # Decoding
//
//	m, err := schema.ReadFile("schema.json")
//	m, err := schema.Decode(r, schema.FormatYAML)
//
// Decoding either succeeds completely or fails; a failed decode yields no
// model at all, and callers render an empty diagram.
package schema
