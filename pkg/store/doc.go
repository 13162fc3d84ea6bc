// Package store persists per-file diagram layouts.
//
// A layout record maps table and note identities to user-chosen positions.
// Each diagram file has exactly one record, addressed by its [FileID], a hash
// of the file's cleaned absolute path. Identity is independent of content:
// editing the schema keeps the record, moving the file starts a new one.
//
// # Architecture
//
// [Store] sits on top of a byte-level [Backend] and a record [Codec]:
//
//	Store ──► Codec (JSON | msgpack) ──► Backend (file | memory | redis | mongo | null)
//
// Backends only move bytes. The store owns encoding, retries, fail-soft
// reads and observability.
//
// # Failure Model
//
// Reads never fail: a missing, unreadable or corrupt record is reported as a
// warning and replaced by an empty record, so the diagram falls back to the
// automatic layout. Writes are full overwrites, atomic from the caller's
// point of view, retried with backoff when the backend reports a transient
// failure, and otherwise returned for logging.
//
// # Pruning
//
// [Prune] drops identities that no longer exist in the schema. It is
// idempotent; [Changed] tells the caller whether a write-back is needed.
package store
