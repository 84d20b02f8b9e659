// Package store provides SQLite-backed persistence for form documents.
//
// A document is a named form-state tree (the assignment table and any
// sibling form fields). Every save appends a revision holding the canonical
// JSON body and its content hash; the document row points at the head
// revision. Saving a body whose hash equals the head is a no-op, so
// repeated saves of an unchanged form do not grow the log.
//
// # Ordering
//
//   - Revisions are numbered by a per-document seq starting at 1
//   - Listings use ORDER BY with COLLATE BINARY for byte-stable output
//
// # Connection
//
// Open pins the pool to a single connection and sets WAL journaling,
// synchronous=NORMAL, a 5s busy timeout and foreign key enforcement.
// Schema changes after the base schema are numbered migrations tracked in
// PRAGMA user_version.
//
// Content hashes are computed by ir.DocumentHash over RFC 8785 canonical
// JSON with SHA-256 and domain separation.
package store
