package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/reveal/internal/ir"
)

// LoadDocument returns the head revision of the named document.
func (s *Store) LoadDocument(ctx context.Context, name string) (ir.Document, error) {
	var doc ir.Document
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, d.head_seq, r.hash, r.body
		FROM documents d
		JOIN revisions r ON r.document_id = d.id AND r.seq = d.head_seq
		WHERE d.name = ?
	`, name).Scan(&doc.ID, &doc.Name, &doc.Revision, &doc.Hash, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Document{}, fmt.Errorf("load document %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return ir.Document{}, fmt.Errorf("load document: %w", err)
	}

	doc.Body, err = unmarshalBody(body)
	if err != nil {
		return ir.Document{}, fmt.Errorf("load document %q: %w", name, err)
	}
	return doc, nil
}

// LoadRevision returns the named document as of revision seq.
func (s *Store) LoadRevision(ctx context.Context, name string, seq int64) (ir.Document, error) {
	var doc ir.Document
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, r.seq, r.hash, r.body
		FROM documents d
		JOIN revisions r ON r.document_id = d.id
		WHERE d.name = ? AND r.seq = ?
	`, name, seq).Scan(&doc.ID, &doc.Name, &doc.Revision, &doc.Hash, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Document{}, fmt.Errorf("load %q revision %d: %w", name, seq, ErrNotFound)
	}
	if err != nil {
		return ir.Document{}, fmt.Errorf("load revision: %w", err)
	}

	doc.Body, err = unmarshalBody(body)
	if err != nil {
		return ir.Document{}, fmt.Errorf("load %q revision %d: %w", name, seq, err)
	}
	return doc, nil
}

// ListDocuments returns every document without bodies, ordered by name.
//
// Returns an empty slice (not nil) if the store holds no documents.
func (s *Store) ListDocuments(ctx context.Context) ([]ir.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, head_seq, head_hash
		FROM documents
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []ir.Document{}
	for rows.Next() {
		var doc ir.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Revision, &doc.Hash); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// ListRevisions returns the named document's revision log, oldest first.
func (s *Store) ListRevisions(ctx context.Context, name string) ([]ir.Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.document_id, r.seq, r.hash, r.body
		FROM revisions r
		JOIN documents d ON d.id = r.document_id
		WHERE d.name = ?
		ORDER BY r.seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	revs := []ir.Revision{}
	for rows.Next() {
		var rev ir.Revision
		if err := rows.Scan(&rev.DocumentID, &rev.Seq, &rev.Hash, &rev.Body); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("list revisions %q: %w", name, ErrNotFound)
	}
	return revs, nil
}

// RevisionsWithHash returns every stored revision whose body hashes to
// hash, across all documents, ordered by document id then seq. Two
// documents holding the same assignment table share a hash.
func (s *Store) RevisionsWithHash(ctx context.Context, hash string) ([]ir.Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, seq, hash, body
		FROM revisions
		WHERE hash = ?
		ORDER BY document_id ASC, seq ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query revisions by hash: %w", err)
	}
	defer rows.Close()

	revs := []ir.Revision{}
	for rows.Next() {
		var rev ir.Revision
		if err := rows.Scan(&rev.DocumentID, &rev.Seq, &rev.Hash, &rev.Body); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}
