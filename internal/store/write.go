package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/reveal/internal/ir"
)

// SaveDocument stores body as the new head of the named document, creating
// the document on first save. It reports whether a revision was appended:
// a body whose hash matches the current head is not stored again.
func (s *Store) SaveDocument(ctx context.Context, name string, body ir.IRObject) (ir.Document, bool, error) {
	if strings.TrimSpace(name) == "" {
		return ir.Document{}, false, fmt.Errorf("save document: name is required")
	}

	bodyJSON, err := marshalBody(body)
	if err != nil {
		return ir.Document{}, false, fmt.Errorf("save document: %w", err)
	}
	hash, err := ir.DocumentHash(body)
	if err != nil {
		return ir.Document{}, false, fmt.Errorf("save document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ir.Document{}, false, fmt.Errorf("save document: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var (
		id       string
		headSeq  int64
		headHash string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, head_seq, head_hash FROM documents WHERE name = ?
	`, name).Scan(&id, &headSeq, &headHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = s.ids.Generate()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, name) VALUES (?, ?)
		`, id, name); err != nil {
			return ir.Document{}, false, fmt.Errorf("save document: insert: %w", err)
		}
	case err != nil:
		return ir.Document{}, false, fmt.Errorf("save document: lookup: %w", err)
	}

	doc := ir.Document{ID: id, Name: name, Body: ir.Clone(body).(ir.IRObject), Hash: hash, Revision: headSeq}
	if doc.Body == nil {
		doc.Body = ir.IRObject{}
	}
	if headHash == hash {
		return doc, false, nil
	}

	seq := headSeq + 1
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (document_id, seq, hash, body, schema_version)
		VALUES (?, ?, ?, ?, ?)
	`, id, seq, hash, bodyJSON, ir.SchemaVersion); err != nil {
		return ir.Document{}, false, fmt.Errorf("save document: insert revision: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET head_seq = ?, head_hash = ? WHERE id = ?
	`, seq, hash, id); err != nil {
		return ir.Document{}, false, fmt.Errorf("save document: update head: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ir.Document{}, false, fmt.Errorf("save document: commit: %w", err)
	}

	doc.Revision = seq
	return doc, true, nil
}

// DeleteDocument removes a document and its revisions.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete document %q: %w", name, ErrNotFound)
	}
	return nil
}
