package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reveal/internal/ir"
)

func TestSaveDocument_FirstSave(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc, saved, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "landing", doc.Name)
	assert.Equal(t, int64(1), doc.Revision)
	assert.Equal(t, ir.MustDocumentHash(heroBody()), doc.Hash)
}

func TestSaveDocument_UnchangedBodyIsNoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)

	doc, saved, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, int64(1), doc.Revision)
	assert.Equal(t, "doc-1", doc.ID)

	revs, err := s.ListRevisions(ctx, "landing")
	require.NoError(t, err)
	assert.Len(t, revs, 1, "identical body must not append a revision")
}

func TestSaveDocument_AppendsRevisions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)

	edited := heroBody()
	edited["animations"].(ir.IRObject)["tablet"] = ir.IRArray{}
	doc, saved, err := s.SaveDocument(ctx, "landing", edited)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int64(2), doc.Revision)

	// Reverting to the first body is a new revision, not a no-op.
	doc, saved, err = s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int64(3), doc.Revision)

	revs, err := s.ListRevisions(ctx, "landing")
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, revs[0].Hash, revs[2].Hash)
	assert.Equal(t, `{"animations":{"mobile":[["hero","fadeIn",0]]}}`, revs[0].Body)
}

func TestSaveDocument_SeparateDocuments(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a, _, err := s.SaveDocument(ctx, "a", heroBody())
	require.NoError(t, err)
	b, _, err := s.SaveDocument(ctx, "b", heroBody())
	require.NoError(t, err)

	assert.Equal(t, "doc-1", a.ID)
	assert.Equal(t, "doc-2", b.ID)
	assert.Equal(t, int64(1), b.Revision, "revision seq is per document")
}

func TestSaveDocument_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveDocument(ctx, " ", heroBody())
	assert.Error(t, err)
}

func TestSaveDocument_NilBody(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc, saved, err := s.SaveDocument(ctx, "empty", nil)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, ir.IRObject{}, doc.Body)

	loaded, err := s.LoadDocument(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{}, loaded.Body)
}

func TestDeleteDocument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)
	require.NoError(t, s.DeleteDocument(ctx, "landing"))

	_, err = s.LoadDocument(ctx, "landing")
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM revisions").Scan(&n))
	assert.Equal(t, 0, n, "revisions cascade")

	assert.ErrorIs(t, s.DeleteDocument(ctx, "landing"), ErrNotFound)
}
