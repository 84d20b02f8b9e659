package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reveal/internal/ir"
)

func TestLoadDocument_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	saved, _, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)

	doc, err := s.LoadDocument(ctx, "landing")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, doc.ID)
	assert.Equal(t, saved.Hash, doc.Hash)
	assert.Equal(t, int64(1), doc.Revision)
	assert.True(t, ir.Equal(heroBody(), doc.Body))

	table := ir.TableFromValue(doc.Body["animations"])
	assert.Equal(t, ir.NewTuple("hero", "fadeIn", 0), table[ir.Mobile][0])
}

func TestLoadDocument_ReturnsHead(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)
	_, _, err = s.SaveDocument(ctx, "landing", ir.IRObject{"animations": ir.IRObject{}})
	require.NoError(t, err)

	doc, err := s.LoadDocument(ctx, "landing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Revision)
	assert.Equal(t, ir.IRObject{"animations": ir.IRObject{}}, doc.Body)

	first, err := s.LoadRevision(ctx, "landing", 1)
	require.NoError(t, err)
	assert.True(t, ir.Equal(heroBody(), first.Body))
	assert.Equal(t, int64(1), first.Revision)

	_, err = s.LoadRevision(ctx, "landing", 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDocument_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	for _, name := range []string{"zeta", "Alpha", "beta"} {
		_, _, err := s.SaveDocument(ctx, name, heroBody())
		require.NoError(t, err)
	}

	docs, err = s.ListDocuments(ctx)
	require.NoError(t, err)
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
		assert.Nil(t, d.Body, "listings carry no bodies")
	}
	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, names, "binary collation")
}

func TestListRevisions_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ListRevisions(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevisionsWithHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a, _, err := s.SaveDocument(ctx, "landing", heroBody())
	require.NoError(t, err)
	_, _, err = s.SaveDocument(ctx, "landing", ir.IRObject{})
	require.NoError(t, err)
	_, _, err = s.SaveDocument(ctx, "pricing", heroBody())
	require.NoError(t, err)

	revs, err := s.RevisionsWithHash(ctx, a.Hash)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "doc-1", revs[0].DocumentID)
	assert.Equal(t, int64(1), revs[0].Seq)
	assert.Equal(t, "doc-2", revs[1].DocumentID)

	none, err := s.RevisionsWithHash(ctx, "sha256:missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
