package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentHashDeterminism(t *testing.T) {
	body := IRObject{
		"animations": AssignmentTable{Mobile: {NewTuple("hero", "fadeIn", 0)}}.Value(),
	}

	h1, err := DocumentHash(body)
	require.NoError(t, err)
	h2, err := DocumentHash(Clone(body).(IRObject))
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestDocumentHashChangesWithBody(t *testing.T) {
	a := MustDocumentHash(IRObject{"mobile": IRArray{NewTuple("hero", "fadeIn", 0).Value()}})
	b := MustDocumentHash(IRObject{"mobile": IRArray{NewTuple("hero", "fadeIn", 1).Value()}})
	assert.NotEqual(t, a, b)
}

func TestTableHashDomainSeparation(t *testing.T) {
	table := AssignmentTable{Mobile: {NewTuple("hero", "fadeIn", 0)}}

	th, err := TableHash(table)
	require.NoError(t, err)
	dh, err := DocumentHash(table.Value())
	require.NoError(t, err)

	assert.NotEqual(t, th, dh, "same bytes under different domains must not collide")
}
