package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/reveal/internal/ir"
)

// createTestStore creates a store in a temp dir with deterministic ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(NewSequentialIDs("doc")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// heroBody is a form document with one mobile assignment.
func heroBody() ir.IRObject {
	return ir.IRObject{
		"animations": ir.IRObject{
			"mobile": ir.IRArray{
				ir.IRArray{ir.IRString("hero"), ir.IRString("fadeIn"), ir.IRInt(0)},
			},
		},
	}
}
