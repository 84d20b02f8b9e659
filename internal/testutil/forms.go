package testutil

import (
	"fmt"

	"github.com/roach88/reveal/internal/formstate"
	"github.com/roach88/reveal/internal/ir"
)

// SeedForm returns a form tree holding table at path. A nil table yields an
// empty form. table uses the plain Go shapes YAML and JSON decoders produce,
// for example {"mobile": [["hero", "fadeIn", 0]]}.
func SeedForm(path string, table map[string]any) (*formstate.Tree, error) {
	tree := formstate.NewTree(ir.IRObject{})
	if table == nil {
		return tree, nil
	}
	v, err := ir.FromGo(table)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	if err := tree.Write(path, v); err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return tree, nil
}
