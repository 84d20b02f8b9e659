package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reveal/internal/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateDefaultCatalog(t *testing.T) {
	assert.Empty(t, Validate(ir.DefaultCatalog()))
}

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name    string
		catalog ir.Catalog
		want    []string
	}{
		{
			name:    "empty catalog",
			catalog: ir.NewCatalog(""),
			want:    []string{ErrCatalogEmpty},
		},
		{
			name:    "blank timing",
			catalog: ir.NewCatalog("  ", ir.AnimationKind{Name: "a", Label: "A"}),
			want:    []string{ErrTimingEmpty},
		},
		{
			name:    "missing label",
			catalog: ir.NewCatalog("", ir.AnimationKind{Name: "a"}),
			want:    []string{ErrKindLabelEmpty},
		},
		{
			name: "duplicate label",
			catalog: ir.NewCatalog("",
				ir.AnimationKind{Name: "a", Label: "Fade"},
				ir.AnimationKind{Name: "b", Label: "Fade"},
			),
			want: []string{ErrDuplicateLabel},
		},
		{
			name:    "bad name",
			catalog: ir.NewCatalog("", ir.AnimationKind{Name: "fade in", Label: "Fade"}),
			want:    []string{ErrInvalidKindName},
		},
		{
			name: "opacity out of range",
			catalog: ir.NewCatalog("", ir.AnimationKind{
				Name:      "a",
				Label:     "A",
				Keyframes: ir.Keyframes{From: ir.Frame{Opacity: -0.5}, To: ir.Frame{Opacity: 2}},
			}),
			want: []string{ErrOpacityRange, ErrOpacityRange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(Validate(tt.catalog)))
		})
	}
}

func TestValidateTableClean(t *testing.T) {
	table := ir.AssignmentTable{
		ir.Mobile:  {ir.NewTuple("hero", "fadeIn", 0), ir.NewTuple("card", "fadeFromTop", 1)},
		ir.Desktop: {},
	}
	assert.Empty(t, ValidateTable(table, ir.DefaultCatalog(), []string{"hero", "card"}))
	assert.Empty(t, ValidateTable(table, ir.DefaultCatalog(), nil), "nil targets skips the target check")
	assert.Empty(t, ValidateTable(nil, ir.DefaultCatalog(), nil))
}

func TestValidateTableProblems(t *testing.T) {
	table := ir.AssignmentTable{
		ir.Mobile: {
			{},
			ir.NewTuple("hero", "fadeIn", 0),
			ir.NewTuple("hero", "spinIn", 2),
		},
		ir.Tablet: {
			{Target: "footer", Kind: "fadeIn"},
			ir.NewTuple("hero", "fadeIn", -1),
		},
		"watch": {ir.NewTuple("hero", "fadeIn", 0)},
	}

	errs := ValidateTable(table, ir.DefaultCatalog(), []string{"hero"})

	assert.Equal(t, []string{
		ErrUnknownBreakpoint,
		// mobile[0]
		ErrEmptyTarget, ErrMissingKind, ErrMissingOrderIndex,
		// mobile[1]
		ErrShadowedTuple,
		// mobile[2]
		ErrUnknownKind,
		// tablet[0]
		ErrUnknownTarget, ErrMissingOrderIndex,
		// tablet[1]
		ErrNegativeOrder,
	}, codes(errs))

	require.Len(t, errs, 9)
	assert.Equal(t, "watch", errs[0].Field)
	assert.Equal(t, "mobile[1]", errs[4].Field)
	assert.Contains(t, errs[4].Message, "mobile[2]")
}

func TestValidationErrorString(t *testing.T) {
	err := ValidationError{Field: "mobile[0]", Message: "target element is required", Code: ErrEmptyTarget}
	assert.Equal(t, "[E211] mobile[0]: target element is required", err.Error())
}
