package builder

import (
	"fmt"
	"slices"

	"github.com/roach88/reveal/internal/ir"
)

// Field is a tuple position edited by the builder.
type Field int

const (
	FieldTarget Field = ir.TupleTarget
	FieldKind   Field = ir.TupleKind
	FieldOrder  Field = ir.TupleOrder
)

// FieldSpec describes one input rendered for every row.
type FieldSpec struct {
	Field   Field       `json:"field"`
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Hidden  bool        `json:"hidden,omitempty"`
	Options []ir.Option `json:"options,omitempty"`
}

// Fields returns the per-row inputs: the two selections followed by the
// hidden order slot.
func (b *Builder) Fields() []FieldSpec {
	return []FieldSpec{
		{Field: FieldTarget, Name: "targetElement", Label: "Target element", Options: slices.Clone(b.targets)},
		{Field: FieldKind, Name: "animationType", Label: "Animation type", Options: b.catalog.Options()},
		{Field: FieldOrder, Name: "schemaIndex", Label: "Schema index passthrough", Hidden: true},
	}
}

// ParseField maps a field name or short alias to its position.
func ParseField(s string) (Field, error) {
	switch s {
	case "targetElement", "target":
		return FieldTarget, nil
	case "animationType", "animation", "kind":
		return FieldKind, nil
	case "schemaIndex", "order":
		return FieldOrder, nil
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// FieldPath returns the form path of one tuple slot, e.g.
// "animations.tablet[1][0]".
func (b *Builder) FieldPath(bp ir.Breakpoint, row int, field Field) string {
	return fmt.Sprintf("%s.%s[%d][%d]", b.path, bp, row, int(field))
}

// SetField writes a selection into a row. A field configured without
// options accepts any non-empty value.
func (b *Builder) SetField(bp ir.Breakpoint, row int, field Field, value string) error {
	if !bp.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	var spec FieldSpec
	switch field {
	case FieldTarget, FieldKind:
		spec = b.Fields()[field]
	default:
		return fmt.Errorf("set field %d: %w", field, ErrHiddenField)
	}
	if row < 0 || row >= len(b.list(bp)) {
		return fmt.Errorf("set %s[%d]: %w", bp, row, ErrNoRow)
	}
	if !allowed(spec.Options, value) {
		return fmt.Errorf("%s %q: %w", spec.Name, value, ErrInvalidOption)
	}
	if err := b.form.Write(b.FieldPath(bp, row, field), ir.IRString(value)); err != nil {
		return fmt.Errorf("set field: %w", err)
	}
	return nil
}

func allowed(opts []ir.Option, value string) bool {
	if value == "" {
		return false
	}
	if len(opts) == 0 {
		return true
	}
	return slices.ContainsFunc(opts, func(o ir.Option) bool { return o.Value == value })
}

// Tab is one breakpoint tab.
type Tab struct {
	Breakpoint ir.Breakpoint `json:"breakpoint"`
	Label      string        `json:"label"`
	Active     bool          `json:"active"`
	State      string        `json:"state"`
}

// Tabs lists the breakpoint tabs in display order.
func (b *Builder) Tabs() []Tab {
	tabs := make([]Tab, len(ir.Breakpoints))
	for i, bp := range ir.Breakpoints {
		tabs[i] = Tab{
			Breakpoint: bp,
			Label:      bp.Label(),
			Active:     bp == b.active,
			State:      b.State(bp).String(),
		}
	}
	return tabs
}

// ActiveTab returns the selected breakpoint. It starts at mobile.
func (b *Builder) ActiveTab() ir.Breakpoint {
	return b.active
}

// SelectTab changes the active tab. The table is not touched.
func (b *Builder) SelectTab(bp ir.Breakpoint) error {
	if !bp.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	b.active = bp
	return nil
}
