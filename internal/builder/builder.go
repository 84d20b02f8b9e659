package builder

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/reveal/internal/engine"
	"github.com/roach88/reveal/internal/formstate"
	"github.com/roach88/reveal/internal/ir"
)

// Sentinel errors.
var (
	ErrUnknownBreakpoint = errors.New("unknown breakpoint")
	ErrInvalidOption     = errors.New("value is not one of the field's options")
	ErrNoRow             = errors.New("no such row")
	ErrHiddenField       = errors.New("field is not editable")
)

// Form is the form-state store the builder reads and writes.
// *formstate.Tree implements it.
type Form interface {
	Read(path string) (ir.IRValue, bool)
	Write(path string, value ir.IRValue) error
}

// Sequencer hands out row identities. *engine.Clock implements it.
type Sequencer interface {
	Next() int64
}

// RowID identifies a row for the lifetime of the builder.
type RowID int64

// State is a breakpoint list's authoring state.
type State int

const (
	// Empty means the breakpoint has no rows.
	Empty State = iota
	// HasRows means at least one row exists.
	HasRows
)

func (s State) String() string {
	if s == HasRows {
		return "has_rows"
	}
	return "empty"
}

// Row is one rendered assignment row. Paths holds the form path of each
// tuple slot, indexed by Field.
type Row struct {
	ID    RowID                 `json:"id"`
	Index int                   `json:"index"`
	Tuple ir.AssignmentTuple    `json:"tuple"`
	Paths [ir.TupleArity]string `json:"paths"`
}

// Option configures a Builder.
type Option func(*Builder)

// WithTargets sets the target element options.
func WithTargets(targets []ir.Option) Option {
	return func(b *Builder) { b.targets = slices.Clone(targets) }
}

// WithCatalog sets the catalog that supplies animation type options.
func WithCatalog(c ir.Catalog) Option {
	return func(b *Builder) { b.catalog = c }
}

// WithSequencer sets the row identity source.
func WithSequencer(s Sequencer) Option {
	return func(b *Builder) { b.seq = s }
}

// Builder edits the assignment table at one base path of a form.
//
// Builder is not safe for concurrent use.
type Builder struct {
	form    Form
	path    string
	catalog ir.Catalog
	targets []ir.Option
	seq     Sequencer
	active  ir.Breakpoint
	rows    map[ir.Breakpoint][]RowID
}

// New creates a builder for the table at path.
func New(form Form, path string, opts ...Option) (*Builder, error) {
	if _, err := formstate.ParsePath(path); err != nil {
		return nil, fmt.Errorf("builder path: %w", err)
	}
	b := &Builder{
		form:    form,
		path:    path,
		catalog: ir.DefaultCatalog(),
		seq:     engine.NewClock(),
		active:  ir.Mobile,
		rows:    make(map[ir.Breakpoint][]RowID),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Path returns the base path.
func (b *Builder) Path() string {
	return b.path
}

// Table decodes the current assignment table. Builder implements
// engine.TableSource.
func (b *Builder) Table() ir.AssignmentTable {
	v, _ := b.form.Read(b.path)
	return ir.TableFromValue(v)
}

// State reports whether bp has any rows.
func (b *Builder) State(bp ir.Breakpoint) State {
	if len(b.list(bp)) == 0 {
		return Empty
	}
	return HasRows
}

// AddRow appends an empty row to bp, mounts it and returns its identity.
func (b *Builder) AddRow(bp ir.Breakpoint) (RowID, error) {
	if !bp.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	ids := b.sync(bp)

	obj := b.object()
	list, isList := obj[string(bp)].(ir.IRArray)
	if isList {
		list = append(slices.Clone(list), ir.IRArray{})
	} else {
		list = ir.IRArray{ir.IRArray{}}
		ids = nil
	}
	obj[string(bp)] = list
	if err := b.form.Write(b.path, obj); err != nil {
		return 0, fmt.Errorf("add row: %w", err)
	}

	id := RowID(b.seq.Next())
	b.rows[bp] = append(ids, id)

	if err := b.MountRow(bp, len(list)-1); err != nil {
		return 0, err
	}
	return id, nil
}

// MountRow writes the row's position into its order slot unless the slot
// already holds a value.
func (b *Builder) MountRow(bp ir.Breakpoint, row int) error {
	if !bp.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	if row < 0 || row >= len(b.list(bp)) {
		return fmt.Errorf("mount %s[%d]: %w", bp, row, ErrNoRow)
	}
	p := b.FieldPath(bp, row, FieldOrder)
	if _, set := b.form.Read(p); set {
		return nil
	}
	if err := b.form.Write(p, ir.IRInt(row)); err != nil {
		return fmt.Errorf("mount row: %w", err)
	}
	return nil
}

// RemoveRow removes the row currently at position row. The position is
// resolved to a RowID at call time; an out-of-range position is a no-op.
func (b *Builder) RemoveRow(bp ir.Breakpoint, row int) error {
	if !bp.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	ids := b.sync(bp)
	if row < 0 || row >= len(ids) {
		return nil
	}
	return b.RemoveRowByID(bp, ids[row])
}

// RemoveRowByID removes the row with the given identity. Unknown
// identities are a no-op.
func (b *Builder) RemoveRowByID(bp ir.Breakpoint, id RowID) error {
	if !bp.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp)
	}
	ids := b.sync(bp)
	pos := slices.Index(ids, id)
	if pos < 0 {
		return nil
	}

	obj := b.object()
	list, _ := obj[string(bp)].(ir.IRArray)
	kept := make(ir.IRArray, 0, len(list)-1)
	for i, elem := range list {
		if i != pos {
			kept = append(kept, elem)
		}
	}
	obj[string(bp)] = kept
	if err := b.form.Write(b.path, obj); err != nil {
		return fmt.Errorf("remove row: %w", err)
	}

	b.rows[bp] = slices.Delete(slices.Clone(ids), pos, pos+1)
	return nil
}

// Rows returns bp's rows in list order.
func (b *Builder) Rows(bp ir.Breakpoint) []Row {
	ids := b.sync(bp)
	list := b.list(bp)
	rows := make([]Row, len(list))
	for i, elem := range list {
		rows[i] = Row{ID: ids[i], Index: i, Tuple: ir.TupleFromValue(elem)}
		for _, f := range []Field{FieldTarget, FieldKind, FieldOrder} {
			rows[i].Paths[f] = b.FieldPath(bp, i, f)
		}
	}
	return rows
}

// RowIDs returns the identities of bp's rows in list order.
func (b *Builder) RowIDs(bp ir.Breakpoint) []RowID {
	return slices.Clone(b.sync(bp))
}

// object returns a shallow copy of the table object, or an empty one.
func (b *Builder) object() ir.IRObject {
	v, _ := b.form.Read(b.path)
	src, _ := v.(ir.IRObject)
	obj := make(ir.IRObject, len(src)+1)
	for k, elem := range src {
		obj[k] = elem
	}
	return obj
}

func (b *Builder) list(bp ir.Breakpoint) ir.IRArray {
	v, _ := b.form.Read(b.path + "." + string(bp))
	list, _ := v.(ir.IRArray)
	return list
}

// sync aligns bp's identities with the list length. Rows added by another
// writer get fresh identities; if rows disappeared behind the builder's
// back, every identity is reissued.
func (b *Builder) sync(bp ir.Breakpoint) []RowID {
	n := len(b.list(bp))
	ids := b.rows[bp]
	switch {
	case len(ids) == n:
		return ids
	case len(ids) > n:
		ids = nil
	}
	for len(ids) < n {
		ids = append(ids, RowID(b.seq.Next()))
	}
	b.rows[bp] = ids
	return ids
}
