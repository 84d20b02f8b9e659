package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reveal/internal/ir"
)

// CompileCatalog parses a CUE value holding `animation` and optional
// `timing` fields into a Catalog. Kinds keep their authored order.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	catalog, err := CompileCatalog(v)
func CompileCatalog(v cue.Value) (ir.Catalog, error) {
	if err := v.Err(); err != nil {
		return ir.Catalog{}, formatCUEError(err)
	}

	timing := ir.DefaultTiming
	if tv := v.LookupPath(cue.ParsePath("timing")); tv.Exists() {
		s, err := tv.String()
		if err != nil {
			return ir.Catalog{}, formatCUEError(err)
		}
		timing = s
	}

	animVal := v.LookupPath(cue.ParsePath("animation"))
	if !animVal.Exists() {
		return ir.Catalog{}, &CompileError{
			Field:   "animation",
			Message: "animation is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := animVal.Fields()
	if err != nil {
		return ir.Catalog{}, formatCUEError(err)
	}

	var kinds []ir.AnimationKind
	for iter.Next() {
		kind, err := CompileKind(iter.Label(), iter.Value())
		if err != nil {
			return ir.Catalog{}, err
		}
		kinds = append(kinds, kind)
	}
	return ir.NewCatalog(timing, kinds...), nil
}

// CompileKind parses one animation kind.
func CompileKind(name string, v cue.Value) (ir.AnimationKind, error) {
	if err := v.Err(); err != nil {
		return ir.AnimationKind{}, formatCUEError(err)
	}
	kind := ir.AnimationKind{Name: name}

	labelVal := v.LookupPath(cue.ParsePath("label"))
	if !labelVal.Exists() {
		return kind, &CompileError{
			Field:   "label",
			Message: fmt.Sprintf("animation %q: label is required", name),
			Pos:     v.Pos(),
		}
	}
	label, err := labelVal.String()
	if err != nil {
		return kind, formatCUEError(err)
	}
	kind.Label = label

	for _, f := range []struct {
		field string
		dst   *ir.Frame
	}{
		{"from", &kind.Keyframes.From},
		{"to", &kind.Keyframes.To},
	} {
		fv := v.LookupPath(cue.ParsePath(f.field))
		if !fv.Exists() {
			return kind, &CompileError{
				Field:   f.field,
				Message: fmt.Sprintf("animation %q: %s frame is required", name, f.field),
				Pos:     v.Pos(),
			}
		}
		frame, err := parseFrame(fv)
		if err != nil {
			return kind, err
		}
		*f.dst = frame
	}

	return kind, nil
}

// parseFrame reads {opacity, x, y}; missing fields are 0.
func parseFrame(v cue.Value) (ir.Frame, error) {
	var frame ir.Frame
	if v.IncompleteKind() != cue.StructKind {
		return frame, &CompileError{
			Field:   "frame",
			Message: fmt.Sprintf("frame must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	if ov := v.LookupPath(cue.ParsePath("opacity")); ov.Exists() {
		o, err := ov.Float64()
		if err != nil {
			return frame, formatCUEError(err)
		}
		frame.Opacity = o
	}

	for _, axis := range []struct {
		field string
		dst   *int
	}{
		{"x", &frame.TranslateX},
		{"y", &frame.TranslateY},
	} {
		av := v.LookupPath(cue.ParsePath(axis.field))
		if !av.Exists() {
			continue
		}
		if av.IncompleteKind() != cue.IntKind {
			return frame, &CompileError{
				Field:   axis.field,
				Message: "offsets are whole pixels; use an int",
				Pos:     av.Pos(),
			}
		}
		n, err := av.Int64()
		if err != nil {
			return frame, formatCUEError(err)
		}
		*axis.dst = int(n)
	}

	return frame, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
