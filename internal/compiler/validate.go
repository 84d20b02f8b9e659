package compiler

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/reveal/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// Catalog errors (E201-E209)
	ErrCatalogEmpty    = "E201" // no animation kinds
	ErrKindLabelEmpty  = "E202" // label is required
	ErrDuplicateLabel  = "E203" // two kinds share a label
	ErrOpacityRange    = "E204" // opacity outside [0, 1]
	ErrInvalidKindName = "E205" // name is not a CSS identifier
	ErrTimingEmpty     = "E206" // timing function is blank

	// Assignment table errors (E210-E219)
	ErrUnknownBreakpoint = "E210" // table key is not a breakpoint
	ErrEmptyTarget       = "E211" // tuple has no target element
	ErrUnknownTarget     = "E212" // target is not among the page's elements
	ErrMissingKind       = "E213" // tuple has no animation kind
	ErrUnknownKind       = "E214" // kind is not in the catalog
	ErrMissingOrderIndex = "E215" // tuple has no order index
	ErrShadowedTuple     = "E216" // a later tuple for the same target wins
	ErrNegativeOrder     = "E217" // order index below zero
)

var kindNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidationError represents a catalog or table validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a catalog. Returns all errors found (does not fail-fast).
func Validate(catalog ir.Catalog) []ValidationError {
	var errs []ValidationError

	if catalog.Len() == 0 {
		errs = append(errs, ValidationError{
			Field:   "animation",
			Message: "catalog defines no animation kinds",
			Code:    ErrCatalogEmpty,
		})
	}
	if strings.TrimSpace(catalog.Timing()) == "" {
		errs = append(errs, ValidationError{
			Field:   "timing",
			Message: "timing function is blank",
			Code:    ErrTimingEmpty,
		})
	}

	labels := make(map[string]string)
	for _, kind := range catalog.Kinds() {
		field := "animation." + kind.Name

		if !kindNamePattern.MatchString(kind.Name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("kind name %q is not a valid keyframes identifier", kind.Name),
				Code:    ErrInvalidKindName,
			})
		}

		label := strings.TrimSpace(kind.Label)
		switch {
		case label == "":
			errs = append(errs, ValidationError{
				Field:   field + ".label",
				Message: "label is required",
				Code:    ErrKindLabelEmpty,
			})
		case labels[label] != "":
			errs = append(errs, ValidationError{
				Field:   field + ".label",
				Message: fmt.Sprintf("label %q already used by %q", label, labels[label]),
				Code:    ErrDuplicateLabel,
			})
		default:
			labels[label] = kind.Name
		}

		for _, f := range []struct {
			name  string
			frame ir.Frame
		}{
			{"from", kind.Keyframes.From},
			{"to", kind.Keyframes.To},
		} {
			if f.frame.Opacity < 0 || f.frame.Opacity > 1 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.%s.opacity", field, f.name),
					Message: fmt.Sprintf("opacity %v outside [0, 1]", f.frame.Opacity),
					Code:    ErrOpacityRange,
				})
			}
		}
	}

	return errs
}

// ValidateTable checks an assignment table against a catalog. When targets
// is non-nil, every tuple must name one of them. Problems the resolver
// tolerates at runtime are still reported here so authors can fix them.
func ValidateTable(table ir.AssignmentTable, catalog ir.Catalog, targets []string) []ValidationError {
	var errs []ValidationError

	for bp := range table {
		if !bp.Valid() {
			errs = append(errs, ValidationError{
				Field:   string(bp),
				Message: fmt.Sprintf("unknown breakpoint %q, must be one of %v", bp, ir.Breakpoints),
				Code:    ErrUnknownBreakpoint,
			})
		}
	}
	slices.SortFunc(errs, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })

	for _, bp := range ir.Breakpoints {
		tuples := table[bp]
		lastFor := make(map[string]int, len(tuples))
		for i, tuple := range tuples {
			if tuple.Target != "" {
				lastFor[tuple.Target] = i
			}
		}

		for i, tuple := range tuples {
			field := fmt.Sprintf("%s[%d]", bp, i)

			switch {
			case tuple.Target == "":
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "target element is required",
					Code:    ErrEmptyTarget,
				})
			case targets != nil && !slices.Contains(targets, tuple.Target):
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("unknown target element %q", tuple.Target),
					Code:    ErrUnknownTarget,
				})
			}

			if tuple.Kind == "" {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "animation kind is required",
					Code:    ErrMissingKind,
				})
			} else if _, ok := catalog.Lookup(tuple.Kind); !ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("unknown animation kind %q", tuple.Kind),
					Code:    ErrUnknownKind,
				})
			}

			switch {
			case !tuple.OrderSet:
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "order index is missing; the row was never mounted",
					Code:    ErrMissingOrderIndex,
				})
			case tuple.OrderIndex < 0:
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("order index %d is negative", tuple.OrderIndex),
					Code:    ErrNegativeOrder,
				})
			}

			if tuple.Target != "" && lastFor[tuple.Target] != i {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s[%d] also targets %q and takes precedence", bp, lastFor[tuple.Target], tuple.Target),
					Code:    ErrShadowedTuple,
				})
			}
		}
	}

	return errs
}
