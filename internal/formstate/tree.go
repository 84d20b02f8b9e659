package formstate

import (
	"errors"
	"fmt"

	"github.com/roach88/reveal/internal/ir"
)

// ErrTypeMismatch is returned when a write must descend through a scalar.
var ErrTypeMismatch = errors.New("type mismatch")

// Tree is an in-memory form-state store rooted at an object.
//
// Tree is not safe for concurrent use. Form mutations are serialized
// through the caller's event handling.
type Tree struct {
	root ir.IRObject
	rev  int64
}

// NewTree creates a tree holding a deep copy of root. A nil root starts empty.
func NewTree(root ir.IRObject) *Tree {
	if root == nil {
		return &Tree{root: ir.IRObject{}}
	}
	return &Tree{root: ir.Clone(root).(ir.IRObject)}
}

// Value returns the current root snapshot. Later writes never mutate it.
func (t *Tree) Value() ir.IRObject {
	return t.root
}

// Revision counts successful writes.
func (t *Tree) Revision() int64 {
	return t.rev
}

// Read returns the value at path and whether it exists. A malformed path
// reads as missing.
func (t *Tree) Read(path string) (ir.IRValue, bool) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	return Get(t.root, p)
}

// Write stores value at path, creating intermediate containers.
func (t *Tree) Write(path string, value ir.IRValue) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	return t.WritePath(p, value)
}

// WritePath is Write for a pre-parsed path.
func (t *Tree) WritePath(p Path, value ir.IRValue) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty path", ErrBadPath)
	}
	if value == nil {
		value = ir.IRNull{}
	}
	updated, err := set(t.root, p, ir.Clone(value))
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	obj, ok := updated.(ir.IRObject)
	if !ok {
		return fmt.Errorf("write %s: %w: root must stay an object", p, ErrTypeMismatch)
	}
	t.root = obj
	t.rev++
	return nil
}

// Get walks p from v. IRNull and missing entries read as absent.
func Get(v ir.IRValue, p Path) (ir.IRValue, bool) {
	cur := v
	for _, seg := range p {
		switch c := cur.(type) {
		case ir.IRObject:
			if seg.IsIndex {
				return nil, false
			}
			next, ok := c[seg.Key]
			if !ok {
				return nil, false
			}
			cur = next
		case ir.IRArray:
			if !seg.IsIndex || seg.Index >= len(c) {
				return nil, false
			}
			cur = c[seg.Index]
		default:
			return nil, false
		}
	}
	if _, isNull := cur.(ir.IRNull); isNull || cur == nil {
		return nil, false
	}
	return cur, true
}

// set returns a copy of cur with value stored at p. Only containers along
// the path are copied.
func set(cur ir.IRValue, p Path, value ir.IRValue) (ir.IRValue, error) {
	if len(p) == 0 {
		return value, nil
	}
	seg := p[0]

	if _, isNull := cur.(ir.IRNull); isNull || cur == nil {
		if seg.IsIndex {
			cur = ir.IRArray{}
		} else {
			cur = ir.IRObject{}
		}
	}

	switch c := cur.(type) {
	case ir.IRObject:
		if seg.IsIndex {
			return nil, fmt.Errorf("%w: index %d into object", ErrTypeMismatch, seg.Index)
		}
		child, err := set(c[seg.Key], p[1:], value)
		if err != nil {
			return nil, err
		}
		out := make(ir.IRObject, len(c)+1)
		for k, v := range c {
			out[k] = v
		}
		out[seg.Key] = child
		return out, nil

	case ir.IRArray:
		if !seg.IsIndex {
			return nil, fmt.Errorf("%w: key %q into list", ErrTypeMismatch, seg.Key)
		}
		size := max(len(c), seg.Index+1)
		out := make(ir.IRArray, size)
		copy(out, c)
		for i := len(c); i < size; i++ {
			out[i] = ir.IRNull{}
		}
		child, err := set(out[seg.Index], p[1:], value)
		if err != nil {
			return nil, err
		}
		out[seg.Index] = child
		return out, nil

	default:
		return nil, fmt.Errorf("%w: cannot descend into %T at %s", ErrTypeMismatch, cur, seg)
	}
}
