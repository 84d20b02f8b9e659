package formstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPath is returned for paths that cannot be parsed.
var ErrBadPath = errors.New("malformed path")

// Segment is one step of a path: an object key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return fmt.Sprintf("[%d]", s.Index)
	}
	return s.Key
}

// Path is a parsed form path.
type Path []Segment

// String renders the path in its canonical dotted/bracketed form.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if !seg.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Key appends an object key segment.
func (p Path) Key(k string) Path {
	return append(p[:len(p):len(p)], Segment{Key: k})
}

// Index appends a list index segment.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], Segment{Index: i, IsIndex: true})
}

// ParsePath parses "a.b[0][1]". Purely numeric dotted segments ("a.0") are
// treated as list indexes.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrBadPath)
	}

	var path Path
	i := 0
	expectKey := true
	for i < len(s) {
		switch c := s[i]; {
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrBadPath, s)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrBadPath, s[i+1:i+end], s)
			}
			path = append(path, Segment{Index: n, IsIndex: true})
			i += end + 1
			expectKey = false
		case c == '.':
			if expectKey {
				return nil, fmt.Errorf("%w: empty segment in %q", ErrBadPath, s)
			}
			i++
			expectKey = true
			if i == len(s) {
				return nil, fmt.Errorf("%w: trailing dot in %q", ErrBadPath, s)
			}
		default:
			if !expectKey {
				return nil, fmt.Errorf("%w: missing dot before %q in %q", ErrBadPath, s[i:], s)
			}
			end := strings.IndexAny(s[i:], ".[")
			if end < 0 {
				end = len(s) - i
			}
			key := s[i : i+end]
			if n, err := strconv.Atoi(key); err == nil && n >= 0 {
				path = append(path, Segment{Index: n, IsIndex: true})
			} else {
				path = append(path, Segment{Key: key})
			}
			i += end
			expectKey = false
		}
	}
	return path, nil
}

// MustParsePath is like ParsePath but panics on error.
// Use only with constant paths.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}
