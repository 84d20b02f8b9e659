package ir

import "sort"

// DefaultTiming is the easing applied to the first keyframe of every kind.
const DefaultTiming = "cubic-bezier(0,0,0,1)"

// Frame is one keyframe of an entrance animation.
type Frame struct {
	Opacity    float64 `json:"opacity"`
	TranslateX int     `json:"translate_x"` // px
	TranslateY int     `json:"translate_y"` // px
}

// Keyframes holds the from/to frames of an animation kind.
type Keyframes struct {
	From Frame `json:"from"`
	To   Frame `json:"to"`
}

// AnimationKind is one entry of the authored animation catalog.
type AnimationKind struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Keyframes Keyframes `json:"keyframes"`
}

// Option is a value/label pair offered by a selection field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalog is the immutable set of animation kinds available to authors and
// to the resolver. Construct it with NewCatalog; the zero value is empty.
type Catalog struct {
	timing string
	kinds  []AnimationKind
	index  map[string]int
}

// NewCatalog builds a catalog. Kinds keep the given order; a later kind with
// a duplicate name replaces the earlier one in place.
func NewCatalog(timing string, kinds ...AnimationKind) Catalog {
	if timing == "" {
		timing = DefaultTiming
	}
	c := Catalog{timing: timing, index: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		if i, ok := c.index[k.Name]; ok {
			c.kinds[i] = k
			continue
		}
		c.index[k.Name] = len(c.kinds)
		c.kinds = append(c.kinds, k)
	}
	return c
}

// DefaultCatalog returns the built-in entrance animations.
func DefaultCatalog() Catalog {
	hidden := func(x, y int) Frame { return Frame{Opacity: 0, TranslateX: x, TranslateY: y} }
	shown := Frame{Opacity: 1}
	return NewCatalog(DefaultTiming,
		AnimationKind{Name: "fadeIn", Label: "Fade in", Keyframes: Keyframes{From: hidden(0, 0), To: shown}},
		AnimationKind{Name: "fadeFromTop", Label: "Fade from top", Keyframes: Keyframes{From: hidden(0, -50), To: shown}},
		AnimationKind{Name: "fadeFromBottom", Label: "Fade from bottom", Keyframes: Keyframes{From: hidden(0, 50), To: shown}},
		AnimationKind{Name: "fadeFromLeft", Label: "Fade from left", Keyframes: Keyframes{From: hidden(50, 0), To: shown}},
		// Same offset as fadeFromLeft; authored catalogs can override it.
		AnimationKind{Name: "fadeFromRight", Label: "Fade from right", Keyframes: Keyframes{From: hidden(50, 0), To: shown}},
	)
}

// Timing returns the catalog's timing function.
func (c Catalog) Timing() string {
	if c.timing == "" {
		return DefaultTiming
	}
	return c.timing
}

// Lookup returns the kind with the given name.
func (c Catalog) Lookup(name string) (AnimationKind, bool) {
	i, ok := c.index[name]
	if !ok {
		return AnimationKind{}, false
	}
	return c.kinds[i], true
}

// Kinds returns a copy of the kinds in catalog order.
func (c Catalog) Kinds() []AnimationKind {
	out := make([]AnimationKind, len(c.kinds))
	copy(out, c.kinds)
	return out
}

// Names returns the kind names sorted lexically.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.kinds))
	for _, k := range c.kinds {
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of kinds.
func (c Catalog) Len() int {
	return len(c.kinds)
}

// Options returns the kinds as selection options in catalog order.
func (c Catalog) Options() []Option {
	opts := make([]Option, len(c.kinds))
	for i, k := range c.kinds {
		opts[i] = Option{Value: k.Name, Label: k.Label}
	}
	return opts
}

// ValueOptions builds options whose label is their value, for
// caller-supplied lists such as target element ids.
func ValueOptions(values ...string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v, Label: v}
	}
	return opts
}
