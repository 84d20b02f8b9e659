package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/reveal/internal/ir"
)

// Declaration is one CSS property/value pair.
type Declaration struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Declarations renders a resolved descriptor as inline style declarations.
// A descriptor that is not playing keeps its timing and names no animation.
func Declarations(d ir.Descriptor) []Declaration {
	name := d.AnimationName
	if name == "" {
		name = "none"
	}
	return []Declaration{
		{Property: "opacity", Value: strconv.FormatInt(d.Opacity, 10)},
		{Property: "animation-name", Value: name},
		{Property: "animation-delay", Value: fmt.Sprintf("%dms", d.DelayMs)},
		{Property: "animation-duration", Value: fmt.Sprintf("%dms", d.DurationMs)},
		{Property: "animation-fill-mode", Value: d.FillMode},
	}
}

// StyleCSS renders the descriptor as an inline style attribute value.
// An unresolved element gets an empty style.
func StyleCSS(d ir.Descriptor, ok bool) string {
	if !ok {
		return ""
	}
	decls := Declarations(d)
	parts := make([]string, len(decls))
	for i, decl := range decls {
		parts[i] = decl.Property + ": " + decl.Value + ";"
	}
	return strings.Join(parts, " ")
}

// KeyframesCSS renders every catalog kind as an @keyframes block, in
// catalog order. The timing function is attached to the first frame.
func KeyframesCSS(c ir.Catalog) string {
	var b strings.Builder
	for i, kind := range c.Kinds() {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeKeyframes(&b, kind, c.Timing())
	}
	return b.String()
}

func writeKeyframes(b *strings.Builder, kind ir.AnimationKind, timing string) {
	from, to := kind.Keyframes.From, kind.Keyframes.To
	ax := axes{
		x: from.TranslateX != 0 || to.TranslateX != 0,
		y: from.TranslateY != 0 || to.TranslateY != 0,
	}

	fmt.Fprintf(b, "@keyframes %s {\n", kind.Name)
	b.WriteString("  from {\n")
	writeFrame(b, from, ax)
	fmt.Fprintf(b, "    animation-timing-function: %s;\n", timing)
	b.WriteString("  }\n")
	b.WriteString("  to {\n")
	writeFrame(b, to, ax)
	b.WriteString("  }\n")
	b.WriteString("}\n")
}

// axes records which translate axes a kind animates.
type axes struct{ x, y bool }

func writeFrame(b *strings.Builder, f ir.Frame, ax axes) {
	fmt.Fprintf(b, "    opacity: %s;\n", strconv.FormatFloat(f.Opacity, 'f', -1, 64))
	switch {
	case ax.x && ax.y:
		fmt.Fprintf(b, "    transform: translate(%dpx, %dpx);\n", f.TranslateX, f.TranslateY)
	case ax.x:
		fmt.Fprintf(b, "    transform: translateX(%dpx);\n", f.TranslateX)
	case ax.y:
		fmt.Fprintf(b, "    transform: translateY(%dpx);\n", f.TranslateY)
	}
}
