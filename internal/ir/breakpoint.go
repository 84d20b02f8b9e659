package ir

import "fmt"

// Breakpoint is a discrete viewport-size class.
// The zero value means the environment could not classify the viewport.
type Breakpoint string

const (
	Mobile  Breakpoint = "mobile"
	Tablet  Breakpoint = "tablet"
	Desktop Breakpoint = "desktop"

	Unclassified Breakpoint = ""
)

// Breakpoints lists every breakpoint from coarsest to finest.
// Candidate styles are computed and tabs are presented in this order.
var Breakpoints = []Breakpoint{Mobile, Tablet, Desktop}

var breakpointLabels = map[Breakpoint]string{
	Mobile:  "Mobile",
	Tablet:  "Tablet",
	Desktop: "Desktop",
}

// Label returns the human-readable tab label.
func (b Breakpoint) Label() string {
	if l, ok := breakpointLabels[b]; ok {
		return l
	}
	return string(b)
}

// Valid reports whether b is one of the known breakpoints.
func (b Breakpoint) Valid() bool {
	_, ok := breakpointLabels[b]
	return ok
}

// ParseBreakpoint converts a string into a Breakpoint.
// The empty string parses to Unclassified.
func ParseBreakpoint(s string) (Breakpoint, error) {
	b := Breakpoint(s)
	if b == Unclassified || b.Valid() {
		return b, nil
	}
	return Unclassified, fmt.Errorf("unknown breakpoint %q: must be one of %v", s, Breakpoints)
}

// Thresholds are the minimum viewport widths (px) of the wider classes.
type Thresholds struct {
	TabletMinWidth  int `json:"tablet_min_width"`
	DesktopMinWidth int `json:"desktop_min_width"`
}

// DefaultThresholds mirrors the design system's medium/large breakpoints.
var DefaultThresholds = Thresholds{
	TabletMinWidth:  600,
	DesktopMinWidth: 1136,
}

// BreakpointForWidth classifies a viewport width.
// Non-positive widths cannot be classified.
func BreakpointForWidth(width int, th Thresholds) Breakpoint {
	switch {
	case width <= 0:
		return Unclassified
	case width >= th.DesktopMinWidth:
		return Desktop
	case width >= th.TabletMinWidth:
		return Tablet
	default:
		return Mobile
	}
}
