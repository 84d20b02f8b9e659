package engine

import "github.com/roach88/reveal/internal/ir"

// Viewport observer settings used by hosts that track element visibility.
const (
	// ObserverThreshold is the visible fraction at which the observer
	// delivers an entry.
	ObserverThreshold = 0.35

	// ObserverRootMargin is the margin applied around the viewport.
	ObserverRootMargin = "0px"
)

// Ratio returns an intersection entry with the given visible fraction.
// A nil *ir.Intersection stands for an element not yet measured.
func Ratio(r float64) *ir.Intersection {
	return &ir.Intersection{Ratio: r}
}
