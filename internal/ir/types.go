package ir

// FillForwards is the only fill mode the resolver produces. The element keeps
// the final keyframe once the entrance animation finishes.
const FillForwards = "forwards"

// Intersection is the visibility signal delivered by the viewport observer
// for one tracked element. A nil *Intersection means the element has not been
// measured yet.
type Intersection struct {
	Ratio float64 `json:"intersection_ratio"`
}

// Visible reports whether the entry shows any positive overlap.
// A nil entry is never visible.
func (in *Intersection) Visible() bool {
	return in != nil && in.Ratio > 0
}

// Descriptor is the resolved entrance animation for one element.
//
// AnimationName is empty while the element is not visible; the timing is
// still computed so playback can start as soon as visibility flips.
type Descriptor struct {
	AnimationName  string     `json:"animation_name"`
	Kind           string     `json:"kind"`
	DelayMs        int64      `json:"delay_ms"`
	DurationMs     int64      `json:"duration_ms"`
	FillMode       string     `json:"fill_mode"`
	Opacity        int64      `json:"opacity"`
	TimingFunction string     `json:"timing_function,omitempty"`
	Keyframes      *Keyframes `json:"keyframes,omitempty"`
	Source         Breakpoint `json:"source"` // breakpoint whose assignment produced this style
}

// Playing reports whether the descriptor actually assigns an animation.
func (d Descriptor) Playing() bool {
	return d.AnimationName != ""
}

// Document is a named form-state tree persisted by the document store.
type Document struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Body     IRObject `json:"body"`
	Hash     string   `json:"hash"`
	Revision int64    `json:"revision"`
}

// Revision is one entry in a document's append-only revision log.
type Revision struct {
	DocumentID string `json:"document_id"`
	Seq        int64  `json:"seq"`
	Hash       string `json:"hash"`
	Body       string `json:"body"` // canonical JSON
}
