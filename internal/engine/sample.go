package engine

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/roach88/reveal/internal/ir"
)

// easing is the curve Sample uses between keyframes. ease.OutExpo tracks
// cubic-bezier(0,0,0,1) closely: both leave the start at full speed and
// settle into the end frame.
var easing ease.TweenFunc = ease.OutExpo

// hidden is what a styled element shows when no keyframe applies.
var hidden = ir.Frame{Opacity: 0}

// Sample returns the frame an element shows elapsed after it became
// visible. Before the delay it holds the from-frame, during the animation
// it is tweened, and afterwards it keeps the to-frame.
//
// A descriptor that is not playing, or whose kind has no keyframes, samples
// to the hidden frame: the style pins opacity to 0 and nothing animates it.
func Sample(d ir.Descriptor, elapsed time.Duration) ir.Frame {
	if !d.Playing() || d.Keyframes == nil {
		return hidden
	}
	from, to := d.Keyframes.From, d.Keyframes.To

	t := elapsed - time.Duration(d.DelayMs)*time.Millisecond
	duration := time.Duration(d.DurationMs) * time.Millisecond
	switch {
	case t < 0:
		return from
	case t >= duration:
		return to
	}

	at := float32(t.Seconds())
	span := float32(duration.Seconds())
	return ir.Frame{
		Opacity:    float64(tween(float32(from.Opacity), float32(to.Opacity), span, at)),
		TranslateX: int(math.Round(float64(tween(float32(from.TranslateX), float32(to.TranslateX), span, at)))),
		TranslateY: int(math.Round(float64(tween(float32(from.TranslateY), float32(to.TranslateY), span, at)))),
	}
}

func tween(begin, end, span, at float32) float32 {
	v, _ := gween.New(begin, end, span, easing).Set(at)
	return v
}
