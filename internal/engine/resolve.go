package engine

import (
	"math"

	"github.com/roach88/reveal/internal/ir"
)

// Resolution defaults.
const (
	// DefaultDelayRateMs is the delay added per order index.
	DefaultDelayRateMs int64 = 150

	// DefaultDurationMs is the entrance animation length.
	DefaultDurationMs int64 = 1000
)

// Resolver computes animation descriptors from an assignment table.
//
// A Resolver is immutable after construction and safe for concurrent use.
// It never returns errors: malformed tuples, unknown breakpoints and
// unmeasured elements all resolve to "no animation".
type Resolver struct {
	catalog    ir.Catalog
	chain      FallbackChain
	delayRate  int64
	durationMs int64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDelayRate sets the per-order-index delay in milliseconds.
func WithDelayRate(ms int64) ResolverOption {
	return func(r *Resolver) { r.delayRate = ms }
}

// WithDuration sets the animation duration in milliseconds.
func WithDuration(ms int64) ResolverOption {
	return func(r *Resolver) { r.durationMs = ms }
}

// WithFallbackChain replaces the default mobile < tablet < desktop chain.
func WithFallbackChain(chain FallbackChain) ResolverOption {
	return func(r *Resolver) { r.chain = chain }
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog ir.Catalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog:    catalog,
		chain:      DefaultFallbackChain(),
		delayRate:  DefaultDelayRateMs,
		durationMs: DefaultDurationMs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog the resolver attaches keyframes from.
func (r *Resolver) Catalog() ir.Catalog {
	return r.catalog
}

// Chain returns the resolver's fallback chain.
func (r *Resolver) Chain() FallbackChain {
	return r.chain
}

// Resolve returns the descriptor for target at the active breakpoint.
// The boolean is false when no breakpoint in the fallback chain yields a
// candidate, which callers render as an empty style.
func (r *Resolver) Resolve(table ir.AssignmentTable, target string, bp ir.Breakpoint, in *ir.Intersection) (ir.Descriptor, bool) {
	for _, step := range r.chain.For(bp) {
		if d, ok := r.Candidate(table, step, target, in); ok {
			return d, true
		}
	}
	return ir.Descriptor{}, false
}

// Candidate computes the style a single breakpoint's list assigns to target,
// ignoring fallback. Only the last tuple naming target counts, even when it
// is incomplete.
func (r *Resolver) Candidate(table ir.AssignmentTable, bp ir.Breakpoint, target string, in *ir.Intersection) (ir.Descriptor, bool) {
	if in == nil {
		return ir.Descriptor{}, false
	}
	matches := table.Matching(bp, target)
	if len(matches) == 0 {
		return ir.Descriptor{}, false
	}
	last := matches[len(matches)-1]
	if last.Kind == "" || !last.OrderSet {
		return ir.Descriptor{}, false
	}
	delay, ok := delayFor(last.OrderIndex, r.delayRate)
	if !ok {
		return ir.Descriptor{}, false
	}

	d := ir.Descriptor{
		Kind:           last.Kind,
		DelayMs:        delay,
		DurationMs:     r.durationMs,
		FillMode:       ir.FillForwards,
		Opacity:        0,
		TimingFunction: r.catalog.Timing(),
		Source:         bp,
	}
	if in.Visible() {
		d.AnimationName = last.Kind
	}
	if kind, ok := r.catalog.Lookup(last.Kind); ok {
		kf := kind.Keyframes
		d.Keyframes = &kf
	}
	return d, true
}

// delayFor returns order*rate, or false when the product overflows int64.
// An order index that large is treated like a missing one.
func delayFor(order, rate int64) (int64, bool) {
	if order == 0 || rate == 0 {
		return 0, true
	}
	if (order == -1 && rate == math.MinInt64) || (rate == -1 && order == math.MinInt64) {
		return 0, false
	}
	p := order * rate
	if p/rate != order {
		return 0, false
	}
	return p, true
}

// ResolveAll resolves every target against the same table and breakpoint.
// Targets without a descriptor are omitted from the result.
func (r *Resolver) ResolveAll(table ir.AssignmentTable, targets []string, bp ir.Breakpoint, entries map[string]*ir.Intersection) map[string]ir.Descriptor {
	out := make(map[string]ir.Descriptor, len(targets))
	for _, target := range targets {
		if d, ok := r.Resolve(table, target, bp, entries[target]); ok {
			out[target] = d
		}
	}
	return out
}
