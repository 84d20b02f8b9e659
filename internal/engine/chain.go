package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/reveal/internal/ir"
)

// FallbackChain maps an active breakpoint to the breakpoints whose
// assignments may style an element, most preferred first.
type FallbackChain struct {
	order []ir.Breakpoint
	steps map[ir.Breakpoint][]ir.Breakpoint
}

// NewFallbackChain builds a chain from breakpoints ordered narrowest first.
// Each breakpoint falls back to itself, then every narrower breakpoint from
// nearest to farthest.
func NewFallbackChain(order ...ir.Breakpoint) FallbackChain {
	c := FallbackChain{
		order: slices.Clone(order),
		steps: make(map[ir.Breakpoint][]ir.Breakpoint, len(order)),
	}
	for i, bp := range order {
		chain := make([]ir.Breakpoint, 0, i+1)
		for j := i; j >= 0; j-- {
			chain = append(chain, order[j])
		}
		c.steps[bp] = chain
	}
	return c
}

// DefaultFallbackChain returns the mobile < tablet < desktop chain.
func DefaultFallbackChain() FallbackChain {
	return NewFallbackChain(ir.Breakpoints...)
}

// FallbackChainFrom builds a chain from explicit entries. Every breakpoint
// named in a fallback list must also have its own entry.
func FallbackChainFrom(entries map[ir.Breakpoint][]ir.Breakpoint) (FallbackChain, error) {
	c := FallbackChain{steps: make(map[ir.Breakpoint][]ir.Breakpoint, len(entries))}
	for bp, chain := range entries {
		if len(chain) == 0 || chain[0] != bp {
			return FallbackChain{}, fmt.Errorf("fallback chain for %q must start with itself", bp)
		}
		for _, step := range chain {
			if _, ok := entries[step]; !ok {
				return FallbackChain{}, fmt.Errorf("fallback chain for %q names unknown breakpoint %q", bp, step)
			}
		}
		c.steps[bp] = slices.Clone(chain)
		c.order = append(c.order, bp)
	}
	// Narrowest first: shorter chains fall back through fewer breakpoints.
	slices.SortStableFunc(c.order, func(a, b ir.Breakpoint) int {
		if d := len(c.steps[a]) - len(c.steps[b]); d != 0 {
			return d
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return c, nil
}

// For returns the lookup order for the active breakpoint. An unclassified or
// unknown breakpoint has no chain.
func (c FallbackChain) For(bp ir.Breakpoint) []ir.Breakpoint {
	return slices.Clone(c.steps[bp])
}

// Breakpoints returns every breakpoint in the chain, narrowest first.
func (c FallbackChain) Breakpoints() []ir.Breakpoint {
	return slices.Clone(c.order)
}
