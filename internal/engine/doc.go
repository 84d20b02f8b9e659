// Package engine resolves entrance-animation descriptors for tracked elements.
//
// Resolution is a pure function of four inputs: the assignment table, the
// element's identifier, the active breakpoint and the element's latest
// intersection entry. Resolver implements it; Session keeps the inputs for a
// set of tracked elements and re-resolves them as inputs change.
//
// Single-Writer Event Loop:
// Session mutations (viewport changes, intersection entries, table edits)
// are applied in one goroutine, either synchronously through Dispatch or
// from the FIFO queue drained by Run. Every emitted Change is stamped with
// a monotonic seq from Clock, so listeners observe a total order.
//
// Breakpoint fallback:
// A tablet viewport uses the tablet assignment, then mobile. A desktop
// viewport uses desktop, then tablet, then mobile. The order is data
// (FallbackChain), not control flow, so adding a breakpoint is a table edit.
package engine
