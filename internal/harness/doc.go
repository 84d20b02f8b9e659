// Package harness runs conformance scenarios against the schema builder and
// the resolution engine.
//
// A scenario is a YAML file that edits an assignment table through the
// builder and then resolves targets at given breakpoints and intersection
// ratios:
//
//	name: tablet_falls_back_to_mobile
//	description: "Tablet inherits the mobile assignment"
//	targets: [hero]
//	steps:
//	  - {action: add_row, breakpoint: mobile}
//	  - {action: set_field, breakpoint: mobile, row: 0, field: target, value: hero}
//	  - {action: set_field, breakpoint: mobile, row: 0, field: kind, value: fadeFromTop}
//	checks:
//	  - target: hero
//	    breakpoint: tablet
//	    ratio: 0.5
//	    expect: {styled: true, animation: fadeFromTop, source: mobile}
//
// Each run uses a fresh in-memory store and deterministic row identities,
// so the trace can be compared against a golden file.
package harness
