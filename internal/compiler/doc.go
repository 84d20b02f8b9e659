// Package compiler turns authored CUE animation catalogs into ir.Catalog
// values and validates catalogs and assignment tables.
//
// A catalog source looks like:
//
//	timing: "cubic-bezier(0,0,0,1)"
//
//	animation: fadeFromTop: {
//		label: "Fade from top"
//		from: {opacity: 0, y: -50}
//		to: {opacity: 1}
//	}
//
// Omitted frame fields default to 0. Compilation stops at the first
// structural problem and reports it as a *CompileError with the CUE source
// position; Validate and ValidateTable collect every semantic problem.
package compiler
