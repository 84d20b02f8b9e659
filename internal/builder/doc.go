// Package builder edits the per-breakpoint animation assignment table held
// in a form-state tree.
//
// The table lives under a base path, one list per breakpoint:
//
//	animations.mobile[0] = ["hero", "fadeIn", 0]
//
// Adding a row appends an empty tuple and mounts it, which writes the row's
// position into the order slot exactly once. The order index is never
// rewritten afterwards, so removing an earlier row leaves later delays
// untouched.
//
// Every row gets a RowID when the builder first sees it. Removal is keyed
// by RowID, so a caller holding a stale position cannot delete the wrong
// row.
package builder
