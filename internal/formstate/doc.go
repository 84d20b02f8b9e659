// Package formstate implements the form-state path protocol: reading and
// writing values in a nested form tree addressed by dotted/bracketed path
// strings such as "animations.mobile[0][1]".
//
// Writes are copy-on-write along the written path. A snapshot returned by
// Tree.Value is never mutated by later writes, so callers can compare
// snapshots to detect changes.
//
// Missing intermediate containers are created on write: an object when the
// next segment is a key, a list when it is an index. Lists written past
// their end are padded with ir.IRNull.
package formstate
