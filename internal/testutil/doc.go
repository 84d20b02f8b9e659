// Package testutil holds fixtures shared by builder tests and the
// conformance harness: a replayable row-identity sequence and seeded form
// trees.
package testutil
