// Package ir provides the shared data model for reveal.
//
// This package contains the assignment table shapes exchanged between the
// schema builder and the resolution engine, the animation catalog, and the
// form-state value tree the builder writes into. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Assignment tuples are positional: [target, animation kind, order index]
//   - Form values never hold floats; order indexes are int64
//   - The catalog is an immutable value passed explicitly, never global state
//   - All JSON tags use snake_case
package ir
