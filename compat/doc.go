// Package compat widens peer dependency ranges for packages that promise
// forward compatibility across one major version.
//
// A package such as @angular/core guarantees that code written against
// major N keeps working on major N+1. Libraries that declare a peer range of
// "^16.0.0" on it should therefore not be flagged when the workspace moves to
// 17.0.0. A Table maps such package (group) names to a Transform that extends
// the declared range by exactly one major line, including its alpha
// pre-releases.
//
// Basic usage:
//
//	table := compat.DefaultTable()
//	widened := table.Extend("@angular/core", "^16.0.0")
//	// widened == "^16.0.0 || ^17.0.0-alpha.0 || ^17.1.0-alpha.0 || ..."
//
// Tables are immutable. Use With to derive a table with extra entries.
package compat
