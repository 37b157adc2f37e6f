// Package depgraph turns the analyzer's Graphviz dependency report into a
// dependency mapping.
//
// The analyzer writes one statement per dependency:
//
//	digraph dependencies {
//	  gdata_core_1_0 -> google_collect_1_0_rc1;
//	  gdata_core_1_0 -> jsr305;
//	}
//
// Parsing is a pure text transform in three steps:
//
//  1. [Normalize] strips statement terminators and rewrites identifiers
//     into jar basenames ("gdata_core_1_0" becomes "gdata-core-1.0").
//  2. [ParseEdges] extracts every "source -> target" pair.
//  3. [Build] folds the edges into a [Mapping] and adds an entry for each
//     terminal artifact (depended upon, depending on nothing) unless the
//     [Policy] excludes it.
//
// [Parse] composes the three steps.
//
// # Mapping semantics
//
// A key whose value is a non-nil slice lists that artifact's dependencies
// in edge order, duplicates included. A key whose value is nil is a
// terminal artifact with no dependencies. Identifiers that appear in no
// edge at all are never keys.
//
// The analyzer cannot see that every gdata jar also needs the bundled jsr305
// annotations jar; that edge is not injected, so dependency lists can be
// incomplete for it.
package depgraph
