package depgraph

import (
	"slices"
	"strings"
)

// Policy controls which terminal artifacts are kept.
type Policy struct {
	// Exclude lists identifier prefixes that are never added as terminal
	// entries. Artifacts with outgoing edges are always kept.
	Exclude []string
}

// CollectionsPrefix identifies the legacy Google Collections jars. They are
// published upstream and must not be redeployed.
const CollectionsPrefix = "google-collect-"

// DefaultPolicy excludes the Google Collections jars.
func DefaultPolicy() Policy {
	return Policy{Exclude: []string{CollectionsPrefix}}
}

// Excludes reports whether id matches one of the excluded prefixes.
func (p Policy) Excludes(id string) bool {
	for _, prefix := range p.Exclude {
		if prefix != "" && strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// Mapping maps an artifact to the artifacts it depends on. A nil value marks
// a terminal artifact.
type Mapping map[string][]string

// Build folds edges into a Mapping. Each edge appends its target to the
// source's list, preserving edge order and duplicates. Every terminal
// identifier not excluded by policy is then added with a nil list.
func Build(edges []Edge, policy Policy) Mapping {
	m := make(Mapping)
	for _, e := range edges {
		m[e.From] = append(m[e.From], e.To)
	}
	for _, id := range Terminals(edges) {
		if policy.Excludes(id) {
			continue
		}
		m[id] = nil
	}
	return m
}

// Terminals returns, sorted, the identifiers that appear in some edge but
// never as a source.
func Terminals(edges []Edge) []string {
	sources := make(map[string]bool, len(edges))
	for _, e := range edges {
		sources[e.From] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range edges {
		if !sources[e.To] && !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	slices.Sort(out)
	return out
}

// Keys returns the artifact identifiers in lexicographic order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Deps returns the de-duplicated, sorted dependencies of id. It returns nil
// for terminal and unknown artifacts.
func (m Mapping) Deps(id string) []string {
	deps := m[id]
	if deps == nil {
		return nil
	}
	out := slices.Clone(deps)
	slices.Sort(out)
	return slices.Compact(out)
}

// IsTerminal reports whether id is present and has no dependencies.
func (m Mapping) IsTerminal(id string) bool {
	deps, ok := m[id]
	return ok && deps == nil
}

// EdgeCount returns the number of edges folded into m, duplicates included.
func (m Mapping) EdgeCount() int {
	n := 0
	for _, deps := range m {
		n += len(deps)
	}
	return n
}

// TerminalCount returns the number of terminal entries.
func (m Mapping) TerminalCount() int {
	n := 0
	for _, deps := range m {
		if deps == nil {
			n++
		}
	}
	return n
}
