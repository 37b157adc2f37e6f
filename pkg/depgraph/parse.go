package depgraph

import (
	"regexp"
	"strings"
)

var (
	versionSuffix = regexp.MustCompile(`(\D+-\d+)-(\d+)`)
	edgePattern   = regexp.MustCompile(`(\S+)\s+->\s+(\S+)`)
)

// Edge is one "From -> To" statement of the dependency report.
type Edge struct {
	From string
	To   string
}

// Normalize rewrites raw report text into normalized identifiers: ';' is
// removed, '_' becomes '-', and a "<name>-<major>-<minor>" run collapses to
// "<name>-<major>.<minor>". Replacements are applied left to right and do not
// overlap, so "a-1-2-3" becomes "a-1.2-3".
func Normalize(text string) string {
	text = strings.ReplaceAll(text, ";", "")
	text = strings.ReplaceAll(text, "_", "-")
	return versionSuffix.ReplaceAllString(text, "$1.$2")
}

// ParseEdges normalizes text and returns its edges in source order.
// Lines without an arrow are ignored.
func ParseEdges(text string) []Edge {
	matches := edgePattern.FindAllStringSubmatch(Normalize(text), -1)
	edges := make([]Edge, 0, len(matches))
	for _, m := range matches {
		edges = append(edges, Edge{From: m[1], To: m[2]})
	}
	return edges
}

// Parse returns the dependency mapping described by the report text.
func Parse(text string, policy Policy) Mapping {
	return Build(ParseEdges(text), policy)
}
