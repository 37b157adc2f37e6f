package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gdatamvn/pkg/depgraph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the number of distinct dependencies to each label.
	Detailed bool
}

// ToDOT converts a dependency mapping to Graphviz DOT format.
// Nodes and edges are sorted and duplicate edges collapsed, so equal mappings
// produce equal output. Terminal artifacts are filled grey; dependency
// targets that are not mapping keys (excluded artifacts) get a dashed
// outline.
func ToDOT(m depgraph.Mapping, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range nodes(m) {
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(id), strings.Join(fmtAttrs(m, id, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, id := range m.Keys() {
		for _, dep := range m.Deps(id) {
			fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(id), dotQuote(dep))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodes returns every key and every dependency target, sorted.
func nodes(m depgraph.Mapping) []string {
	seen := make(map[string]bool, len(m))
	for id, deps := range m {
		seen[id] = true
		for _, d := range deps {
			seen[d] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func fmtAttrs(m depgraph.Mapping, id string, detailed bool) []string {
	label := id
	if detailed {
		label = fmt.Sprintf("%s\ndeps: %d", id, len(m.Deps(id)))
	}
	attrs := []string{"label=" + dotQuote(label)}
	_, known := m[id]
	switch {
	case !known:
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey40")
	case m.IsTerminal(id):
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// dotQuote returns s as a DOT quoted string. Only quotes and backslashes
// are escaped; newlines become the \n line break escape. Other characters,
// including non-ASCII, pass through as UTF-8.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := renderFormat(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

// Validate reports whether dot parses as a Graphviz graph.
func Validate(dot string) error {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	return g.Close()
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
