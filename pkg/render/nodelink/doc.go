// Package nodelink renders dependency mappings as node-link diagrams.
//
// Convert a mapping to DOT, then render it in-process with Graphviz:
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// The DOT source is canonical (sorted nodes, de-duplicated edges), so it can
// also be diffed between distribution versions or fed to external Graphviz
// tools.
//
// Terminal artifacts are drawn with a grey fill. Dependency targets that
// have no descriptor of their own, such as the Google Collections jars, are
// drawn with a dashed outline.
package nodelink
