// Package render draws scene graphs as node-link diagrams using Graphviz.
//
// Nodes appear as boxes connected parent to child. Nodes carrying vertex
// colors are filled, and streams selected by a manifest rule are outlined,
// so a stale or unexpected selection is visible at a glance.
//
//	dot := render.ToDOT(s.Graph, render.Options{
//	    Highlight: render.SelectedStreams(s.Manifest),
//	})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToDOT] output is plain DOT source and can be fed to any Graphviz tool.
// [RenderSVG] runs the bundled WebAssembly build of Graphviz, so no system
// installation is required.
package render
