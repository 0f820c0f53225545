package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the content kind and element counts to node labels.
	Detailed bool
	// Highlight lists node names to outline, typically the streams selected
	// by manifest rules.
	Highlight []string
}

const (
	colorStreamFill = "#ffe8a3"
	highlightColor  = "#d9480f"
)

// ToDOT converts a scene graph to Graphviz DOT source.
func ToDOT(g *scene.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for i, name := range g.Names() {
		c := g.Content(i)
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(name, c, opts.Detailed))}
		if scene.IsVertexColor(c) {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", colorStreamFill))
		}
		if slices.Contains(opts.Highlight, name) {
			attrs = append(attrs, fmt.Sprintf("color=%q", highlightColor), "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, name := range g.Names() {
		if p := g.Parent(i); p != scene.NoParent {
			fmt.Fprintf(&buf, "  %q -> %q;\n", g.Name(p), name)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(name string, c scene.Content, detailed bool) string {
	if !detailed || c == nil {
		return name
	}
	detail := string(c.Kind())
	switch v := c.(type) {
	case scene.MeshData:
		detail += fmt.Sprintf("\nvertices: %d\nfaces: %d", v.VertexCount, v.FaceCount)
	case scene.VertexColorSource:
		detail += fmt.Sprintf("\ncolors: %d", v.ColorCount())
	case scene.MaterialData:
		detail += "\n" + v.Material
	}
	return name + "\n" + detail
}

// SelectedStreams returns the stream names referenced by the manifest's
// vertex-color rules, in rule order and without the disabled sentinel.
func SelectedStreams(m *manifest.Manifest) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, rule := range m.VertexColorRules() {
		name := rule.VertexColorStreamName()
		if name == manifest.DisabledStream || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Render produces the diagram in the given format.
func Render(ctx context.Context, g *scene.Graph, opts Options, format string) ([]byte, error) {
	dot := ToDOT(g, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q (want %s or %s)", format, FormatDOT, FormatSVG)
	}
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
