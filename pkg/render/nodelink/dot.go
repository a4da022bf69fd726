package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// Options configures constraint graph rendering.
type Options struct {
	// Detailed adds solved geometry to node labels and the constraint
	// expressions to edge labels. When false, only names are shown.
	Detailed bool

	// Soft includes non-required constraints. Required ones are always shown.
	Soft bool
}

// ToDOT converts a layout's constraint graph to Graphviz DOT format.
// Frames become nodes; every pair of frames related by at least one
// constraint gets one edge, from the constrained frame to its reference.
//
// Anchor groups are drawn dashed, the host doubled, and edges carrying a
// dropped constraint red.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, f := range l.Frames {
		label := fmtLabel(f, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", f.ID, strings.Join(fmtAttrs(f, label), ", "))
	}

	buf.WriteString("\n")
	for _, e := range groupEdges(l, opts.Soft) {
		attrs := []string{}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", strings.Join(e.exprs, "\n")))
		}
		if e.dropped {
			attrs = append(attrs, "color=red", "fontcolor=red")
		} else if !e.required {
			attrs = append(attrs, "style=dashed")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.from, e.to, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

type pairEdge struct {
	from, to string
	exprs    []string
	required bool
	dropped  bool
}

// groupEdges merges constraints per ordered frame pair, keeping first-seen
// order so the output is deterministic.
func groupEdges(l graph.Layout, soft bool) []*pairEdge {
	var out []*pairEdge
	index := map[[2]string]*pairEdge{}
	for _, c := range l.Constraints {
		if c.To == "" || (!soft && !c.Required()) {
			continue
		}
		key := [2]string{c.From, c.To}
		e, ok := index[key]
		if !ok {
			e = &pairEdge{from: c.From, to: c.To}
			index[key] = e
			out = append(out, e)
		}
		e.exprs = append(e.exprs, c.Expr)
		e.required = e.required || c.Required()
		e.dropped = e.dropped || c.Dropped
	}
	return out
}

func fmtLabel(f graph.Frame, detailed bool) string {
	if !detailed {
		return f.ID
	}
	return fmt.Sprintf("%s\n%s %g,%g %gx%g", f.ID, f.Kind, f.X, f.Y, f.Width, f.Height)
}

func fmtAttrs(f graph.Frame, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch f.Kind {
	case graph.KindHost:
		attrs = append(attrs, "peripheries=2", "fillcolor=lightyellow")
	case graph.KindGroup:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the SVG scales like the frames renderer output.
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
