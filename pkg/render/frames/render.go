package frames

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/graph"
)

// Option configures rendering. Options are shared by all sinks; sinks ignore
// options that do not apply to them.
type Option func(*renderer)

type renderer struct {
	style       Style
	groups      bool
	constraints bool
	scale       float64
}

// WithStyle sets the visual style (default Simple).
func WithStyle(s Style) Option { return func(r *renderer) { r.style = s } }

// WithGroups draws anchor groups as dashed outlines.
func WithGroups() Option { return func(r *renderer) { r.groups = true } }

// WithConstraints draws a line per constraint between the centers of the two
// frames it relates. Constraints against constants are not drawn.
func WithConstraints() Option { return func(r *renderer) { r.constraints = true } }

// WithScale sets the PNG scale factor (default 2 for 2x resolution).
func WithScale(s float64) Option {
	return func(r *renderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

func newRenderer(opts ...Option) renderer {
	r := renderer{style: Simple{}, scale: 2}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l graph.Layout, opts ...Option) []byte {
	r := newRenderer(opts...)
	boxes := buildBoxes(l, r.groups)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)

	r.style.RenderDefs(&buf)
	for _, b := range boxes {
		r.style.RenderBox(&buf, b)
	}
	if r.constraints {
		for _, e := range buildEdges(l) {
			r.style.RenderEdge(&buf, e)
		}
	}
	for _, b := range boxes {
		r.style.RenderText(&buf, b)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// buildBoxes returns groups first (when enabled) and then surfaces, so
// surfaces paint over the groups that contain them.
func buildBoxes(l graph.Layout, groups bool) []Box {
	var out []Box
	add := func(f graph.Frame) {
		out = append(out, Box{
			ID:   f.ID,
			Kind: f.Kind,
			Role: f.Role,
			X:    f.X, Y: f.Y, W: f.Width, H: f.Height,
			CX: f.X + f.Width/2, CY: f.Y + f.Height/2,
		})
	}
	if groups {
		for _, f := range l.Frames {
			if f.Kind == graph.KindGroup {
				add(f)
			}
		}
	}
	for _, f := range l.Surfaces() {
		add(f)
	}
	return out
}

func buildEdges(l graph.Layout) []Edge {
	centers := make(map[string][2]float64, len(l.Frames))
	for _, f := range l.Frames {
		centers[f.ID] = [2]float64{f.X + f.Width/2, f.Y + f.Height/2}
	}

	var out []Edge
	seen := map[[2]string]bool{}
	for _, c := range l.Constraints {
		if c.To == "" || c.To == c.From {
			continue
		}
		key := [2]string{c.From, c.To}
		if seen[key] && !c.Dropped {
			continue
		}
		seen[key] = true
		from, ok1 := centers[c.From]
		to, ok2 := centers[c.To]
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, Edge{
			FromID: c.From, ToID: c.To,
			X1: from[0], Y1: from[1], X2: to[0], Y2: to[1],
			Required: c.Required(),
			Dropped:  c.Dropped,
		})
	}
	return out
}
