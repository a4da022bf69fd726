package frames

import (
	"bytes"
	"fmt"
	"strings"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/fonts"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// Style defines the visual appearance of a rendered layout.
// SVG output is written through the Render methods; the canvas sinks only
// use the Palette.
type Style interface {
	// Name is the identifier used in options and config files.
	Name() string
	// Palette returns the colors shared by every sink.
	Palette() Palette
	// RenderDefs writes SVG <defs> and <style> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderBox writes the SVG shape for one frame.
	RenderBox(buf *bytes.Buffer, b Box)
	// RenderEdge writes the SVG line for one constraint.
	RenderEdge(buf *bytes.Buffer, e Edge)
	// RenderText writes the SVG label for one frame.
	RenderText(buf *bytes.Buffer, b Box)
}

// Palette holds hex colors ("#rrggbb").
type Palette struct {
	Background    string
	Surface       string
	SurfaceStroke string
	Group         string
	Text          string
	Edge          string
	Dropped       string
}

// Box contains all data needed to draw a single frame.
type Box struct {
	ID         string
	Label      string
	Kind       string // graph.KindGroup or graph.KindSurface
	Role       string
	X, Y, W, H float64
	CX, CY     float64
}

// Edge contains positioning data for one constraint line.
type Edge struct {
	FromID, ToID   string
	X1, Y1, X2, Y2 float64
	Required       bool
	Dropped        bool
}

// StyleByName returns the built-in style for name. An empty name selects
// the simple style.
func StyleByName(name string) (Style, error) {
	switch strings.ToLower(name) {
	case "", graph.StyleSimple:
		return Simple{}, nil
	case graph.StyleBlueprint:
		return Blueprint{}, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidStyle, "unknown style %q (want %s or %s)",
		name, graph.StyleSimple, graph.StyleBlueprint)
}

// =============================================================================
// Simple
// =============================================================================

// Simple draws light filled surfaces with thin outlines on white.
type Simple struct{}

func (Simple) Name() string { return graph.StyleSimple }

func (Simple) Palette() Palette {
	return Palette{
		Background:    "#ffffff",
		Surface:       "#eef2f7",
		SurfaceStroke: "#334155",
		Group:         "#94a3b8",
		Text:          "#0f172a",
		Edge:          "#64748b",
		Dropped:       "#dc2626",
	}
}

func (s Simple) RenderDefs(buf *bytes.Buffer) { renderDefs(buf, s.Palette()) }

func (s Simple) RenderBox(buf *bytes.Buffer, b Box) {
	p := s.Palette()
	if b.Kind == graph.KindGroup {
		fmt.Fprintf(buf, `  <rect id="group-%s" class="group" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-dasharray="4 3" stroke-width="1"/>`+"\n",
			EscapeXML(b.ID), b.X, b.Y, b.W, b.H, p.Group)
		return
	}
	fmt.Fprintf(buf, `  <rect id="frame-%s" class="frame" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="3" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.W, b.H, p.Surface, p.SurfaceStroke)
}

func (s Simple) RenderEdge(buf *bytes.Buffer, e Edge) { renderEdge(buf, e, s.Palette()) }

func (s Simple) RenderText(buf *bytes.Buffer, b Box) { renderText(buf, b, s.Palette()) }

// =============================================================================
// Blueprint
// =============================================================================

// Blueprint draws white outlines on a dark blue grid.
type Blueprint struct{}

func (Blueprint) Name() string { return graph.StyleBlueprint }

func (Blueprint) Palette() Palette {
	return Palette{
		Background:    "#0b3d91",
		Surface:       "#1e56b0",
		SurfaceStroke: "#e8f0ff",
		Group:         "#7aa5e8",
		Text:          "#ffffff",
		Edge:          "#a9c4f5",
		Dropped:       "#ffb020",
	}
}

func (s Blueprint) RenderDefs(buf *bytes.Buffer) {
	p := s.Palette()
	renderDefs(buf, p)
	fmt.Fprintf(buf, `  <defs><pattern id="grid" width="10" height="10" patternUnits="userSpaceOnUse"><path d="M 10 0 L 0 0 0 10" fill="none" stroke="%s" stroke-width="0.3"/></pattern></defs>`+"\n", p.Group)
	buf.WriteString(`  <rect width="100%" height="100%" fill="url(#grid)"/>` + "\n")
}

func (s Blueprint) RenderBox(buf *bytes.Buffer, b Box) {
	p := s.Palette()
	if b.Kind == graph.KindGroup {
		fmt.Fprintf(buf, `  <rect id="group-%s" class="group" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-dasharray="2 2" stroke-width="0.75"/>`+"\n",
			EscapeXML(b.ID), b.X, b.Y, b.W, b.H, p.Group)
		return
	}
	fmt.Fprintf(buf, `  <rect id="frame-%s" class="frame" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="0.6" stroke="%s" stroke-width="1"/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.W, b.H, p.Surface, p.SurfaceStroke)
}

func (s Blueprint) RenderEdge(buf *bytes.Buffer, e Edge) { renderEdge(buf, e, s.Palette()) }

func (s Blueprint) RenderText(buf *bytes.Buffer, b Box) { renderText(buf, b, s.Palette()) }

// =============================================================================
// Shared SVG helpers
// =============================================================================

func renderDefs(buf *bytes.Buffer, p Palette) {
	fmt.Fprintf(buf, `  <style>text { font-family: %s; }</style>`+"\n", fonts.FallbackFontFamily)
	fmt.Fprintf(buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", p.Background)
}

func renderEdge(buf *bytes.Buffer, e Edge, p Palette) {
	stroke, dash := p.Edge, ""
	if !e.Required {
		dash = ` stroke-dasharray="3 3"`
	}
	if e.Dropped {
		stroke = p.Dropped
	}
	fmt.Fprintf(buf, `  <line class="constraint" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.75"%s/>`+"\n",
		e.X1, e.Y1, e.X2, e.Y2, stroke, dash)
}

func renderText(buf *bytes.Buffer, b Box, p Palette) {
	if b.Kind == graph.KindGroup || b.W <= 0 || b.H <= 0 {
		return
	}
	size := FontSize(b)
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		b.CX, b.CY, size, p.Text, EscapeXML(TruncateLabel(b)))
}
