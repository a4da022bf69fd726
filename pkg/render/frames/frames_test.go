package frames

import (
	"bytes"
	"strings"
	"testing"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

func testLayout() graph.Layout {
	return graph.Layout{
		ID:     "test",
		Width:  200,
		Height: 100,
		Frames: []graph.Frame{
			{ID: "window", Kind: graph.KindHost, Width: 200, Height: 100},
			{ID: "root", Kind: graph.KindGroup, Width: 200, Height: 100},
			{ID: "icon", Kind: graph.KindSurface, Width: 40, Height: 100},
			{ID: "a<b", Kind: graph.KindSurface, X: 40, Width: 160, Height: 100},
		},
		Constraints: []graph.Edge{
			{From: "icon", To: "root", Relation: "==", Priority: 1000, Expr: "icon.left == root.left @1000"},
			{From: "icon", To: "root", Relation: "==", Priority: 250, Expr: "icon.top == root.top @250"},
			{From: "a<b", To: "icon", Relation: "==", Priority: 1000, Expr: "a<b.left == icon.right @1000", Dropped: true},
			{From: "icon", Relation: "==", Priority: 1000, Expr: "icon.width == 40 @1000"},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		contains []string
		excludes []string
	}{
		{
			name:     "surfaces only",
			contains: []string{`viewBox="0 0 200.0 100.0"`, `id="frame-icon"`, `id="frame-a&lt;b"`, `>icon</text>`},
			excludes: []string{`class="group"`, `class="constraint"`},
		},
		{
			name:     "groups",
			opts:     []Option{WithGroups()},
			contains: []string{`id="group-root"`, `stroke-dasharray="4 3"`},
		},
		{
			name:     "constraints",
			opts:     []Option{WithConstraints()},
			contains: []string{`class="constraint"`, `stroke="#dc2626"`},
		},
		{
			name:     "blueprint",
			opts:     []Option{WithStyle(Blueprint{})},
			contains: []string{`fill="#0b3d91"`, `id="grid"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := string(RenderSVG(testLayout(), tt.opts...))
			if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
				t.Fatalf("not an svg document:\n%s", svg)
			}
			for _, s := range tt.contains {
				if !strings.Contains(svg, s) {
					t.Errorf("missing %q", s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(svg, s) {
					t.Errorf("unexpected %q", s)
				}
			}
		})
	}
}

func TestBuildEdgesSkipsConstantsAndDuplicates(t *testing.T) {
	edges := buildEdges(testLayout())
	if len(edges) != 2 {
		t.Fatalf("edges = %d, want 2 (one per related pair)", len(edges))
	}
	if !edges[1].Dropped || edges[1].FromID != "a<b" {
		t.Errorf("second edge = %+v, want the dropped a<b edge", edges[1])
	}
	if edges[0].X1 != 20 || edges[0].Y1 != 50 || edges[0].X2 != 100 {
		t.Errorf("first edge endpoints = %+v, want frame centers", edges[0])
	}
}

func TestStyleByName(t *testing.T) {
	for _, name := range []string{"", "simple", "Blueprint"} {
		if _, err := StyleByName(name); err != nil {
			t.Errorf("StyleByName(%q): %v", name, err)
		}
	}
	if _, err := StyleByName("handdrawn"); !errs.Is(err, errs.ErrCodeInvalidStyle) {
		t.Errorf("StyleByName(handdrawn) = %v, want %s", err, errs.ErrCodeInvalidStyle)
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		box  Box
		want string
	}{
		{Box{ID: "ok", W: 100, H: 40}, "ok"},
		{Box{ID: "a-very-long-surface-name", W: 30, H: 40}, "a-ver.."},
		{Box{ID: "x", Label: "label", W: 100, H: 40}, "label"},
	}
	for _, tt := range tests {
		if got := TruncateLabel(tt.box); got != tt.want {
			t.Errorf("TruncateLabel(%+v) = %q, want %q", tt.box, got, tt.want)
		}
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(testLayout(), WithGroups(), WithConstraints())
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testLayout(), WithScale(1))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("output does not start with a PNG signature")
	}
}
