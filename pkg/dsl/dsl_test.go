package dsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/boxlayout/pkg/box"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/view"
)

const cardSource = `
# a card with an optional footer
vstack (spacing: 8, align: leading) {
  hstack (spacing: 6) {
    element "icon" (aspect: 1:1, width: 24)
    inset (top: 4, bottom: inf) {
      element "label"
    }
    hspacer (min: 8)
  }
  vspacer
  if footer {
    element "footer" (height: 32)
  } else {
    empty
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseString("card.box", cardSource)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Box == nil {
		t.Fatalf("expected one top-level box, got %+v", doc.Nodes)
	}

	root := doc.Nodes[0].Box
	if root.Kind != "vstack" || len(root.Attrs) != 2 {
		t.Errorf("root = %s with %d attrs, want vstack with 2", root.Kind, len(root.Attrs))
	}
	if root.Pos.Line != 3 {
		t.Errorf("root line = %d, want 3", root.Pos.Line)
	}
	if n := len(root.Children.Nodes); n != 3 {
		t.Fatalf("root children = %d, want 3", n)
	}

	cond := root.Children.Nodes[2].Cond
	if cond == nil || cond.Flag != "footer" || cond.Negate || cond.Else == nil {
		t.Errorf("unexpected conditional: %+v", cond)
	}

	icon := root.Children.Nodes[0].Box.Children.Nodes[0].Box
	if icon.Name != "icon" || icon.Attrs[0].Value.Ratio != "1:1" {
		t.Errorf("icon = %+v", icon)
	}
}

func TestBuildMatchesBuilder(t *testing.T) {
	doc, err := ParseString("", cardSource)
	if err != nil {
		t.Fatal(err)
	}

	views := view.NewRegistry()
	for _, footer := range []bool{true, false} {
		got, err := doc.Build(Env{Flags: map[string]bool{"footer": footer}, Surface: views.Surface})
		if err != nil {
			t.Fatalf("footer=%v: Build: %v", footer, err)
		}

		want := box.NewVStack(
			box.NewHStack(
				box.NewElement(views.Get("icon")).AspectRatio(1, 1, box.Width(24)),
				box.NewInset(box.Insets{Top: 4, Bottom: box.Unbounded}, box.NewElement(views.Get("label"))),
				box.NewHSpacer().MinLength(8),
			).Spacing(6),
			box.NewVSpacer(),
			box.IfElse(footer,
				box.NewElement(views.Get("footer")).Frame(box.Height(32)),
				box.Empty{},
			),
		).Spacing(8).Align(box.AlignLeading)

		if d := cmp.Diff(box.Describe(want), box.Describe(got)); d != "" {
			t.Errorf("footer=%v: tree mismatch (-want +got):\n%s", footer, d)
		}
	}
}

func TestNegatedConditionWithoutElse(t *testing.T) {
	doc, err := ParseString("", `if !compact { element "details" }`)
	if err != nil {
		t.Fatal(err)
	}
	views := view.NewRegistry()

	tests := []struct {
		flags map[string]bool
		want  string
	}{
		{nil, "if (true)\n  element \"details\"\n"},
		{map[string]bool{"compact": true}, "if (false)\n  empty\n"},
	}
	for _, tt := range tests {
		n, err := doc.Build(Env{Flags: tt.flags, Surface: views.Surface})
		if err != nil {
			t.Fatal(err)
		}
		if got := box.Describe(n); got != tt.want {
			t.Errorf("flags %v: got\n%s\nwant\n%s", tt.flags, got, tt.want)
		}
	}
}

func TestPaddingShorthands(t *testing.T) {
	doc, err := ParseString("", `padding (all: 2, horizontal: 10, top: 0) { element "x" }`)
	if err != nil {
		t.Fatal(err)
	}
	n, err := doc.Build(Env{Surface: view.NewRegistry().Surface})
	if err != nil {
		t.Fatal(err)
	}
	p, ok := n.(box.Padding)
	if !ok {
		t.Fatalf("node = %T, want box.Padding", n)
	}
	want := box.Insets{Top: 0, Right: 10, Bottom: 2, Left: 10}
	if p.Insets() != want {
		t.Errorf("insets = %+v, want %+v", p.Insets(), want)
	}
}

func TestFlagsAndSurfaces(t *testing.T) {
	src := `
zstack {
  if b { element "one" } else { if a { element "two" } }
  element "one"
  if !a { element "three" }
}`
	doc, err := ParseString("", src)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"a", "b"}, doc.Flags()); d != "" {
		t.Errorf("Flags() (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]string{"one", "two", "three"}, doc.Surfaces()); d != "" {
		t.Errorf("Surfaces() (-want +got):\n%s", d)
	}
}

func TestSourceErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"syntax", "vstack {\n  element \"a\"\n", 3, ""},
		{"unknown kind", "vstack {\n  grid\n}", 2, "unknown kind"},
		{"unknown attr", "hstack (gap: 4)", 1, "unknown attribute"},
		{"duplicate attr", "hspacer (min: 1, min: 2)", 1, "duplicate attribute"},
		{"missing name", "element", 1, "requires a name"},
		{"bad name", `element "a b"`, 1, "whitespace"},
		{"name on container", `zstack "x"`, 1, "does not take a name"},
		{"children on element", "\nelement \"a\" { empty }", 2, "does not take children"},
		{"bad alignment", "vstack (align: top)", 1, "align"},
		{"inf on padding", "padding (top: inf)", 1, "only valid on inset"},
		{"bad ratio", `element "a" (aspect: 0:1)`, 1, "invalid ratio"},
		{"word for number", "vspacer (min: big)", 1, "expected a number"},
		{"attrs on empty", "empty (width: 1)", 1, "takes no attributes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString("test.box", tt.src)
			if err == nil {
				_, err = doc.Build(Env{Surface: view.NewRegistry().Surface})
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errs.Is(err, errs.ErrCodeInvalidSource) {
				t.Errorf("code = %s, want %s", errs.GetCode(err), errs.ErrCodeInvalidSource)
			}
			var se *errs.SourceError
			if !errors.As(err, &se) {
				t.Fatalf("error %v does not carry a position", err)
			}
			if se.Filename != "test.box" || se.Line != tt.line {
				t.Errorf("position = %s:%d, want test.box:%d", se.Filename, se.Line, tt.line)
			}
			if !strings.Contains(se.Message, tt.msg) {
				t.Errorf("message %q does not mention %q", se.Message, tt.msg)
			}
		})
	}
}

func TestBuildRequiresSurfaceResolver(t *testing.T) {
	doc, err := ParseString("", "empty")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.Build(Env{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Build without Surface = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
}

func TestEmptyDocument(t *testing.T) {
	doc, err := ParseString("", "// nothing here\n")
	if err != nil {
		t.Fatal(err)
	}
	n, err := doc.Build(Env{Surface: view.NewRegistry().Surface})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(box.Empty); !ok {
		t.Errorf("empty document built %T, want box.Empty", n)
	}
}
