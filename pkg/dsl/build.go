package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/boxlayout/pkg/box"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
)

const (
	kindElement = "element"
	kindEmpty   = "empty"
	kindPadding = "padding"
	kindInset   = "inset"
	kindCenter  = "center"
	kindZStack  = "zstack"
	kindVStack  = "vstack"
	kindHStack  = "hstack"
	kindVSpacer = "vspacer"
	kindHSpacer = "hspacer"
)

// Kinds lists the box kinds the language accepts.
var Kinds = []string{
	kindElement, kindEmpty, kindPadding, kindInset, kindCenter,
	kindZStack, kindVStack, kindHStack, kindVSpacer, kindHSpacer,
}

var (
	sizingKeys = []string{"width", "height", "aspect"}
	insetKeys  = []string{"all", "vertical", "horizontal", "top", "right", "bottom", "left"}
)

// allowedKeys maps each kind to the attribute keys it accepts.
var allowedKeys = map[string][]string{
	kindElement: sizingKeys,
	kindEmpty:   nil,
	kindPadding: append(append([]string{}, insetKeys...), sizingKeys...),
	kindInset:   append(append([]string{}, insetKeys...), sizingKeys...),
	kindCenter:  sizingKeys,
	kindZStack:  sizingKeys,
	kindVStack:  append([]string{"spacing", "align"}, sizingKeys...),
	kindHStack:  append([]string{"spacing", "align"}, sizingKeys...),
	kindVSpacer: {"min"},
	kindHSpacer: {"min"},
}

// Env supplies the values a Document is evaluated against.
type Env struct {
	// Flags holds the truth value of each conditional flag. Missing flags are false.
	Flags map[string]bool

	// Surface resolves an element name to the surface it lays out. It is called
	// once per element occurrence; returning the same surface for the same name
	// is the caller's responsibility.
	Surface func(name string) box.Surface
}

// Build evaluates the document into a layout tree.
func (d *Document) Build(env Env) (box.Node, error) {
	if env.Surface == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "dsl: Env.Surface is required")
	}
	children, err := buildNodes(d.Nodes, env)
	if err != nil {
		return nil, err
	}
	return box.Build(children...), nil
}

func buildNodes(nodes []*Node, env Env) ([]box.Node, error) {
	out := make([]box.Node, 0, len(nodes))
	for _, n := range nodes {
		built, err := buildNode(n, env)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

func buildNode(n *Node, env Env) (box.Node, error) {
	if n.Cond != nil {
		return buildCond(n.Cond, env)
	}
	return buildBox(n.Box, env)
}

func buildCond(c *Cond, env Env) (box.Node, error) {
	truth := env.Flags[c.Flag]
	if c.Negate {
		truth = !truth
	}
	then, err := buildNodes(c.Then.Nodes, env)
	if err != nil {
		return nil, err
	}
	if c.Else == nil {
		return box.If(truth, then...), nil
	}
	otherwise, err := buildNodes(c.Else.Nodes, env)
	if err != nil {
		return nil, err
	}
	return box.IfElse(truth, box.Build(then...), box.Build(otherwise...)), nil
}

// =============================================================================
// Boxes
// =============================================================================

func buildBox(b *Box, env Env) (box.Node, error) {
	kind := strings.ToLower(b.Kind)
	allowed, ok := allowedKeys[kind]
	if !ok {
		return nil, sourceErrorf(b.Pos, "unknown kind %q (want one of %s)", b.Kind, strings.Join(Kinds, ", "))
	}

	attrs, err := collectAttrs(b, allowed)
	if err != nil {
		return nil, err
	}

	if b.Name != "" && kind != kindElement {
		return nil, sourceErrorf(b.Pos, "%s does not take a name", kind)
	}

	var children []box.Node
	if b.Children != nil {
		switch kind {
		case kindElement, kindEmpty, kindVSpacer, kindHSpacer:
			return nil, sourceErrorf(b.Children.Pos, "%s does not take children", kind)
		}
		if children, err = buildNodes(b.Children.Nodes, env); err != nil {
			return nil, err
		}
	}

	size, err := attrs.sizing()
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindElement:
		if b.Name == "" {
			return nil, sourceErrorf(b.Pos, "element requires a name")
		}
		if err := errs.ValidateName(b.Name); err != nil {
			return nil, sourceErrorf(b.Pos, "%s", errs.UserMessage(err))
		}
		return applySizing(box.NewElement(env.Surface(b.Name)), size), nil

	case kindEmpty:
		return box.Empty{}, nil

	case kindPadding:
		insets, err := attrs.insets(false)
		if err != nil {
			return nil, err
		}
		return applySizing(box.NewPadding(insets, children...), size), nil

	case kindInset:
		insets, err := attrs.insets(true)
		if err != nil {
			return nil, err
		}
		return applySizing(box.NewInset(insets, children...), size), nil

	case kindCenter:
		return applySizing(box.NewCenter(children...), size), nil

	case kindZStack:
		return applySizing(box.NewZStack(children...), size), nil

	case kindVStack:
		s := box.NewVStack(children...)
		if v, ok, err := attrs.number("spacing"); err != nil {
			return nil, err
		} else if ok {
			s = s.Spacing(v)
		}
		if a, ok := attrs["align"]; ok {
			align, err := horizontalAlignment(a)
			if err != nil {
				return nil, err
			}
			s = s.Align(align)
		}
		return applySizing(s, size), nil

	case kindHStack:
		s := box.NewHStack(children...)
		if v, ok, err := attrs.number("spacing"); err != nil {
			return nil, err
		} else if ok {
			s = s.Spacing(v)
		}
		if a, ok := attrs["align"]; ok {
			align, err := verticalAlignment(a)
			if err != nil {
				return nil, err
			}
			s = s.Align(align)
		}
		return applySizing(s, size), nil

	case kindVSpacer:
		s := box.NewVSpacer()
		if v, ok, err := attrs.number("min"); err != nil {
			return nil, err
		} else if ok {
			s = s.MinLength(v)
		}
		return s, nil

	case kindHSpacer:
		s := box.NewHSpacer()
		if v, ok, err := attrs.number("min"); err != nil {
			return nil, err
		} else if ok {
			s = s.MinLength(v)
		}
		return s, nil
	}

	return nil, sourceErrorf(b.Pos, "unhandled kind %q", kind)
}

// =============================================================================
// Attributes
// =============================================================================

type attrSet map[string]*Attr

func collectAttrs(b *Box, allowed []string) (attrSet, error) {
	set := attrSet{}
	for _, a := range b.Attrs {
		key := strings.ToLower(a.Key)
		if !contains(allowed, key) {
			if len(allowed) == 0 {
				return nil, sourceErrorf(a.Pos, "%s takes no attributes", b.Kind)
			}
			return nil, sourceErrorf(a.Pos, "unknown attribute %q for %s (want one of %s)",
				a.Key, b.Kind, strings.Join(allowed, ", "))
		}
		if _, dup := set[key]; dup {
			return nil, sourceErrorf(a.Pos, "duplicate attribute %q", a.Key)
		}
		set[key] = a
	}
	return set, nil
}

func (s attrSet) number(key string) (float64, bool, error) {
	a, ok := s[key]
	if !ok {
		return 0, false, nil
	}
	if a.Value.Number == "" {
		return 0, false, sourceErrorf(a.Pos, "%s: expected a number, got %q", key, a.Value)
	}
	v, err := strconv.ParseFloat(a.Value.Number, 64)
	if err != nil {
		return 0, false, sourceErrorf(a.Pos, "%s: %v", key, err)
	}
	return v, true, nil
}

// edge reads an inset amount; "inf" is accepted when unbounded is set.
func (s attrSet) edge(key string, unbounded bool) (float64, bool, error) {
	a, ok := s[key]
	if !ok {
		return 0, false, nil
	}
	if strings.EqualFold(a.Value.Word, "inf") {
		if !unbounded {
			return 0, false, sourceErrorf(a.Pos, "%s: inf is only valid on inset", key)
		}
		return box.Unbounded, true, nil
	}
	return s.number(key)
}

func (s attrSet) insets(unbounded bool) (box.Insets, error) {
	var in box.Insets
	set := func(key string, dst ...*float64) error {
		v, ok, err := s.edge(key, unbounded)
		if err != nil || !ok {
			return err
		}
		for _, d := range dst {
			*d = v
		}
		return nil
	}
	// General keys first so per-edge keys override them.
	steps := []struct {
		key string
		dst []*float64
	}{
		{"all", []*float64{&in.Top, &in.Right, &in.Bottom, &in.Left}},
		{"vertical", []*float64{&in.Top, &in.Bottom}},
		{"horizontal", []*float64{&in.Left, &in.Right}},
		{"top", []*float64{&in.Top}},
		{"right", []*float64{&in.Right}},
		{"bottom", []*float64{&in.Bottom}},
		{"left", []*float64{&in.Left}},
	}
	for _, st := range steps {
		if err := set(st.key, st.dst...); err != nil {
			return box.Insets{}, err
		}
	}
	return in, nil
}

type sizeAttrs struct {
	opts   []box.FrameOption
	aspect *box.Ratio
}

func (s attrSet) sizing() (sizeAttrs, error) {
	var out sizeAttrs
	if v, ok, err := s.number("width"); err != nil {
		return out, err
	} else if ok {
		out.opts = append(out.opts, box.Width(v))
	}
	if v, ok, err := s.number("height"); err != nil {
		return out, err
	} else if ok {
		out.opts = append(out.opts, box.Height(v))
	}
	if a, ok := s["aspect"]; ok {
		r, err := parseRatio(a)
		if err != nil {
			return out, err
		}
		out.aspect = &r
	}
	return out, nil
}

func parseRatio(a *Attr) (box.Ratio, error) {
	if a.Value.Number != "" {
		v, err := strconv.ParseFloat(a.Value.Number, 64)
		if err != nil || v <= 0 {
			return box.Ratio{}, sourceErrorf(a.Pos, "aspect: invalid ratio %q", a.Value)
		}
		return box.Ratio{Width: v, Height: 1}, nil
	}
	if a.Value.Ratio == "" {
		return box.Ratio{}, sourceErrorf(a.Pos, "aspect: expected w:h, got %q", a.Value)
	}
	w, h, _ := strings.Cut(a.Value.Ratio, ":")
	wv, err1 := strconv.ParseFloat(w, 64)
	hv, err2 := strconv.ParseFloat(h, 64)
	if err1 != nil || err2 != nil || wv <= 0 || hv <= 0 {
		return box.Ratio{}, sourceErrorf(a.Pos, "aspect: invalid ratio %q", a.Value)
	}
	return box.Ratio{Width: wv, Height: hv}, nil
}

type sizable[T any] interface {
	box.Node
	Frame(opts ...box.FrameOption) T
	AspectRatio(width, height float64, side ...box.FrameOption) T
}

func applySizing[T sizable[T]](n T, s sizeAttrs) T {
	switch {
	case s.aspect != nil:
		return n.AspectRatio(s.aspect.Width, s.aspect.Height, s.opts...)
	case len(s.opts) > 0:
		return n.Frame(s.opts...)
	}
	return n
}

func horizontalAlignment(a *Attr) (box.HorizontalAlignment, error) {
	switch strings.ToLower(a.Value.Word) {
	case "center":
		return box.AlignCenter, nil
	case "leading":
		return box.AlignLeading, nil
	case "trailing":
		return box.AlignTrailing, nil
	}
	return 0, sourceErrorf(a.Pos, "align: want center, leading or trailing, got %q", a.Value)
}

func verticalAlignment(a *Attr) (box.VerticalAlignment, error) {
	switch strings.ToLower(a.Value.Word) {
	case "center":
		return box.AlignMiddle, nil
	case "top":
		return box.AlignTop, nil
	case "bottom":
		return box.AlignBottom, nil
	}
	return 0, sourceErrorf(a.Pos, "align: want center, top or bottom, got %q", a.Value)
}

func sourceErrorf(pos lexer.Position, format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeInvalidSource, &errs.SourceError{
		Filename: pos.Filename,
		Line:     pos.Line,
		Column:   pos.Column,
		Message:  fmt.Sprintf(format, args...),
	}, "build layout")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
