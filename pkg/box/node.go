package box

import (
	"math"
)

// Node is one layout declaration. The implementations in this package are the
// only ones; the unexported marker method keeps the set closed so the compiler
// can switch over it exhaustively.
type Node interface {
	node()
}

// =============================================================================
// Alignment
// =============================================================================

// HorizontalAlignment positions VStack children across the x axis.
type HorizontalAlignment int

const (
	AlignCenter HorizontalAlignment = iota
	AlignLeading
	AlignTrailing
)

// VerticalAlignment positions HStack children across the y axis.
type VerticalAlignment int

const (
	AlignMiddle VerticalAlignment = iota
	AlignTop
	AlignBottom
)

// crossAlignment is the axis-neutral form both alignments reduce to.
type crossAlignment int

const (
	alignCenter crossAlignment = iota
	alignNear
	alignFar
)

func (a HorizontalAlignment) cross() crossAlignment {
	switch a {
	case AlignLeading:
		return alignNear
	case AlignTrailing:
		return alignFar
	}
	return alignCenter
}

func (a VerticalAlignment) cross() crossAlignment {
	switch a {
	case AlignTop:
		return alignNear
	case AlignBottom:
		return alignFar
	}
	return alignCenter
}

func (a HorizontalAlignment) String() string {
	return [...]string{"center", "leading", "trailing"}[a.cross()]
}

func (a VerticalAlignment) String() string {
	return [...]string{"center", "top", "bottom"}[a.cross()]
}

// =============================================================================
// Insets
// =============================================================================

// Unbounded marks an Inset edge that only has to stay inside its parent.
var Unbounded = math.Inf(1)

// IsUnbounded reports whether v is the Unbounded sentinel.
func IsUnbounded(v float64) bool { return math.IsInf(v, 1) }

// Insets are per-edge amounts used by Padding and Inset.
type Insets struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// All returns equal insets on every edge.
func All(v float64) Insets { return Insets{Top: v, Right: v, Bottom: v, Left: v} }

// Symmetric returns insets with one amount for top/bottom and one for left/right.
func Symmetric(vertical, horizontal float64) Insets {
	return Insets{Top: vertical, Right: horizontal, Bottom: vertical, Left: horizontal}
}

// finite replaces amounts no constraint can carry with 0. With keepUnbounded
// set, the Unbounded sentinel survives.
func (in Insets) finite(keepUnbounded bool) Insets {
	fix := func(v float64) float64 {
		if keepUnbounded && IsUnbounded(v) {
			return v
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0
		}
		return v
	}
	return Insets{Top: fix(in.Top), Right: fix(in.Right), Bottom: fix(in.Bottom), Left: fix(in.Left)}
}

// =============================================================================
// Leaf Variants
// =============================================================================

// Empty produces no anchors and no constraints.
type Empty struct{}

// Element places one caller-owned surface.
type Element struct {
	surface Surface
	sizing  Sizing
}

// NewElement wraps a ready-made surface.
func NewElement(s Surface) Element { return Element{surface: s} }

// ElementFunc wraps the surface produced by factory. The factory runs once, here.
func ElementFunc(factory func() Surface) Element { return Element{surface: factory()} }

// Surface returns the wrapped surface.
func (e Element) Surface() Surface { return e.surface }

// Sizing returns the element's Frame/AspectRatio modifier.
func (e Element) Sizing() Sizing { return e.sizing }

// Frame fixes the width and/or height.
func (e Element) Frame(opts ...FrameOption) Element { e.sizing = FixedSize(opts...); return e }

// AspectRatio constrains height to width*(height/width).
func (e Element) AspectRatio(width, height float64, side ...FrameOption) Element {
	e.sizing = AspectSize(width, height, side...)
	return e
}

// Padded wraps the element in a Padding.
func (e Element) Padded(insets Insets) Padding { return NewPadding(insets, e) }

// VSpacer is a flexible vertical gap.
type VSpacer struct {
	minLength float64
	hasMin    bool
}

// NewVSpacer returns a spacer without a minimum length.
func NewVSpacer() VSpacer { return VSpacer{} }

// MinLength sets a hard lower bound on the spacer's height.
func (s VSpacer) MinLength(v float64) VSpacer { s.minLength, s.hasMin = v, true; return s }

// HSpacer is a flexible horizontal gap.
type HSpacer struct {
	minLength float64
	hasMin    bool
}

// NewHSpacer returns a spacer without a minimum length.
func NewHSpacer() HSpacer { return HSpacer{} }

// MinLength sets a hard lower bound on the spacer's width.
func (s HSpacer) MinLength(v float64) HSpacer { s.minLength, s.hasMin = v, true; return s }

// =============================================================================
// Grouping Variants
// =============================================================================

// Multiple is an ordered list of sibling nodes.
type Multiple struct {
	children []Node
}

// Children returns the siblings in declaration order.
func (m Multiple) Children() []Node { return append([]Node(nil), m.children...) }

// =============================================================================
// Framing Variants
// =============================================================================

// Padding lays its content out in a frame shrunk by fixed insets.
type Padding struct {
	insets  Insets
	content Node
	sizing  Sizing
}

// NewPadding builds a Padding around children.
// Non-finite amounts, Unbounded included, are treated as 0.
func NewPadding(insets Insets, children ...Node) Padding {
	return Padding{insets: insets.finite(false), content: Build(children...)}
}

// Insets returns the padding amounts.
func (p Padding) Insets() Insets { return p.insets }

// Content returns the padded node.
func (p Padding) Content() Node { return p.content }

// Frame fixes the width and/or height of the padding box, insets included.
// A sized padding box is centered in its parent.
func (p Padding) Frame(opts ...FrameOption) Padding { p.sizing = FixedSize(opts...); return p }

// AspectRatio relates the padding box's height to its width.
func (p Padding) AspectRatio(width, height float64, side ...FrameOption) Padding {
	p.sizing = AspectSize(width, height, side...)
	return p
}

// Inset lays its content out in a frame whose edges are either pinned at an
// offset or, for Unbounded amounts, only kept inside the parent.
type Inset struct {
	insets  Insets
	content Node
	sizing  Sizing
}

// NewInset builds an Inset around children.
// NaN and negative infinity are treated as 0.
func NewInset(insets Insets, children ...Node) Inset {
	return Inset{insets: insets.finite(true), content: Build(children...)}
}

// Insets returns the per-edge amounts (possibly Unbounded).
func (i Inset) Insets() Insets { return i.insets }

// Content returns the inset node.
func (i Inset) Content() Node { return i.content }

// Frame fixes the width and/or height of the box the insets are measured in.
// A sized inset box is centered in its parent.
func (i Inset) Frame(opts ...FrameOption) Inset { i.sizing = FixedSize(opts...); return i }

// AspectRatio relates the inset box's height to its width.
func (i Inset) AspectRatio(width, height float64, side ...FrameOption) Inset {
	i.sizing = AspectSize(width, height, side...)
	return i
}

// Center lays its content out in a frame centered in the parent.
type Center struct {
	content Node
	sizing  Sizing
}

// NewCenter builds a Center around children.
func NewCenter(children ...Node) Center { return Center{content: Build(children...)} }

// Content returns the centered node.
func (c Center) Content() Node { return c.content }

// Frame fixes the centered frame's width and/or height.
func (c Center) Frame(opts ...FrameOption) Center { c.sizing = FixedSize(opts...); return c }

// AspectRatio relates the centered frame's height to its width.
func (c Center) AspectRatio(width, height float64, side ...FrameOption) Center {
	c.sizing = AspectSize(width, height, side...)
	return c
}

// =============================================================================
// Stacking Variants
// =============================================================================

// ZStack overlays every child on the same frame.
type ZStack struct {
	content Node
	sizing  Sizing
}

// NewZStack builds an overlay of children.
func NewZStack(children ...Node) ZStack { return ZStack{content: Build(children...)} }

// Content returns the overlaid node(s).
func (z ZStack) Content() Node { return z.content }

// Frame fixes the overlay frame's width and/or height. A sized overlay is
// centered in its parent.
func (z ZStack) Frame(opts ...FrameOption) ZStack { z.sizing = FixedSize(opts...); return z }

// AspectRatio relates the overlay frame's height to its width.
func (z ZStack) AspectRatio(width, height float64, side ...FrameOption) ZStack {
	z.sizing = AspectSize(width, height, side...)
	return z
}

// VStack chains children top to bottom.
type VStack struct {
	spacing   float64
	alignment HorizontalAlignment
	content   Node
	sizing    Sizing
}

// NewVStack builds a vertical stack with spacing 0 and center alignment.
func NewVStack(children ...Node) VStack { return VStack{content: Build(children...)} }

// Spacing sets the gap between adjacent children.
func (s VStack) Spacing(v float64) VStack { s.spacing = v; return s }

// Align sets the cross-axis alignment.
func (s VStack) Align(a HorizontalAlignment) VStack { s.alignment = a; return s }

// Alignment returns the cross-axis alignment.
func (s VStack) Alignment() HorizontalAlignment { return s.alignment }

// Gap returns the configured spacing.
func (s VStack) Gap() float64 { return s.spacing }

// Content returns the stacked node(s).
func (s VStack) Content() Node { return s.content }

// Frame fixes the stack frame's width and/or height. A sized stack is
// centered in its parent.
func (s VStack) Frame(opts ...FrameOption) VStack { s.sizing = FixedSize(opts...); return s }

// AspectRatio relates the stack frame's height to its width.
func (s VStack) AspectRatio(width, height float64, side ...FrameOption) VStack {
	s.sizing = AspectSize(width, height, side...)
	return s
}

// HStack chains children left to right.
type HStack struct {
	spacing   float64
	alignment VerticalAlignment
	content   Node
	sizing    Sizing
}

// NewHStack builds a horizontal stack with spacing 0 and center alignment.
func NewHStack(children ...Node) HStack { return HStack{content: Build(children...)} }

// Spacing sets the gap between adjacent children.
func (s HStack) Spacing(v float64) HStack { s.spacing = v; return s }

// Align sets the cross-axis alignment.
func (s HStack) Align(a VerticalAlignment) HStack { s.alignment = a; return s }

// Alignment returns the cross-axis alignment.
func (s HStack) Alignment() VerticalAlignment { return s.alignment }

// Gap returns the configured spacing.
func (s HStack) Gap() float64 { return s.spacing }

// Content returns the stacked node(s).
func (s HStack) Content() Node { return s.content }

// Frame fixes the stack frame's width and/or height. A sized stack is
// centered in its parent.
func (s HStack) Frame(opts ...FrameOption) HStack { s.sizing = FixedSize(opts...); return s }

// AspectRatio relates the stack frame's height to its width.
func (s HStack) AspectRatio(width, height float64, side ...FrameOption) HStack {
	s.sizing = AspectSize(width, height, side...)
	return s
}

func (Empty) node()    {}
func (Element) node()  {}
func (Multiple) node() {}
func (Padding) node()  {}
func (Inset) node()    {}
func (Center) node()   {}
func (ZStack) node()   {}
func (VStack) node()   {}
func (HStack) node()   {}
func (VSpacer) node()  {}
func (HSpacer) node()  {}
