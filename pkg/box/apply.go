package box

import (
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/constraint"
)

// spacerTarget is the "as large as possible" length spacers ask for at
// SpacerGrowth priority.
const spacerTarget = 1000

// =============================================================================
// Compile
// =============================================================================

// Compiled is the output of one compile pass: the root anchor group pinned to
// the host, plus every anchor group, surface and constraint the tree produced.
type Compiled struct {
	Root         *AnchorGroup
	AnchorGroups []*AnchorGroup
	Surfaces     []Surface
	Constraints  []constraint.Constraint
}

// Compile runs tree through a fresh Resolver against host. The root anchor group
// is pinned to the host's four edges and whatever the tree hands back is placed
// inside it.
func Compile(tree Node, host constraint.Item) Compiled {
	return CompileWith(NewResolver(""), tree, host)
}

// CompileWith is Compile with a caller-provided resolver.
func CompileWith(r *Resolver, tree Node, host constraint.Item) Compiled {
	root := newAnchorGroup("root")
	r.groups = append(r.groups, root)

	h := constraint.EdgesOf(host)
	r.Append(
		root.Top().EqualTo(h.Top()),
		root.Right().EqualTo(h.Right()),
		root.Bottom().EqualTo(h.Bottom()),
		root.Left().EqualTo(h.Left()),
	)
	place(r, Apply(r, tree, root), root)

	return Compiled{
		Root:         root,
		AnchorGroups: r.AnchorGroups(),
		Surfaces:     r.Surfaces(),
		Constraints:  r.Constraints(),
	}
}

// =============================================================================
// Apply
// =============================================================================

// Apply compiles n against parent and returns what n produced for the caller to
// place. This is the single dispatch point over the closed set of node variants.
func Apply(r *Resolver, n Node, parent *AnchorGroup) Result {
	switch n := n.(type) {
	case nil, Empty:
		return emptyResult()
	case Element:
		return applyElement(r, n)
	case Multiple:
		return applyMultiple(r, n, parent)
	case condition:
		return Apply(r, n.branch, parent)
	case Padding:
		return applyPadding(r, n, parent)
	case Inset:
		return applyInset(r, n, parent)
	case Center:
		return applyCenter(r, n, parent)
	case ZStack:
		return applyZStack(r, n, parent)
	case VStack:
		return applyStack(r, stackParams{vertical, n.spacing, n.alignment.cross(), n.sizing}, n.content, parent)
	case HStack:
		return applyStack(r, stackParams{horizontal, n.spacing, n.alignment.cross(), n.sizing}, n.content, parent)
	case VSpacer:
		return applySpacer(r, vertical, n.minLength, n.hasMin)
	case HSpacer:
		return applySpacer(r, horizontal, n.minLength, n.hasMin)
	}
	panic(fmt.Sprintf("box: unhandled node %T", n))
}

func applyElement(r *Resolver, e Element) Result {
	if e.surface == nil {
		return emptyResult()
	}
	r.AppendSurface(e.surface)
	r.Append(e.sizing.constraints(e.surface)...)
	return singleResult(Entry{Item: e.surface, Sizing: e.sizing})
}

func applyMultiple(r *Resolver, m Multiple, parent *AnchorGroup) Result {
	var entries []Entry
	for _, child := range m.children {
		entries = append(entries, Apply(r, child, parent).Entries...)
	}
	return multipleResult(entries)
}

func applyPadding(r *Resolver, p Padding, parent *AnchorGroup) Result {
	frame, out := ownFrame(r, parent, p.sizing)
	guide := r.MakeAnchorGroup()
	r.Append(
		guide.Top().EqualTo(frame.Top()).Plus(p.insets.Top),
		frame.Right().EqualTo(guide.Right()).Plus(p.insets.Right),
		frame.Bottom().EqualTo(guide.Bottom()).Plus(p.insets.Bottom),
		guide.Left().EqualTo(frame.Left()).Plus(p.insets.Left),
	)
	place(r, Apply(r, p.content, guide), guide)
	return out
}

func applyInset(r *Resolver, in Inset, parent *AnchorGroup) Result {
	frame, out := ownFrame(r, parent, in.sizing)
	guide := r.MakeAnchorGroup()
	ins := in.insets

	if IsUnbounded(ins.Top) {
		r.Append(guide.Top().GreaterOrEqualTo(frame.Top()))
	} else {
		r.Append(guide.Top().EqualTo(frame.Top()).Plus(ins.Top))
	}
	if IsUnbounded(ins.Right) {
		r.Append(guide.Right().LessOrEqualTo(frame.Right()))
	} else {
		r.Append(frame.Right().EqualTo(guide.Right()).Plus(ins.Right))
	}
	if IsUnbounded(ins.Bottom) {
		r.Append(guide.Bottom().LessOrEqualTo(frame.Bottom()))
	} else {
		r.Append(frame.Bottom().EqualTo(guide.Bottom()).Plus(ins.Bottom))
	}
	if IsUnbounded(ins.Left) {
		r.Append(guide.Left().GreaterOrEqualTo(frame.Left()))
	} else {
		r.Append(guide.Left().EqualTo(frame.Left()).Plus(ins.Left))
	}

	place(r, Apply(r, in.content, guide), guide)
	return out
}

func applyCenter(r *Resolver, c Center, parent *AnchorGroup) Result {
	guide := r.MakeAnchorGroup()
	r.Append(
		guide.CenterX().EqualTo(parent.CenterX()),
		guide.CenterY().EqualTo(parent.CenterY()),
		guide.Top().GreaterOrEqualTo(parent.Top()),
		guide.Right().LessOrEqualTo(parent.Right()),
		guide.Bottom().LessOrEqualTo(parent.Bottom()),
		guide.Left().GreaterOrEqualTo(parent.Left()),
	)
	r.Append(c.sizing.constraints(guide)...)
	place(r, Apply(r, c.content, guide), guide)
	return emptyResult()
}

func applyZStack(r *Resolver, z ZStack, parent *AnchorGroup) Result {
	if len(flatten(z.content, nil)) == 0 {
		return emptyResult()
	}
	frame, out := ownFrame(r, parent, z.sizing)
	place(r, Apply(r, z.content, frame), frame)
	return out
}

// ownFrame returns the frame a container lays its content out in. Unsized
// containers work directly in parent. A sized container gets its own anchor
// group carrying the sizing; the group comes back in the result so the caller
// places it like a sized element.
func ownFrame(r *Resolver, parent *AnchorGroup, s Sizing) (*AnchorGroup, Result) {
	if s.Kind == SizingNone {
		return parent, emptyResult()
	}
	g := r.MakeAnchorGroup()
	r.Append(s.constraints(g)...)
	return g, singleResult(Entry{Item: g, Sizing: s})
}

func applySpacer(r *Resolver, ax axis, minLength float64, hasMin bool) Result {
	g := r.MakeAnchorGroup()
	length := g.Attr(ax.mainExtent())
	if hasMin {
		r.Append(length.GreaterOrEqualToConstant(minLength))
	}
	r.Append(length.EqualToConstant(spacerTarget).WithPriority(constraint.SpacerGrowth))
	return singleResult(Entry{Item: g})
}

// =============================================================================
// Stacks
// =============================================================================

type stackParams struct {
	axis    axis
	spacing float64
	align   crossAlignment
	sizing  Sizing
}

// applyStack chains content along st.axis inside parent. Elements and spacers
// are chained directly; every other child gets its own slot group so it can be
// laid out as a unit.
func applyStack(r *Resolver, st stackParams, content Node, parent *AnchorGroup) Result {
	leaves := flatten(content, nil)
	if len(leaves) == 0 {
		return emptyResult()
	}
	frame, out := ownFrame(r, parent, st.sizing)

	var items []constraint.Item
	for _, leaf := range leaves {
		switch leaf.(type) {
		case Element, VSpacer, HSpacer:
			items = append(items, Apply(r, leaf, frame).Items()...)
		default:
			slot := r.MakeAnchorGroup()
			place(r, Apply(r, leaf, slot), slot)
			items = append(items, slot)
		}
	}
	if len(items) == 0 {
		return out
	}

	ax := st.axis
	p := constraint.EdgesOf(frame)

	// Hug contents on the cross axis.
	r.Append(p.Attr(ax.crossExtent()).EqualToConstant(0).WithPriority(constraint.FittingSize))

	near, far, mid := ax.crossNear(), ax.crossFar(), ax.crossCenter()
	for _, item := range items {
		e := constraint.EdgesOf(item)
		r.Append(
			e.Attr(near).EqualTo(p.Attr(near)).WithPriority(constraint.DefaultLow),
			e.Attr(far).EqualTo(p.Attr(far)).WithPriority(constraint.DefaultLow),
		)
		switch st.align {
		case alignNear:
			r.Append(
				e.Attr(near).EqualTo(p.Attr(near)),
				e.Attr(far).LessOrEqualTo(p.Attr(far)),
			)
		case alignFar:
			r.Append(
				e.Attr(near).GreaterOrEqualTo(p.Attr(near)),
				e.Attr(far).EqualTo(p.Attr(far)),
			)
		default:
			r.Append(
				e.Attr(near).GreaterOrEqualTo(p.Attr(near)),
				e.Attr(mid).EqualTo(p.Attr(mid)),
				e.Attr(far).LessOrEqualTo(p.Attr(far)),
			)
		}
	}

	start, end := ax.mainNear(), ax.mainFar()
	first := constraint.EdgesOf(items[0])
	r.Append(first.Attr(start).EqualTo(p.Attr(start)))
	for i := 1; i < len(items); i++ {
		prev, next := constraint.EdgesOf(items[i-1]), constraint.EdgesOf(items[i])
		r.Append(next.Attr(start).EqualTo(prev.Attr(end)).Plus(st.spacing))
	}
	last := constraint.EdgesOf(items[len(items)-1])
	r.Append(last.Attr(end).EqualTo(p.Attr(end)))

	return out
}

// flatten expands Multiple, condition and Empty structurally so a stack sees its
// real children in declaration order.
func flatten(n Node, out []Node) []Node {
	switch n := n.(type) {
	case nil, Empty:
		return out
	case Multiple:
		for _, c := range n.children {
			out = flatten(c, out)
		}
		return out
	case condition:
		return flatten(n.branch, out)
	}
	return append(out, n)
}

// =============================================================================
// Placement
// =============================================================================

// place pins every produced entry into frame. Axes an entry sizes itself on are
// centered and contained, with soft edge pins so flexible frames still hug it;
// all other axes are pinned edge to edge.
func place(r *Resolver, res Result, frame *AnchorGroup) {
	f := constraint.EdgesOf(frame)
	for _, entry := range res.Entries {
		it := constraint.EdgesOf(entry.Item)
		for _, ax := range [...]axis{horizontal, vertical} {
			near, far, mid := ax.mainNear(), ax.mainFar(), ax.mainCenter()
			if !entry.Sizing.constrains(ax == horizontal) {
				r.Append(
					it.Attr(near).EqualTo(f.Attr(near)),
					it.Attr(far).EqualTo(f.Attr(far)),
				)
				continue
			}
			r.Append(
				it.Attr(mid).EqualTo(f.Attr(mid)),
				it.Attr(near).GreaterOrEqualTo(f.Attr(near)),
				it.Attr(far).LessOrEqualTo(f.Attr(far)),
				it.Attr(near).EqualTo(f.Attr(near)).WithPriority(constraint.DefaultHigh),
				it.Attr(far).EqualTo(f.Attr(far)).WithPriority(constraint.DefaultHigh),
			)
		}
	}
}

// =============================================================================
// Axes
// =============================================================================

// axis names the main axis of a stack or spacer.
type axis int

const (
	vertical axis = iota
	horizontal
)

func (a axis) mainNear() constraint.Attribute {
	if a == vertical {
		return constraint.Top
	}
	return constraint.Left
}

func (a axis) mainFar() constraint.Attribute {
	if a == vertical {
		return constraint.Bottom
	}
	return constraint.Right
}

func (a axis) mainCenter() constraint.Attribute {
	if a == vertical {
		return constraint.CenterY
	}
	return constraint.CenterX
}

func (a axis) mainExtent() constraint.Attribute {
	if a == vertical {
		return constraint.Height
	}
	return constraint.Width
}

func (a axis) crossNear() constraint.Attribute {
	if a == vertical {
		return constraint.Left
	}
	return constraint.Top
}

func (a axis) crossFar() constraint.Attribute {
	if a == vertical {
		return constraint.Right
	}
	return constraint.Bottom
}

func (a axis) crossCenter() constraint.Attribute {
	if a == vertical {
		return constraint.CenterX
	}
	return constraint.CenterY
}

func (a axis) crossExtent() constraint.Attribute {
	if a == vertical {
		return constraint.Width
	}
	return constraint.Height
}
