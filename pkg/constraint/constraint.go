// Package constraint defines the linear relations the layout compiler emits.
//
// A [Constraint] relates one [Anchor] to another anchor (or to a constant) with an
// equality or inequality, an optional multiplier and constant offset, and a
// [Priority]. Constraints are immutable values: every builder method returns a
// modified copy, so a constraint handed to a solver can never change underneath it.
//
//	c := guide.Top().EqualTo(parent.Top()).Plus(8)
//	soft := child.Left().EqualTo(parent.Left()).WithPriority(constraint.DefaultLow)
package constraint

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Attributes
// =============================================================================

// Attribute names one edge, center line or dimension of an item.
type Attribute int

const (
	Top Attribute = iota
	Right
	Bottom
	Left
	CenterX
	CenterY
	Width
	Height
)

var attributeNames = [...]string{
	Top:     "top",
	Right:   "right",
	Bottom:  "bottom",
	Left:    "left",
	CenterX: "centerX",
	CenterY: "centerY",
	Width:   "width",
	Height:  "height",
}

// String returns the lower-camel attribute name.
func (a Attribute) String() string {
	if a < 0 || int(a) >= len(attributeNames) {
		return "attr(" + strconv.Itoa(int(a)) + ")"
	}
	return attributeNames[a]
}

// IsHorizontal reports whether the attribute lies on the x axis.
func (a Attribute) IsHorizontal() bool {
	return a == Left || a == Right || a == CenterX || a == Width
}

// =============================================================================
// Relations
// =============================================================================

// Relation is the comparison between the two sides of a constraint.
type Relation int

const (
	Equal Relation = iota
	GreaterOrEqual
	LessOrEqual
)

// String returns the operator form ("==", ">=", "<=").
func (r Relation) String() string {
	switch r {
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	case LessOrEqual:
		return "<="
	}
	return "?"
}

// =============================================================================
// Priorities
// =============================================================================

// Priority arbitrates over-constrained systems. Values at or above Required are
// hard requirements; anything lower is minimized as a weighted error.
type Priority float64

const (
	// Required marks a hard constraint.
	Required Priority = 1000

	// DefaultHigh is used for soft edge pins that should normally win.
	DefaultHigh Priority = 750

	// DefaultLow is the soft full-bleed default stacks give their children.
	DefaultLow Priority = 250

	// SpacerGrowth lets spacers absorb slack ahead of the hug bias.
	SpacerGrowth Priority = 60

	// FittingSize is the "hug contents" bias on a container extent.
	FittingSize Priority = 50
)

// IsRequired reports whether p denotes a hard requirement.
func (p Priority) IsRequired() bool { return p >= Required }

// =============================================================================
// Items and Anchors
// =============================================================================

// Item is anything that exposes an anchor set: surfaces, anchor groups and hosts.
// Implementations must be comparable (pointer types in practice) because items
// are used as identity keys by solvers and bookkeeping.
type Item interface {
	// Name identifies the item in logs, dumps and rendered output.
	Name() string
}

// Anchor is one attribute of one item.
type Anchor struct {
	Item Item
	Attr Attribute
}

// AnchorOf returns the anchor for attr on item.
func AnchorOf(item Item, attr Attribute) Anchor {
	return Anchor{Item: item, Attr: attr}
}

// IsZero reports whether the anchor references no item.
func (a Anchor) IsZero() bool { return a.Item == nil }

// String returns "item.attr".
func (a Anchor) String() string {
	if a.Item == nil {
		return "<nil>." + a.Attr.String()
	}
	return a.Item.Name() + "." + a.Attr.String()
}

// EqualTo returns the required constraint a == b.
func (a Anchor) EqualTo(b Anchor) Constraint { return relate(a, Equal, b) }

// GreaterOrEqualTo returns the required constraint a >= b.
func (a Anchor) GreaterOrEqualTo(b Anchor) Constraint { return relate(a, GreaterOrEqual, b) }

// LessOrEqualTo returns the required constraint a <= b.
func (a Anchor) LessOrEqualTo(b Anchor) Constraint { return relate(a, LessOrEqual, b) }

// EqualToConstant returns the required constraint a == c.
func (a Anchor) EqualToConstant(c float64) Constraint { return relateConstant(a, Equal, c) }

// GreaterOrEqualToConstant returns the required constraint a >= c.
func (a Anchor) GreaterOrEqualToConstant(c float64) Constraint {
	return relateConstant(a, GreaterOrEqual, c)
}

// LessOrEqualToConstant returns the required constraint a <= c.
func (a Anchor) LessOrEqualToConstant(c float64) Constraint {
	return relateConstant(a, LessOrEqual, c)
}

// Edges is an anchor-set accessor for an item. Embedding types set the item once
// at construction.
type Edges struct {
	item Item
}

// EdgesOf returns the anchor set of item.
func EdgesOf(item Item) Edges { return Edges{item: item} }

func (e Edges) Top() Anchor     { return Anchor{e.item, Top} }
func (e Edges) Right() Anchor   { return Anchor{e.item, Right} }
func (e Edges) Bottom() Anchor  { return Anchor{e.item, Bottom} }
func (e Edges) Left() Anchor    { return Anchor{e.item, Left} }
func (e Edges) CenterX() Anchor { return Anchor{e.item, CenterX} }
func (e Edges) CenterY() Anchor { return Anchor{e.item, CenterY} }
func (e Edges) Width() Anchor   { return Anchor{e.item, Width} }
func (e Edges) Height() Anchor  { return Anchor{e.item, Height} }

// Attr returns the anchor for an arbitrary attribute.
func (e Edges) Attr(a Attribute) Anchor { return Anchor{e.item, a} }

// =============================================================================
// Constraint
// =============================================================================

// Constraint is the relation
//
//	First <Relation> Multiplier*Second + Constant   @Priority
//
// or, when Second is the zero anchor,
//
//	First <Relation> Constant   @Priority
//
// Constraints are comparable values and may be used as map keys.
type Constraint struct {
	First      Anchor
	Relation   Relation
	Second     Anchor
	Multiplier float64
	Constant   float64
	Priority   Priority
}

func relate(a Anchor, rel Relation, b Anchor) Constraint {
	return Constraint{First: a, Relation: rel, Second: b, Multiplier: 1, Priority: Required}
}

func relateConstant(a Anchor, rel Relation, c float64) Constraint {
	return Constraint{First: a, Relation: rel, Constant: c, Priority: Required}
}

// IsConstant reports whether the constraint relates an anchor to a bare constant.
func (c Constraint) IsConstant() bool { return c.Second.IsZero() }

// Plus returns a copy with v added to the constant offset.
func (c Constraint) Plus(v float64) Constraint {
	c.Constant += v
	return c
}

// Minus returns a copy with v subtracted from the constant offset.
func (c Constraint) Minus(v float64) Constraint {
	c.Constant -= v
	return c
}

// Times returns a copy with the multiplier of Second set to m.
func (c Constraint) Times(m float64) Constraint {
	c.Multiplier = m
	return c
}

// WithPriority returns a copy at priority p.
func (c Constraint) WithPriority(p Priority) Constraint {
	c.Priority = p
	return c
}

// Items returns the items referenced by the constraint (one or two).
func (c Constraint) Items() []Item {
	if c.IsConstant() {
		return []Item{c.First.Item}
	}
	return []Item{c.First.Item, c.Second.Item}
}

// String formats the constraint, e.g. "guide1.top == root.top + 10 @1000".
func (c Constraint) String() string {
	var b strings.Builder
	b.WriteString(c.First.String())
	b.WriteByte(' ')
	b.WriteString(c.Relation.String())
	b.WriteByte(' ')

	if c.IsConstant() {
		b.WriteString(formatFloat(c.Constant))
	} else {
		b.WriteString(c.Second.String())
		if c.Multiplier != 1 {
			b.WriteString(" * ")
			b.WriteString(formatFloat(c.Multiplier))
		}
		switch {
		case c.Constant > 0:
			b.WriteString(" + ")
			b.WriteString(formatFloat(c.Constant))
		case c.Constant < 0:
			b.WriteString(" - ")
			b.WriteString(formatFloat(-c.Constant))
		}
	}

	fmt.Fprintf(&b, " @%s", formatFloat(float64(c.Priority)))
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
