package box

import (
	"github.com/matzehuels/boxlayout/pkg/constraint"
)

// SizingKind discriminates the Sizing modes.
type SizingKind int

const (
	// SizingNone leaves both dimensions to the surrounding constraints.
	SizingNone SizingKind = iota

	// SizingFixed pins whichever dimensions are set to constants.
	SizingFixed

	// SizingAspect relates height to width by a ratio.
	SizingAspect
)

// Ratio is a width:height proportion.
type Ratio struct {
	Width  float64
	Height float64
}

// Sizing is the Frame/AspectRatio modifier carried by sizing-capable nodes.
//
// For SizingFixed, Width and Height are applied when HasWidth/HasHeight are set.
// For SizingAspect, at most one of HasWidth/HasHeight is set and names the side
// length the ratio derives the other dimension from.
type Sizing struct {
	Kind      SizingKind
	Width     float64
	Height    float64
	HasWidth  bool
	HasHeight bool
	Ratio     Ratio
}

// FrameOption sets one dimension of a Frame or the side length of an AspectRatio.
type FrameOption func(*Sizing)

// Width sets the width.
func Width(v float64) FrameOption {
	return func(s *Sizing) { s.Width, s.HasWidth = v, true }
}

// Height sets the height.
func Height(v float64) FrameOption {
	return func(s *Sizing) { s.Height, s.HasHeight = v, true }
}

// FixedSize returns a Frame sizing from options.
func FixedSize(opts ...FrameOption) Sizing {
	s := Sizing{Kind: SizingFixed}
	for _, opt := range opts {
		opt(&s)
	}
	if !s.HasWidth && !s.HasHeight {
		return Sizing{}
	}
	return s
}

// AspectSize returns an AspectRatio sizing. A Width or Height option supplies the
// one concrete side length; if both are given, the width wins. A non-positive
// ratio component yields no sizing.
func AspectSize(width, height float64, opts ...FrameOption) Sizing {
	if width <= 0 || height <= 0 {
		return Sizing{}
	}
	s := Sizing{Kind: SizingAspect, Ratio: Ratio{Width: width, Height: height}}
	for _, opt := range opts {
		opt(&s)
	}
	if s.HasWidth && s.HasHeight {
		s.HasHeight, s.Height = false, 0
	}
	return s
}

// constrains reports whether the sizing fixes or relates the given axis.
func (s Sizing) constrains(horizontal bool) bool {
	switch s.Kind {
	case SizingFixed:
		if horizontal {
			return s.HasWidth
		}
		return s.HasHeight
	case SizingAspect:
		return true
	}
	return false
}

// constraints emits the sizing rules for item at required priority.
func (s Sizing) constraints(item constraint.Item) []constraint.Constraint {
	e := constraint.EdgesOf(item)
	var out []constraint.Constraint

	switch s.Kind {
	case SizingFixed:
		if s.HasWidth {
			out = append(out, e.Width().EqualToConstant(s.Width))
		}
		if s.HasHeight {
			out = append(out, e.Height().EqualToConstant(s.Height))
		}
	case SizingAspect:
		out = append(out, e.Height().EqualTo(e.Width()).Times(s.Ratio.Height/s.Ratio.Width))
		switch {
		case s.HasWidth:
			out = append(out, e.Width().EqualToConstant(s.Width))
		case s.HasHeight:
			out = append(out, e.Height().EqualToConstant(s.Height))
		}
	}
	return out
}
