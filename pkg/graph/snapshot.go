package graph

import (
	"math"
	"time"

	"github.com/matzehuels/boxlayout/pkg/constraint"
	"github.com/matzehuels/boxlayout/pkg/container"
	"github.com/matzehuels/boxlayout/pkg/solver"
)

// =============================================================================
// Snapshot → Layout Conversion
// =============================================================================

// FrameReader reads solved geometry back for an item. *solver.Solver
// implements it.
type FrameReader interface {
	Frame(item constraint.Item) solver.Rect
}

// Host is what FromSnapshot needs to know about the host: its name and size.
type Host interface {
	constraint.Item
	Size() (width, height float64)
}

// kinded is implemented by surfaces that carry a caller-assigned role.
type kinded interface {
	Kind() string
}

// FromSnapshot captures the solved geometry of a committed snapshot. The
// layout ID is the snapshot ID; frames are read through r after the snapshot's
// constraints were activated.
func FromSnapshot(host Host, snap *container.Snapshot, r FrameReader) Layout {
	w, h := host.Size()
	out := Layout{
		Width:     w,
		Height:    h,
		Style:     StyleSimple,
		CreatedAt: time.Now().UTC(),
	}
	out.Frames = append(out.Frames, frameOf(host, KindHost, r))
	if snap == nil {
		return out
	}
	out.ID = snap.ID.String()
	if !snap.CompiledAt.IsZero() {
		out.CreatedAt = snap.CompiledAt.UTC()
	}

	for _, g := range snap.AnchorGroups {
		out.Frames = append(out.Frames, frameOf(g, KindGroup, r))
	}
	for _, s := range snap.Surfaces {
		f := frameOf(s, KindSurface, r)
		if k, ok := s.(kinded); ok {
			f.Role = k.Kind()
		}
		out.Frames = append(out.Frames, f)
	}

	dropped := make(map[constraint.Constraint]int, len(snap.Dropped))
	for _, c := range snap.Dropped {
		dropped[c]++
	}
	out.Constraints = make([]Edge, 0, len(snap.Constraints))
	for _, c := range snap.Constraints {
		e := Edge{
			From:     c.First.Item.Name(),
			Relation: c.Relation.String(),
			Priority: float64(c.Priority),
			Expr:     c.String(),
		}
		if !c.IsConstant() {
			e.To = c.Second.Item.Name()
		}
		if dropped[c] > 0 {
			dropped[c]--
			e.Dropped = true
		}
		out.Constraints = append(out.Constraints, e)
	}
	return out
}

func frameOf(item constraint.Item, kind string, r FrameReader) Frame {
	rect := r.Frame(item)
	return Frame{
		ID:     item.Name(),
		Kind:   kind,
		X:      round(rect.X),
		Y:      round(rect.Y),
		Width:  round(rect.Width),
		Height: round(rect.Height),
	}
}

// round trims solver noise so serialized layouts are stable.
func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
