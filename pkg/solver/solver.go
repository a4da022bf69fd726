// Package solver resolves layout constraints into frames.
//
// Required constraints must hold; non-required constraints are satisfied as far
// as possible, weighted by their priority. The active set is written as a
// weighted linear program and handed to the gonum simplex solver. Each item
// gets four variables (left, top, width, height); right, bottom and the centers
// are derived from them. Widths and heights are kept non-negative.
//
//	s := solver.New()
//	err := s.Activate(cs)
//	frame := s.Frame(item)
//
// A required constraint that conflicts with the active set is dropped and
// reported through [UnsatisfiableError]; the remaining system stays solved.
// Any other error leaves the solver exactly as it was before the call.
package solver

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/boxlayout/pkg/constraint"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
)

// Sentinel errors.
var (
	// ErrUnsatisfiable marks a required constraint that conflicts with the
	// constraints already active.
	ErrUnsatisfiable = errors.New("solver: unsatisfiable constraint")

	// ErrUnknownConstraint is returned by Remove for a constraint that is not
	// active.
	ErrUnknownConstraint = errors.New("solver: unknown constraint")
)

// UnsatisfiableError lists the required constraints Activate had to drop.
type UnsatisfiableError struct {
	Dropped []constraint.Constraint
}

func (e *UnsatisfiableError) Error() string {
	parts := make([]string, len(e.Dropped))
	for i, c := range e.Dropped {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%d unsatisfiable constraint(s): %s", len(e.Dropped), strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrUnsatisfiable.
func (e *UnsatisfiableError) Unwrap() error { return ErrUnsatisfiable }

func errInternal(format string, args ...any) error {
	return errs.New(errs.ErrCodeInternal, "solver: "+format, args...)
}

// Rect is a solved frame in host coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns X + Width.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns Y + Height.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// =============================================================================
// Variables
// =============================================================================

type field uint8

const (
	fieldLeft field = iota
	fieldTop
	fieldWidth
	fieldHeight
)

type variable struct {
	item  constraint.Item
	field field
}

// free variables may go negative; sizes may not.
func (v variable) free() bool { return v.field == fieldLeft || v.field == fieldTop }

type term struct {
	v     variable
	coeff float64
}

// expand rewrites an anchor as a combination of the four base variables.
func expand(a constraint.Anchor) []term {
	it := a.Item
	switch a.Attr {
	case constraint.Left:
		return []term{{variable{it, fieldLeft}, 1}}
	case constraint.Top:
		return []term{{variable{it, fieldTop}, 1}}
	case constraint.Width:
		return []term{{variable{it, fieldWidth}, 1}}
	case constraint.Height:
		return []term{{variable{it, fieldHeight}, 1}}
	case constraint.Right:
		return []term{{variable{it, fieldLeft}, 1}, {variable{it, fieldWidth}, 1}}
	case constraint.Bottom:
		return []term{{variable{it, fieldTop}, 1}, {variable{it, fieldHeight}, 1}}
	case constraint.CenterX:
		return []term{{variable{it, fieldLeft}, 1}, {variable{it, fieldWidth}, 0.5}}
	case constraint.CenterY:
		return []term{{variable{it, fieldTop}, 1}, {variable{it, fieldHeight}, 0.5}}
	}
	return nil
}

// validate rejects constraints no linear program can hold.
func validate(c constraint.Constraint) error {
	finite := func(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }
	if !finite(c.Constant) || !finite(c.Multiplier) {
		return errs.New(errs.ErrCodeInvalidInput, "solver: non-finite amount in %s", c)
	}
	if c.First.IsZero() {
		return errs.New(errs.ErrCodeInvalidInput, "solver: constraint without an anchor: %s", c)
	}
	return nil
}

// =============================================================================
// Solver
// =============================================================================

// Solver holds a multiset of active constraints and their solution. It is not
// safe for concurrent use.
type Solver struct {
	active []constraint.Constraint
	counts map[constraint.Constraint]int
	values map[variable]float64
}

// New returns an empty solver.
func New() *Solver {
	s := &Solver{}
	s.Reset()
	return s
}

// Reset drops every constraint and solved value.
func (s *Solver) Reset() {
	s.active = nil
	s.counts = make(map[constraint.Constraint]int)
	s.values = make(map[variable]float64)
}

// Len returns the number of active constraints, counting duplicates.
func (s *Solver) Len() int { return len(s.active) }

// Has reports whether c is active.
func (s *Solver) Has(c constraint.Constraint) bool { return s.counts[c] > 0 }

// Activate adds constraints in order. Activating the same constraint twice
// keeps two copies; each Deactivate removes one. Required constraints that
// conflict with the system are skipped and returned in an *UnsatisfiableError.
func (s *Solver) Activate(cs []constraint.Constraint) error {
	for _, c := range cs {
		if err := validate(c); err != nil {
			return err
		}
	}
	if len(cs) == 0 {
		return nil
	}

	next := append(slices.Clone(s.active), cs...)
	sol, err := solve(next, false)
	if err != nil {
		return err
	}

	var dropped []constraint.Constraint
	if len(sol.violated) > 0 {
		if next, dropped, err = s.admit(cs); err != nil {
			return err
		}
		if sol, err = solve(next, false); err != nil {
			return err
		}
		if len(sol.violated) > 0 {
			return errInternal("weighted solve violates %s", next[sol.violated[0]])
		}
	}

	s.commit(next, sol)
	if len(dropped) > 0 {
		return &UnsatisfiableError{Dropped: dropped}
	}
	return nil
}

// admit adds cs to the active set one at a time, dropping every required
// constraint that makes the required subset infeasible.
func (s *Solver) admit(cs []constraint.Constraint) (kept, dropped []constraint.Constraint, err error) {
	kept = slices.Clone(s.active)
	for _, c := range cs {
		if !c.Priority.IsRequired() {
			kept = append(kept, c)
			continue
		}
		trial := append(slices.Clip(kept), c)
		sol, err := solve(trial, true)
		if err != nil {
			return nil, nil, err
		}
		if len(sol.violated) > 0 {
			dropped = append(dropped, c)
			continue
		}
		kept = trial
	}
	return kept, dropped, nil
}

// Deactivate removes one copy of each constraint. Constraints that are not
// active are ignored.
func (s *Solver) Deactivate(cs []constraint.Constraint) error {
	next := slices.Clone(s.active)
	removed := false
	for _, c := range cs {
		if i := slices.Index(next, c); i >= 0 {
			next = slices.Delete(next, i, i+1)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	return s.resolve(next)
}

// Remove removes one copy of c, failing with ErrUnknownConstraint when c is not
// active.
func (s *Solver) Remove(c constraint.Constraint) error {
	i := slices.Index(s.active, c)
	if i < 0 {
		return ErrUnknownConstraint
	}
	return s.resolve(slices.Delete(slices.Clone(s.active), i, i+1))
}

// resolve solves a subset of the active constraints and commits it. A subset of
// a satisfiable set stays satisfiable.
func (s *Solver) resolve(next []constraint.Constraint) error {
	sol, err := solve(next, false)
	if err != nil {
		return err
	}
	if len(sol.violated) > 0 {
		return errInternal("weighted solve violates %s", next[sol.violated[0]])
	}
	s.commit(next, sol)
	return nil
}

func (s *Solver) commit(active []constraint.Constraint, sol solution) {
	s.active = active
	s.counts = make(map[constraint.Constraint]int, len(active))
	for _, c := range active {
		s.counts[c]++
	}
	s.values = sol.values
}

// =============================================================================
// Results
// =============================================================================

// Value returns the solved value of an anchor. Anchors of unknown items are 0.
func (s *Solver) Value(a constraint.Anchor) float64 {
	var v float64
	for _, t := range expand(a) {
		v += t.coeff * s.values[t.v]
	}
	return v
}

// Frame returns the solved frame of item.
func (s *Solver) Frame(item constraint.Item) Rect {
	return Rect{
		X:      s.values[variable{item, fieldLeft}],
		Y:      s.values[variable{item, fieldTop}],
		Width:  s.values[variable{item, fieldWidth}],
		Height: s.values[variable{item, fieldHeight}],
	}
}

// Constraints returns the active constraints in activation order.
func (s *Solver) Constraints() []constraint.Constraint {
	return slices.Clone(s.active)
}
