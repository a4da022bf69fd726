package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/matzehuels/boxlayout/pkg/constraint"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
)

type item string

func (i *item) Name() string { return string(*i) }

func newItem(name string) *item {
	i := item(name)
	return &i
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func pin(it constraint.Item, x, y, w, h float64) []constraint.Constraint {
	e := constraint.EdgesOf(it)
	return []constraint.Constraint{
		e.Left().EqualToConstant(x),
		e.Top().EqualToConstant(y),
		e.Width().EqualToConstant(w),
		e.Height().EqualToConstant(h),
	}
}

func TestSolverRequiredConstraints(t *testing.T) {
	host, child := newItem("host"), newItem("child")
	h, c := constraint.EdgesOf(host), constraint.EdgesOf(child)

	s := New()
	cs := append(pin(host, 0, 0, 400, 300),
		c.Top().EqualTo(h.Top()).Plus(10),
		h.Right().EqualTo(c.Right()).Plus(20),
		h.Bottom().EqualTo(c.Bottom()).Plus(30),
		c.Left().EqualTo(h.Left()).Plus(40),
	)
	if err := s.Activate(cs); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	got := s.Frame(child)
	want := Rect{X: 40, Y: 10, Width: 340, Height: 260}
	if !approx(got.X, want.X) || !approx(got.Y, want.Y) || !approx(got.Width, want.Width) || !approx(got.Height, want.Height) {
		t.Errorf("Frame(child) = %+v, want %+v", got, want)
	}
	if v := s.Value(c.CenterX()); !approx(v, 210) {
		t.Errorf("centerX = %v, want 210", v)
	}
	if v := s.Value(c.Bottom()); !approx(v, 270) {
		t.Errorf("bottom = %v, want 270", v)
	}
}

func TestSolverMultiplier(t *testing.T) {
	a := newItem("a")
	e := constraint.EdgesOf(a)

	s := New()
	err := s.Activate([]constraint.Constraint{
		e.Width().EqualToConstant(50),
		e.Height().EqualTo(e.Width()).Times(2),
	})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if h := s.Value(e.Height()); !approx(h, 100) {
		t.Errorf("height = %v, want 100", h)
	}
}

func TestSolverPriorities(t *testing.T) {
	a := newItem("a")
	e := constraint.EdgesOf(a)

	tests := []struct {
		name string
		cs   []constraint.Constraint
		want float64
	}{
		{
			name: "stronger soft wins",
			cs: []constraint.Constraint{
				e.Width().EqualToConstant(100).WithPriority(constraint.DefaultLow),
				e.Width().EqualToConstant(200).WithPriority(constraint.DefaultHigh),
			},
			want: 200,
		},
		{
			name: "required beats soft",
			cs: []constraint.Constraint{
				e.Width().EqualToConstant(100).WithPriority(constraint.DefaultHigh),
				e.Width().EqualToConstant(30),
			},
			want: 30,
		},
		{
			name: "inequality bounds soft target",
			cs: []constraint.Constraint{
				e.Width().LessOrEqualToConstant(80),
				e.Width().EqualToConstant(1000).WithPriority(constraint.SpacerGrowth),
			},
			want: 80,
		},
		{
			name: "sizes stay non-negative",
			cs: []constraint.Constraint{
				e.Width().EqualToConstant(-50).WithPriority(constraint.DefaultHigh),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.Activate(tt.cs); err != nil {
				t.Fatalf("Activate: %v", err)
			}
			if got := s.Value(e.Width()); !approx(got, tt.want) {
				t.Errorf("width = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSolverUnsatisfiableIsDropped(t *testing.T) {
	a := newItem("a")
	e := constraint.EdgesOf(a)

	s := New()
	ok := e.Width().EqualToConstant(100)
	conflict := e.Width().EqualToConstant(200)
	bound := e.Width().LessOrEqualToConstant(50)

	err := s.Activate([]constraint.Constraint{ok, conflict, bound})

	var unsat *UnsatisfiableError
	if !errors.As(err, &unsat) {
		t.Fatalf("Activate error = %v, want *UnsatisfiableError", err)
	}
	if !errors.Is(err, ErrUnsatisfiable) {
		t.Error("errors.Is(err, ErrUnsatisfiable) = false")
	}
	if len(unsat.Dropped) != 2 || unsat.Dropped[0] != conflict || unsat.Dropped[1] != bound {
		t.Errorf("Dropped = %v, want [%v %v]", unsat.Dropped, conflict, bound)
	}

	// The surviving system is still solved.
	if w := s.Value(e.Width()); !approx(w, 100) {
		t.Errorf("width = %v, want 100", w)
	}
	if s.Len() != 1 || !s.Has(ok) || s.Has(conflict) {
		t.Errorf("active set = %v, want only %v", s.Constraints(), ok)
	}

	// Later constraints keep working after the rebuild.
	if err := s.Activate([]constraint.Constraint{e.Height().EqualTo(e.Width()).Times(0.5)}); err != nil {
		t.Fatalf("Activate after drop: %v", err)
	}
	if h := s.Value(e.Height()); !approx(h, 50) {
		t.Errorf("height = %v, want 50", h)
	}
}

func TestSolverRejectedBatchLeavesStateUnchanged(t *testing.T) {
	a := newItem("a")
	e := constraint.EdgesOf(a)

	tests := []struct {
		name string
		bad  constraint.Constraint
	}{
		{"InfiniteConstant", e.Top().EqualToConstant(math.Inf(1))},
		{"NaNConstant", e.Top().EqualToConstant(math.NaN())},
		{"InfiniteMultiplier", e.Height().EqualTo(e.Width()).Times(math.Inf(-1))},
		{"NoAnchor", constraint.Constraint{Relation: constraint.Equal, Constant: 1, Priority: constraint.Required}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.Activate(pin(a, 10, 20, 100, 50)); err != nil {
				t.Fatalf("Activate: %v", err)
			}

			good := e.Height().EqualTo(e.Width())
			err := s.Activate([]constraint.Constraint{good, tt.bad})
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Fatalf("Activate error = %v, want INVALID_INPUT", err)
			}
			if errors.Is(err, ErrUnsatisfiable) {
				t.Error("rejected batch reported as unsatisfiable")
			}

			if s.Len() != 4 || s.Has(good) {
				t.Errorf("active set = %v, want the 4 pins only", s.Constraints())
			}
			got := s.Frame(a)
			if !approx(got.X, 10) || !approx(got.Y, 20) || !approx(got.Width, 100) || !approx(got.Height, 50) {
				t.Errorf("Frame(a) = %+v, want {10 20 100 50}", got)
			}

			// The solver keeps working after the rejection.
			if err := s.Deactivate(pin(a, 10, 20, 100, 50)); err != nil {
				t.Fatalf("Deactivate: %v", err)
			}
			if err := s.Activate(pin(a, 0, 0, 30, 40)); err != nil {
				t.Fatalf("Activate after rejection: %v", err)
			}
			if w := s.Value(e.Width()); !approx(w, 30) {
				t.Errorf("width = %v, want 30", w)
			}
		})
	}
}

func TestSolverDeactivate(t *testing.T) {
	a := newItem("a")
	e := constraint.EdgesOf(a)

	s := New()
	hard := e.Width().EqualToConstant(100)
	soft := e.Width().EqualToConstant(300).WithPriority(constraint.DefaultLow)

	if err := s.Activate([]constraint.Constraint{hard, soft}); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if w := s.Value(e.Width()); !approx(w, 100) {
		t.Fatalf("width = %v, want 100", w)
	}

	if err := s.Deactivate([]constraint.Constraint{hard}); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if w := s.Value(e.Width()); !approx(w, 300) {
		t.Errorf("width after removing hard = %v, want 300", w)
	}

	// Unknown constraints are ignored by Deactivate but reported by Remove.
	if err := s.Deactivate([]constraint.Constraint{hard}); err != nil {
		t.Errorf("Deactivate unknown: %v", err)
	}
	if err := s.Remove(hard); !errors.Is(err, ErrUnknownConstraint) {
		t.Errorf("Remove unknown = %v, want ErrUnknownConstraint", err)
	}
}

func TestSolverDuplicatesAreCounted(t *testing.T) {
	a := newItem("a")
	c := constraint.EdgesOf(a).Width().EqualToConstant(10)

	s := New()
	if err := s.Activate([]constraint.Constraint{c, c}); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if err := s.Remove(c); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !s.Has(c) {
		t.Error("one copy should remain active")
	}
	if err := s.Remove(c); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Has(c) || s.Len() != 0 {
		t.Error("no copy should remain active")
	}
}

func TestSolverReactivateAfterFullTeardown(t *testing.T) {
	host, child := newItem("host"), newItem("child")
	h, c := constraint.EdgesOf(host), constraint.EdgesOf(child)

	s := New()
	if err := s.Activate(pin(host, 0, 0, 200, 100)); err != nil {
		t.Fatal(err)
	}

	for i, inset := range []float64{5, 10, 15} {
		cs := []constraint.Constraint{
			c.Left().EqualTo(h.Left()).Plus(inset),
			h.Right().EqualTo(c.Right()).Plus(inset),
			c.Top().EqualTo(h.Top()),
			c.Bottom().EqualTo(h.Bottom()),
		}
		if err := s.Activate(cs); err != nil {
			t.Fatalf("round %d: Activate: %v", i, err)
		}
		if w := s.Frame(child).Width; !approx(w, 200-2*inset) {
			t.Errorf("round %d: width = %v, want %v", i, w, 200-2*inset)
		}
		if err := s.Deactivate(cs); err != nil {
			t.Fatalf("round %d: Deactivate: %v", i, err)
		}
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want the 4 host constraints", s.Len())
	}
}

func TestSolverUnknownItemIsZero(t *testing.T) {
	s := New()
	if got := s.Frame(newItem("ghost")); got != (Rect{}) {
		t.Errorf("Frame(unknown) = %+v, want zero", got)
	}
}

func TestSolverReset(t *testing.T) {
	a := newItem("a")
	s := New()
	if err := s.Activate(pin(a, 1, 2, 3, 4)); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", s.Len())
	}
	if got := s.Frame(a); got != (Rect{}) {
		t.Errorf("Frame after Reset = %+v, want zero", got)
	}
}
