package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/matzehuels/boxlayout/pkg/constraint"
)

const (
	// requiredCost is the error cost of a required row. Soft rows cost at most 1.
	requiredCost = 1e4

	// perturbation spreads small distinct offsets over the right-hand sides
	// to keep the simplex away from degenerate vertices.
	perturbation = 1e-9

	simplexTol   = 1e-8
	violationTol = 1e-6

	// Solved values are snapped to this grid.
	resolution = 1e6
)

// =============================================================================
// Linear Program
// =============================================================================

// row is coeffs·vars (relation) rhs.
type row struct {
	terms    []term
	relation constraint.Relation
	rhs      float64
	cost     float64
	index    int // position in the constraint list
}

// linearize moves every variable of c to the left-hand side.
func linearize(c constraint.Constraint) []term {
	var out []term
	add := func(v variable, coeff float64) {
		for i := range out {
			if out[i].v == v {
				out[i].coeff += coeff
				return
			}
		}
		out = append(out, term{v, coeff})
	}
	for _, t := range expand(c.First) {
		add(t.v, t.coeff)
	}
	if !c.IsConstant() {
		for _, t := range expand(c.Second) {
			add(t.v, -t.coeff*c.Multiplier)
		}
	}
	kept := out[:0]
	for _, t := range out {
		if math.Abs(t.coeff) > 1e-12 {
			kept = append(kept, t)
		}
	}
	return kept
}

func holds(rel constraint.Relation, lhs, rhs float64) bool {
	switch rel {
	case constraint.LessOrEqual:
		return lhs <= rhs+violationTol
	case constraint.GreaterOrEqual:
		return lhs >= rhs-violationTol
	default:
		return math.Abs(lhs-rhs) <= violationTol
	}
}

func flip(rel constraint.Relation) constraint.Relation {
	switch rel {
	case constraint.LessOrEqual:
		return constraint.GreaterOrEqual
	case constraint.GreaterOrEqual:
		return constraint.LessOrEqual
	}
	return rel
}

// solution holds solved variable values and the indices of required
// constraints the solve could not honor.
type solution struct {
	values   map[variable]float64
	violated []int
}

// program is the standard form min cᵀx, Ax = b, x >= 0 of a constraint list.
type program struct {
	cols    map[variable][2]int // plus and minus column; minus is -1 for sizes
	order   []variable
	costs   []float64
	entries []entry
	b       []float64
	basis   []int
	errCols [][]int
	nudge   float64
}

type entry struct {
	r, c int
	v    float64
}

func (p *program) column(cost float64) int {
	p.costs = append(p.costs, cost)
	return len(p.costs) - 1
}

func (p *program) columnsFor(v variable) [2]int {
	if cols, ok := p.cols[v]; ok {
		return cols
	}
	cols := [2]int{p.column(0), -1}
	if v.free() {
		cols[1] = p.column(0)
	}
	p.cols[v] = cols
	p.order = append(p.order, v)
	return cols
}

// addRow appends r with its slack and error columns. Every row gets a column
// with coefficient +1 that appears nowhere else, which makes the initial basis.
func (p *program) addRow(r row) {
	i := len(p.b)
	sign := 1.0
	rel, rhs := r.relation, r.rhs
	if rhs < 0 {
		sign, rel, rhs = -1, flip(rel), -rhs
	}
	for _, t := range r.terms {
		cols := p.columnsFor(t.v)
		p.entries = append(p.entries, entry{i, cols[0], sign * t.coeff})
		if cols[1] >= 0 {
			p.entries = append(p.entries, entry{i, cols[1], -sign * t.coeff})
		}
	}

	var basic int
	var errCols []int
	switch rel {
	case constraint.LessOrEqual:
		slack, over := p.column(0), p.column(r.cost)
		p.entries = append(p.entries, entry{i, slack, 1}, entry{i, over, -1})
		basic, errCols = slack, []int{over}
	case constraint.GreaterOrEqual:
		slack, under := p.column(0), p.column(r.cost)
		p.entries = append(p.entries, entry{i, slack, -1}, entry{i, under, 1})
		basic, errCols = under, []int{under}
	default:
		over, under := p.column(r.cost), p.column(r.cost)
		p.entries = append(p.entries, entry{i, over, -1}, entry{i, under, 1})
		basic, errCols = under, []int{over, under}
	}
	p.b = append(p.b, rhs+p.nudge*float64(i+1))
	p.basis = append(p.basis, basic)
	p.errCols = append(p.errCols, errCols)
}

// solve builds and solves the program for cs. With requiredOnly set, soft
// constraints are left out and every required error costs the same, which
// turns the solve into a feasibility check.
func solve(cs []constraint.Constraint, requiredOnly bool) (solution, error) {
	sol := solution{values: make(map[variable]float64)}
	p := &program{
		cols:  make(map[variable][2]int),
		nudge: perturbation / float64(len(cs)+1),
	}
	var rows []row

	for i, c := range cs {
		required := c.Priority.IsRequired()
		if requiredOnly && !required {
			continue
		}
		terms := linearize(c)
		if len(terms) == 0 {
			// The variables cancel out; the constraint is a plain fact.
			if required && !holds(c.Relation, 0, c.Constant) {
				sol.violated = append(sol.violated, i)
			}
			continue
		}
		cost := requiredCost
		switch {
		case requiredOnly:
			cost = 1
		case !required:
			cost = math.Max(float64(c.Priority), 1) / float64(constraint.Required)
		}
		r := row{terms: terms, relation: c.Relation, rhs: c.Constant, cost: cost, index: i}
		rows = append(rows, r)
		p.addRow(r)
	}
	if len(rows) == 0 {
		return sol, nil
	}

	a := mat.NewDense(len(p.b), len(p.costs), nil)
	for _, e := range p.entries {
		a.Set(e.r, e.c, a.At(e.r, e.c)+e.v)
	}
	_, x, err := lp.Simplex(p.costs, a, p.b, simplexTol, p.basis)
	if err != nil {
		return solution{}, errInternal("simplex: %v", err)
	}

	for _, v := range p.order {
		cols := p.cols[v]
		val := x[cols[0]]
		if cols[1] >= 0 {
			val -= x[cols[1]]
		}
		sol.values[v] = snap(val)
	}
	for k, r := range rows {
		if cs[r.index].Priority.IsRequired() {
			var e float64
			for _, col := range p.errCols[k] {
				e += x[col]
			}
			if e > violationTol {
				sol.violated = append(sol.violated, r.index)
			}
		}
	}
	return sol, nil
}

func snap(v float64) float64 {
	v = math.Round(v*resolution) / resolution
	if v == 0 {
		return 0 // drop negative zero
	}
	return v
}
