package box

// =============================================================================
// Builder Grammar
// =============================================================================

// Build reduces a sequence of declarations to one node:
//
//   - no declarations: Empty
//   - one declaration: that node, unchanged
//   - two or more: a Multiple in declaration order
//
// Nil declarations are treated as Empty. Build does not flatten nested
// Multiples; flattening happens when the tree is compiled.
func Build(children ...Node) Node {
	switch len(children) {
	case 0:
		return Empty{}
	case 1:
		return orEmpty(children[0])
	}
	out := make([]Node, len(children))
	for i, c := range children {
		out[i] = orEmpty(c)
	}
	return Multiple{children: out}
}

// If declares children only when cond holds. The result is a condition whose
// false branch is Empty.
func If(cond bool, children ...Node) Node {
	return IfElse(cond, Build(children...), Empty{})
}

// IfElse declares then when cond holds and otherwise when it does not. Both
// branches are built eagerly; only the taken one is kept and compiled.
func IfElse(cond bool, then, otherwise Node) Node {
	if cond {
		return condition{branch: orEmpty(then), taken: true}
	}
	return condition{branch: orEmpty(otherwise), taken: false}
}

// condition holds exactly one branch of an if/else. It is unexported so the only
// way to obtain one is through If/IfElse, which always populate the branch.
type condition struct {
	branch Node
	taken  bool
}

func (condition) node() {}

// Branch returns the node a condition carries and whether it is the true branch.
// ok is false when n is not a condition.
func Branch(n Node) (branch Node, truth bool, ok bool) {
	c, ok := n.(condition)
	if !ok {
		return nil, false, false
	}
	return c.branch, c.taken, true
}

func orEmpty(n Node) Node {
	if n == nil {
		return Empty{}
	}
	return n
}
