package box

import (
	"strconv"

	"github.com/matzehuels/boxlayout/pkg/constraint"
)

// =============================================================================
// Surfaces and Anchor Groups
// =============================================================================

// Surface is a caller-owned renderable handle. The engine only attaches it to a
// parent, detaches it again, and constrains its anchors; it never reads back
// geometry or destroys the surface.
type Surface interface {
	constraint.Item

	// AttachTo makes parent the surface's parent in the hierarchy.
	AttachTo(parent constraint.Item)

	// Detach removes the surface from its current parent.
	Detach()
}

// AnchorGroup is a non-rendering frame with the full anchor set. Groups are
// created by a Resolver and live until the next teardown of the snapshot that
// owns them.
type AnchorGroup struct {
	constraint.Edges
	name string
}

// Name returns the group's identifier (unique within one compile pass).
func (g *AnchorGroup) Name() string { return g.name }

func newAnchorGroup(name string) *AnchorGroup {
	g := &AnchorGroup{name: name}
	g.Edges = constraint.EdgesOf(g)
	return g
}

// =============================================================================
// Resolver
// =============================================================================

// Resolver accumulates everything one compile pass produces. It is owned by a
// single pass and must not be shared.
type Resolver struct {
	prefix      string
	seq         int
	groups      []*AnchorGroup
	surfaces    []Surface
	seen        map[Surface]struct{}
	constraints []constraint.Constraint
}

// NewResolver returns an empty resolver. Anchor groups it creates are named
// "<prefix><n>"; an empty prefix defaults to "group".
func NewResolver(prefix string) *Resolver {
	if prefix == "" {
		prefix = "group"
	}
	return &Resolver{prefix: prefix, seen: make(map[Surface]struct{})}
}

// MakeAnchorGroup creates and registers a new anchor group.
func (r *Resolver) MakeAnchorGroup() *AnchorGroup {
	r.seq++
	g := newAnchorGroup(r.prefix + strconv.Itoa(r.seq))
	r.groups = append(r.groups, g)
	return g
}

// Append records constraints for activation after the pass completes.
func (r *Resolver) Append(cs ...constraint.Constraint) {
	r.constraints = append(r.constraints, cs...)
}

// AppendSurface registers a surface for attachment. A surface registered twice is
// attached once.
func (r *Resolver) AppendSurface(s Surface) {
	if _, ok := r.seen[s]; ok {
		return
	}
	r.seen[s] = struct{}{}
	r.surfaces = append(r.surfaces, s)
}

// AppendAnchorGroup registers a group created elsewhere. Groups from
// MakeAnchorGroup are already registered.
func (r *Resolver) AppendAnchorGroup(g *AnchorGroup) {
	for _, existing := range r.groups {
		if existing == g {
			return
		}
	}
	r.groups = append(r.groups, g)
}

// Constraints returns the constraints recorded so far.
func (r *Resolver) Constraints() []constraint.Constraint { return r.constraints }

// AnchorGroups returns the groups created so far, in creation order.
func (r *Resolver) AnchorGroups() []*AnchorGroup { return r.groups }

// Surfaces returns the registered surfaces, in discovery order.
func (r *Resolver) Surfaces() []Surface { return r.surfaces }

// =============================================================================
// Apply Results
// =============================================================================

// ResultKind discriminates Result.
type ResultKind int

const (
	ResultEmpty ResultKind = iota
	ResultSingle
	ResultMultiple
)

func (k ResultKind) String() string {
	switch k {
	case ResultSingle:
		return "single"
	case ResultMultiple:
		return "multiple"
	}
	return "empty"
}

// Entry is one produced item still waiting to be placed by its parent, together
// with the sizing it was declared with.
type Entry struct {
	Item   constraint.Item
	Sizing Sizing
}

// Result reports what a node produced for its parent to place.
type Result struct {
	Kind    ResultKind
	Entries []Entry
}

func emptyResult() Result { return Result{Kind: ResultEmpty} }

func singleResult(e Entry) Result { return Result{Kind: ResultSingle, Entries: []Entry{e}} }

func multipleResult(es []Entry) Result { return Result{Kind: ResultMultiple, Entries: es} }

// Items returns the produced items in order.
func (r Result) Items() []constraint.Item {
	items := make([]constraint.Item, len(r.Entries))
	for i, e := range r.Entries {
		items[i] = e.Item
	}
	return items
}
