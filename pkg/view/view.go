// Package view provides the concrete surfaces and host the layout engine drives
// outside of tests: a [View] is a named, caller-owned rectangle, a [Root] is the
// frame everything is laid out in.
//
// Views are never created or destroyed by the engine. A [Registry] hands out the
// same *View for a name on every update, so identity survives re-layout.
package view

import (
	"slices"
	"sync"

	"github.com/matzehuels/boxlayout/pkg/box"
	"github.com/matzehuels/boxlayout/pkg/constraint"
)

// View is a named surface. The zero value is not usable; create views with New
// or through a Registry.
type View struct {
	constraint.Edges

	name   string
	kind   string
	mu     sync.Mutex
	parent constraint.Item
}

var _ box.Surface = (*View)(nil)

// New returns a detached view.
func New(name string) *View {
	v := &View{name: name}
	v.Edges = constraint.EdgesOf(v)
	return v
}

// Name returns the view's identifier.
func (v *View) Name() string { return v.name }

// Kind is a free-form label renderers may use for styling.
func (v *View) Kind() string { return v.kind }

// SetKind sets the styling label.
func (v *View) SetKind(kind string) { v.kind = kind }

// AttachTo records parent as the view's parent.
func (v *View) AttachTo(parent constraint.Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.parent = parent
}

// Detach clears the parent.
func (v *View) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.parent = nil
}

// Parent returns the current parent, or nil when detached.
func (v *View) Parent() constraint.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.parent
}

// Attached reports whether the view has a parent.
func (v *View) Attached() bool { return v.Parent() != nil }

// =============================================================================
// Root
// =============================================================================

// Root is the host frame: an item with fixed bounds that owns the anchor groups
// and surfaces of the current snapshot.
type Root struct {
	constraint.Edges

	name   string
	width  float64
	height float64

	mu       sync.Mutex
	groups   []*box.AnchorGroup
	children []box.Surface
}

// NewRoot returns a host of the given size with its origin at (0, 0).
func NewRoot(name string, width, height float64) *Root {
	r := &Root{name: name, width: width, height: height}
	r.Edges = constraint.EdgesOf(r)
	return r
}

// Name returns the host's identifier.
func (r *Root) Name() string { return r.name }

// Size returns the configured width and height.
func (r *Root) Size() (width, height float64) { return r.width, r.height }

// Bounds returns the required constraints fixing the host frame.
func (r *Root) Bounds() []constraint.Constraint {
	return []constraint.Constraint{
		r.Left().EqualToConstant(0),
		r.Top().EqualToConstant(0),
		r.Width().EqualToConstant(r.width),
		r.Height().EqualToConstant(r.height),
	}
}

// AddAnchorGroup registers g with the host.
func (r *Root) AddAnchorGroup(g *box.AnchorGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, g)
}

// RemoveAnchorGroup unregisters g. Unknown groups are ignored.
func (r *Root) RemoveAnchorGroup(g *box.AnchorGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.Index(r.groups, g); i >= 0 {
		r.groups = slices.Delete(r.groups, i, i+1)
	}
}

// AnchorGroups returns the registered groups in registration order.
func (r *Root) AnchorGroups() []*box.AnchorGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.groups)
}

// AddSubview attaches s to the host.
func (r *Root) AddSubview(s box.Surface) {
	s.AttachTo(r)
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.children, s) {
		r.children = append(r.children, s)
	}
}

// RemoveSubview detaches s from the host.
func (r *Root) RemoveSubview(s box.Surface) {
	s.Detach()
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.Index(r.children, s); i >= 0 {
		r.children = slices.Delete(r.children, i, i+1)
	}
}

// Subviews returns the attached surfaces in attachment order.
func (r *Root) Subviews() []box.Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.children)
}

// =============================================================================
// Registry
// =============================================================================

// Registry hands out views by name, creating each one on first use.
type Registry struct {
	mu    sync.Mutex
	views map[string]*View
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*View)}
}

// Get returns the view registered under name, creating it if needed.
func (r *Registry) Get(name string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[name]; ok {
		return v
	}
	v := New(name)
	r.views[name] = v
	r.order = append(r.order, name)
	return v
}

// Surface is Get typed as a box.Surface, for use as a surface factory.
func (r *Registry) Surface(name string) box.Surface { return r.Get(name) }

// Lookup returns the view for name without creating it.
func (r *Registry) Lookup(name string) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[name]
	return v, ok
}

// Views returns every view in creation order.
func (r *Registry) Views() []*View {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*View, len(r.order))
	for i, name := range r.order {
		out[i] = r.views[name]
	}
	return out
}
