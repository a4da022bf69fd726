// Package container owns the compiled layout of one host and rebuilds it on
// demand.
//
// A [Container] holds exactly one [Snapshot]: the anchor groups, surfaces and
// constraints of the last compile. [Container.Update] tears that snapshot down,
// runs the content function again, compiles the fresh tree and commits the
// result. There is no diffing between updates; every call is a full compile.
//
//	c := container.New(root, solver, func() box.Node {
//	    return box.NewVStack(title, body).Spacing(8)
//	})
//	snap, err := c.Update(ctx)
package container

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/boxlayout/pkg/box"
	"github.com/matzehuels/boxlayout/pkg/constraint"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/observability"
	"github.com/matzehuels/boxlayout/pkg/solver"
)

// =============================================================================
// Boundaries
// =============================================================================

// Host is the item a container lays out in. It owns the anchor groups of the
// committed snapshot.
type Host interface {
	constraint.Item
	AddAnchorGroup(g *box.AnchorGroup)
	RemoveAnchorGroup(g *box.AnchorGroup)
}

// SubviewHost is implemented by hosts that track attached surfaces themselves.
// Surfaces of other hosts are attached with Surface.AttachTo directly.
type SubviewHost interface {
	AddSubview(s box.Surface)
	RemoveSubview(s box.Surface)
}

// Solver activates and deactivates constraints.
type Solver interface {
	Activate(cs []constraint.Constraint) error
	Deactivate(cs []constraint.Constraint) error
}

// ContentFunc produces the box tree for one update. It is called once per
// Update and must not call Update itself.
type ContentFunc func() box.Node

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is the committed output of one compile. It is never modified after
// commit; the container replaces it as a whole.
type Snapshot struct {
	ID           uuid.UUID
	Root         *box.AnchorGroup
	AnchorGroups []*box.AnchorGroup
	Surfaces     []box.Surface
	Constraints  []constraint.Constraint
	CompiledAt   time.Time

	// Dropped lists required constraints the solver could not satisfy.
	Dropped []constraint.Constraint
}

// Degraded reports whether the solver had to drop constraints.
func (s *Snapshot) Degraded() bool { return s != nil && len(s.Dropped) > 0 }

// =============================================================================
// Container
// =============================================================================

// Container is the layout lifecycle of one host.
type Container struct {
	host    Host
	solver  Solver
	content ContentFunc
	logger  *log.Logger
	prefix  string

	updating atomic.Bool
	current  atomic.Pointer[Snapshot]
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGroupPrefix sets the name prefix of generated anchor groups.
func WithGroupPrefix(prefix string) Option {
	return func(c *Container) { c.prefix = prefix }
}

// New returns a container with no snapshot. Nothing is compiled until the first
// Update.
func New(host Host, s Solver, content ContentFunc, opts ...Option) *Container {
	c := &Container{
		host:    host,
		solver:  s,
		content: content,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the committed snapshot, or nil before the first Update.
func (c *Container) Snapshot() *Snapshot { return c.current.Load() }

// SetContent replaces the content function used by later updates.
func (c *Container) SetContent(fn ContentFunc) { c.content = fn }

// Update tears down the committed snapshot and commits a fresh compile.
//
// A call made while another Update is running (including from inside the
// content function) fails with ErrCodeReentrantUpdate and changes nothing.
// When the solver drops unsatisfiable constraints the snapshot is still
// committed and returned together with an ErrCodeUnsatisfiable error.
func (c *Container) Update(ctx context.Context) (*Snapshot, error) {
	if !c.updating.CompareAndSwap(false, true) {
		return nil, errs.New(errs.ErrCodeReentrantUpdate, "update already in progress for %s", c.host.Name())
	}
	defer c.updating.Store(false)

	if err := c.teardown(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	var tree box.Node = box.Empty{}
	if c.content != nil {
		tree = c.content()
	}
	compiled := box.CompileWith(box.NewResolver(c.prefix), tree, c.host)

	snap := &Snapshot{
		ID:           uuid.New(),
		Root:         compiled.Root,
		AnchorGroups: compiled.AnchorGroups,
		Surfaces:     compiled.Surfaces,
		Constraints:  compiled.Constraints,
		CompiledAt:   start,
	}

	for _, g := range snap.AnchorGroups {
		c.host.AddAnchorGroup(g)
	}
	for _, s := range snap.Surfaces {
		c.attach(s)
	}

	err := c.solver.Activate(snap.Constraints)
	var unsat *solver.UnsatisfiableError
	switch {
	case errors.As(err, &unsat):
		snap.Dropped = unsat.Dropped
		err = errs.Wrap(errs.ErrCodeUnsatisfiable, err, "layout of %s is over-constrained", c.host.Name())
		c.logger.Warn("dropped unsatisfiable constraints",
			"host", c.host.Name(),
			"dropped", len(unsat.Dropped))
	case err != nil:
		// The solver rejected the batch outright; the snapshot is still
		// committed so the next teardown can undo whatever was attached.
		code := errs.GetCode(err)
		if code == "" {
			code = errs.ErrCodeInternal
		}
		err = errs.Wrap(code, err, "activate constraints")
	}

	c.current.Store(snap)

	duration := time.Since(start)
	observability.Lifecycle().OnCommit(ctx, snap.ID.String(),
		len(snap.AnchorGroups), len(snap.Surfaces), len(snap.Constraints), duration, err)
	c.logger.Debug("committed snapshot",
		"host", c.host.Name(),
		"snapshot", snap.ID,
		"groups", len(snap.AnchorGroups),
		"surfaces", len(snap.Surfaces),
		"constraints", len(snap.Constraints),
		"duration", duration)

	return snap, err
}

// Teardown removes the committed snapshot, leaving the container empty.
func (c *Container) Teardown(ctx context.Context) error {
	if !c.updating.CompareAndSwap(false, true) {
		return errs.New(errs.ErrCodeReentrantUpdate, "update in progress for %s", c.host.Name())
	}
	defer c.updating.Store(false)
	return c.teardown(ctx)
}

func (c *Container) teardown(ctx context.Context) error {
	old := c.current.Swap(nil)
	if old == nil {
		return nil
	}

	observability.Lifecycle().OnTeardown(ctx, old.ID.String(), len(old.Constraints))

	if err := c.solver.Deactivate(old.Constraints); err != nil {
		c.current.Store(old)
		return errs.Wrap(errs.ErrCodeInternal, err, "deactivate snapshot %s", old.ID)
	}
	for _, s := range old.Surfaces {
		c.detach(s)
	}
	for _, g := range old.AnchorGroups {
		c.host.RemoveAnchorGroup(g)
	}

	c.logger.Debug("tore down snapshot",
		"host", c.host.Name(),
		"snapshot", old.ID,
		"constraints", len(old.Constraints))
	return nil
}

func (c *Container) attach(s box.Surface) {
	if h, ok := c.host.(SubviewHost); ok {
		h.AddSubview(s)
		return
	}
	s.AttachTo(c.host)
}

func (c *Container) detach(s box.Surface) {
	if h, ok := c.host.(SubviewHost); ok {
		h.RemoveSubview(s)
		return
	}
	s.Detach()
}
