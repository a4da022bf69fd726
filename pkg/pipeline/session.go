package pipeline

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/box"
	"github.com/matzehuels/boxlayout/pkg/container"
	"github.com/matzehuels/boxlayout/pkg/dsl"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/observability"
	"github.com/matzehuels/boxlayout/pkg/solver"
	"github.com/matzehuels/boxlayout/pkg/view"
)

// =============================================================================
// Session - Repeated Layout of One Document
// =============================================================================

// Session binds a document to one host, solver and container so it can be
// laid out again whenever its flags change. Surfaces are handed out by a
// view.Registry, so a surface keeps its identity across updates.
//
// A Session is safe for concurrent use; updates are serialized.
type Session struct {
	doc    *dsl.Document
	root   *view.Root
	views  *view.Registry
	solver *solver.Solver
	box    *container.Container
	logger *log.Logger
	style  string

	mu     sync.Mutex
	flags  map[string]bool
	tree   box.Node
	layout graph.Layout
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger passed to the container.
func WithSessionLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionStyle sets the style recorded on produced layouts.
func WithSessionStyle(style string) SessionOption {
	return func(s *Session) {
		if style != "" {
			s.style = style
		}
	}
}

// WithHostName names the host frame (default "window").
func WithHostName(name string) SessionOption {
	return func(s *Session) {
		if name != "" {
			w, h := s.root.Size()
			s.root = view.NewRoot(name, w, h)
		}
	}
}

// NewSession prepares doc for layout in a width x height host. Nothing is
// compiled until the first Update.
func NewSession(doc *dsl.Document, width, height float64, opts ...SessionOption) (*Session, error) {
	if doc == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "document is required")
	}
	if err := errs.ValidateSize(width, height); err != nil {
		return nil, err
	}
	s := &Session{
		doc:    doc,
		root:   view.NewRoot(DefaultHost, width, height),
		views:  view.NewRegistry(),
		solver: solver.New(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		style:  DefaultStyle,
		flags:  make(map[string]bool),
		tree:   box.Empty{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.solver.Activate(s.root.Bounds()); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "pin host bounds")
	}
	s.box = container.New(s.root, s.solver, s.content, container.WithLogger(s.logger))
	return s, nil
}

func (s *Session) content() box.Node { return s.tree }

// Document returns the document being laid out.
func (s *Session) Document() *dsl.Document { return s.doc }

// Views returns the registry holding the document's surfaces.
func (s *Session) Views() *view.Registry { return s.views }

// SetFlag sets one flag. Unknown names are rejected.
func (s *Session) SetFlag(name string, on bool) error {
	if !s.declares(name) {
		return errs.New(errs.ErrCodeInvalidInput, "unknown flag %q", name)
	}
	s.mu.Lock()
	s.flags[name] = on
	s.mu.Unlock()
	return nil
}

// SetFlags replaces all flags. Unknown names are rejected and nothing changes.
func (s *Session) SetFlags(flags map[string]bool) error {
	for name := range flags {
		if !s.declares(name) {
			return errs.New(errs.ErrCodeInvalidInput, "unknown flag %q", name)
		}
	}
	s.mu.Lock()
	s.flags = make(map[string]bool, len(flags))
	for name, on := range flags {
		s.flags[name] = on
	}
	s.mu.Unlock()
	return nil
}

// Toggle flips a flag and returns its new value.
func (s *Session) Toggle(name string) (bool, error) {
	if !s.declares(name) {
		return false, errs.New(errs.ErrCodeInvalidInput, "unknown flag %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[name] = !s.flags[name]
	return s.flags[name], nil
}

// Flags returns every flag the document declares with its current value.
func (s *Session) Flags() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flagsLocked()
}

func (s *Session) flagsLocked() map[string]bool {
	out := make(map[string]bool)
	for _, name := range s.doc.Flags() {
		out[name] = s.flags[name]
	}
	return out
}

func (s *Session) declares(name string) bool {
	names := s.doc.Flags()
	i := sort.SearchStrings(names, name)
	return i < len(names) && names[i] == name
}

// Update rebuilds the box tree for the current flags, recompiles it and
// returns the solved layout.
//
// When the solver drops constraints the layout is still returned, marked
// degraded, together with an ErrCodeUnsatisfiable error.
func (s *Session) Update(ctx context.Context) (graph.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.doc.Build(dsl.Env{Flags: s.flags, Surface: s.views.Surface})
	if err != nil {
		return graph.Layout{}, err
	}
	s.tree = tree

	start := time.Now()
	snap, err := s.box.Update(ctx)
	if snap == nil {
		observability.Pipeline().OnSolveComplete(ctx, 0, 0, time.Since(start), err)
		return graph.Layout{}, err
	}
	observability.Pipeline().OnSolveComplete(ctx, len(snap.Constraints), len(snap.Dropped), time.Since(start), err)

	l := graph.FromSnapshot(s.root, snap, s.solver)
	l.Style = s.style
	l.Flags = s.flagsLocked()
	if len(l.Flags) == 0 {
		l.Flags = nil
	}
	s.layout = l
	return l, err
}

// Layout returns the most recent layout, or a zero Layout before the first
// successful Update.
func (s *Session) Layout() graph.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Teardown removes the committed layout from the host and solver.
func (s *Session) Teardown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = graph.Layout{}
	return s.box.Teardown(ctx)
}
