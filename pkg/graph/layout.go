package graph

import (
	"encoding/json"
	"os"
	"time"

	"github.com/matzehuels/boxlayout/pkg/constraint"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
)

// Frame kinds.
const (
	KindHost    = "host"
	KindGroup   = "group"
	KindSurface = "surface"
)

// Visual styles for rendering.
const (
	StyleSimple    = "simple"
	StyleBlueprint = "blueprint"
)

// =============================================================================
// Layout - Solved Layout Serialization
// =============================================================================

// Layout is the serialization format for one solved layout.
//
// Frames always start with the host frame, followed by anchor groups in
// creation order and then surfaces in attachment order. Constraints lists
// every constraint the layout activated, including those the solver dropped.
type Layout struct {
	ID     string  `json:"id" bson:"_id"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Style  string  `json:"style,omitempty" bson:"style,omitempty"`

	Flags       map[string]bool `json:"flags,omitempty" bson:"flags,omitempty"`
	Frames      []Frame         `json:"frames" bson:"frames"`
	Constraints []Edge          `json:"constraints,omitempty" bson:"constraints,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Frame is one solved rectangle.
type Frame struct {
	ID     string  `json:"id" bson:"id"`
	Kind   string  `json:"kind" bson:"kind"`
	Role   string  `json:"role,omitempty" bson:"role,omitempty"` // caller-assigned surface kind
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Right returns the x coordinate of the right edge.
func (f Frame) Right() float64 { return f.X + f.Width }

// Bottom returns the y coordinate of the bottom edge.
func (f Frame) Bottom() float64 { return f.Y + f.Height }

// IsSurface reports whether the frame belongs to a rendered surface.
func (f Frame) IsSurface() bool { return f.Kind == KindSurface }

// Edge is one constraint between two frames, or between a frame and a constant
// when To is empty.
type Edge struct {
	From     string  `json:"from" bson:"from"`
	To       string  `json:"to,omitempty" bson:"to,omitempty"`
	Relation string  `json:"relation" bson:"relation"`
	Priority float64 `json:"priority" bson:"priority"`
	Expr     string  `json:"expr" bson:"expr"`
	Dropped  bool    `json:"dropped,omitempty" bson:"dropped,omitempty"`
}

// Required reports whether the edge was a required constraint.
func (e Edge) Required() bool { return constraint.Priority(e.Priority).IsRequired() }

// Frame returns the frame with id.
func (l *Layout) Frame(id string) (Frame, bool) {
	for _, f := range l.Frames {
		if f.ID == id {
			return f, true
		}
	}
	return Frame{}, false
}

// Surfaces returns the surface frames in attachment order.
func (l *Layout) Surfaces() []Frame {
	var out []Frame
	for _, f := range l.Frames {
		if f.IsSurface() {
			out = append(out, f)
		}
	}
	return out
}

// Degraded reports whether any constraint was dropped by the solver.
func (l *Layout) Degraded() bool {
	for _, e := range l.Constraints {
		if e.Dropped {
			return true
		}
	}
	return false
}

// Validate checks the structural rules UnmarshalLayout relies on.
func (l *Layout) Validate() error {
	if err := errs.ValidateSize(l.Width, l.Height); err != nil {
		return err
	}
	if len(l.Frames) == 0 || l.Frames[0].Kind != KindHost {
		return errs.New(errs.ErrCodeInvalidFormat, "layout must start with a host frame")
	}
	seen := make(map[string]bool, len(l.Frames))
	for _, f := range l.Frames {
		switch f.Kind {
		case KindHost, KindGroup, KindSurface:
		default:
			return errs.New(errs.ErrCodeInvalidFormat, "frame %q has unknown kind %q", f.ID, f.Kind)
		}
		if seen[f.ID] {
			return errs.New(errs.ErrCodeInvalidFormat, "duplicate frame id %q", f.ID)
		}
		seen[f.ID] = true
	}
	for _, e := range l.Constraints {
		if !seen[e.From] || (e.To != "" && !seen[e.To]) {
			return errs.New(errs.ErrCodeInvalidFormat, "constraint %q references an unknown frame", e.Expr)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if l.Style == "" {
		l.Style = StyleSimple
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", path)
	}
	return UnmarshalLayout(data)
}
