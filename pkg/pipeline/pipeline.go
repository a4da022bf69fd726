// Package pipeline runs layout descriptions end to end.
//
// The pipeline has three stages, shared by the CLI and the HTTP service:
//
//  1. Parse: read the box description into a [dsl.Document]
//  2. Solve: build the box tree for the selected flags, compile it inside a
//     container and solve it, producing a [graph.Layout]
//  3. Render: draw the layout in the requested formats (SVG, PNG, PDF, JSON,
//     DOT, constraint graph SVG)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  src,
//	    Width:   320,
//	    Height:  480,
//	    Flags:   map[string]bool{"compact": true},
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
//
// Solved layouts and artifacts are cached by content hash, so running the
// same description with the same options twice only solves once.
//
// For interactive use, a [Session] keeps one container and solver alive
// and re-lays the same document out whenever flags change.
package pipeline

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/dsl"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default host width in layout units.
	DefaultWidth = 320.0

	// DefaultHeight is the default host height in layout units.
	DefaultHeight = 480.0

	// DefaultHost names the host frame of every layout.
	DefaultHost = "window"

	// DefaultFilename is used in error positions when a source has no name.
	DefaultFilename = "<input>"

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// DefaultStyle is the default visual style.
const DefaultStyle = graph.StyleSimple

// Format constants for output formats.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatPDF   = "pdf"
	FormatJSON  = "json"
	FormatDOT   = "dot"   // constraint graph as Graphviz source
	FormatGraph = "graph" // constraint graph rendered to SVG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:   true,
	FormatPNG:   true,
	FormatPDF:   true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatGraph: true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	graph.StyleSimple:    true,
	graph.StyleBlueprint: true,
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	if format == FormatGraph {
		return ".graph.svg"
	}
	return "." + format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// It supports JSON so the HTTP service can accept it as a request body.
type Options struct {
	// Parse options
	Source   string `json:"source"`
	Filename string `json:"filename,omitempty"`

	// Solve options
	Width   float64         `json:"width,omitempty"`
	Height  float64         `json:"height,omitempty"`
	Flags   map[string]bool `json:"flags,omitempty"`
	Strict  bool            `json:"strict,omitempty"` // fail instead of degrading on dropped constraints
	Refresh bool            `json:"refresh,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Groups      bool     `json:"groups,omitempty"`
	Constraints bool     `json:"constraints,omitempty"`
	Soft        bool     `json:"soft,omitempty"` // include soft constraints in DOT output
	Scale       float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed description.
	Document *dsl.Document

	// SourceHash is the content hash of the description.
	SourceHash string

	// Layout is the solved layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Degraded reports whether the solver dropped constraints.
func (r *Result) Degraded() bool { return r.Layout.Degraded() }

// Stats contains pipeline execution statistics.
type Stats struct {
	Surfaces    int
	Constraints int
	Dropped     int
	ParseTime   time.Duration
	SolveTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // solved layout came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errs.New(errs.ErrCodeInvalidStyle, "invalid style: %q (must be one of: simple, blueprint)", style)
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForSolve checks the source and size and fills solve defaults.
func (o *Options) ValidateForSolve() error {
	if strings.TrimSpace(o.Source) == "" {
		return errs.New(errs.ErrCodeInvalidInput, "source is required")
	}
	if o.Filename == "" {
		o.Filename = DefaultFilename
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return errs.ValidateSize(o.Width, o.Height)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return ValidateStyle(o.Style)
}

// EnabledFlags returns the names of flags set to true, sorted.
func (o *Options) EnabledFlags() []string {
	var out []string
	for name, on := range o.Flags {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// LayoutKeyOpts returns cache key options for solving.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:  o.Width,
		Height: o.Height,
		Flags:  o.EnabledFlags(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:      format,
		Style:       o.Style,
		Groups:      o.Groups,
		Constraints: o.Constraints,
		Soft:        o.Soft,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// ParseFlags turns "name" and "name=bool" assignments into a flag map.
// Later assignments win.
func ParseFlags(assignments []string) (map[string]bool, error) {
	if len(assignments) == 0 {
		return nil, nil
	}
	out := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		name, value, hasValue := strings.Cut(strings.TrimSpace(a), "=")
		if err := errs.ValidateName(name); err != nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "invalid flag %q", a)
		}
		on := true
		if hasValue {
			v, err := strconv.ParseBool(value)
			if err != nil {
				return nil, errs.New(errs.ErrCodeInvalidInput, "invalid flag value %q", a)
			}
			on = v
		}
		out[name] = on
	}
	return out, nil
}
