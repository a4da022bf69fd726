package cache

import (
	"sort"
	"strings"
)

// Keyer derives cache keys for the two cached stages of the pipeline.
type Keyer interface {
	// LayoutKey identifies a solved layout: the hash of its source plus
	// everything that changes the solution.
	LayoutKey(sourceHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered file for a solved layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the inputs besides the source that affect solving.
type LayoutKeyOpts struct {
	Width  float64
	Height float64
	Flags  []string // names of flags set to true
}

// ArtifactKeyOpts lists the render options that affect an artifact's bytes.
type ArtifactKeyOpts struct {
	Format      string
	Style       string
	Groups      bool
	Constraints bool
	Soft        bool
	Scale       float64
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>". Flag order does not matter.
func (DefaultKeyer) LayoutKey(sourceHash string, opts LayoutKeyOpts) string {
	flags := append([]string(nil), opts.Flags...)
	sort.Strings(flags)
	return hashKey("layout", sourceHash, opts.Width, opts.Height, strings.Join(flags, ","))
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts.Format, opts.Style, opts.Groups, opts.Constraints, opts.Soft, opts.Scale)
}

var _ Keyer = DefaultKeyer{}
