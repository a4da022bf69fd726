package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// renderOpts holds the render-specific flags.
type renderOpts struct {
	output      string
	formats     string
	style       string
	groups      bool
	constraints bool
	soft        bool
	scale       float64
	noCache     bool
	refresh     bool
}

// renderCommand creates the render command for writing artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		solve solveOptions
		opts  renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Render a layout to SVG, PNG, PDF, JSON or DOT",
		Long: `Render solves a layout description and writes one file per format.
A .json input is taken as a layout written by "compile -o" and is rendered
without solving.

Formats:
  svg    frames as SVG
  png    frames as PNG (see --scale)
  pdf    frames as a single-page PDF
  json   the solved layout
  dot    the constraint graph as Graphviz DOT
  graph  the constraint graph rendered to SVG`,
		Example: `  boxlayout render toolbar.box -f svg,png --groups
  boxlayout render toolbar.box -f graph --constraints --soft -o out/toolbar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := pipeline.Options{
				Formats:     parseFormats(opts.formats),
				Style:       opts.style,
				Groups:      opts.groups,
				Constraints: opts.constraints,
				Soft:        opts.soft,
				Scale:       opts.scale,
				Refresh:     opts.refresh,
				Logger:      c.Logger,
			}
			if len(popts.Formats) == 0 {
				popts.Formats = c.Config.Render.Formats
			}
			if popts.Style == "" {
				popts.Style = c.Config.Render.Style
			}
			if filepath.Ext(args[0]) == ".json" {
				return c.runRenderLayout(cmd, args[0], popts, opts.output, opts.noCache)
			}
			if err := readInput(args[0], &popts); err != nil {
				return err
			}
			if err := c.applySolveOptions(solve, &popts); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], popts, opts.output, opts.noCache)
		},
	}

	solve.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated: svg, png, pdf, json, dot, graph")
	cmd.Flags().StringVar(&opts.style, "style", "", "visual style: simple, blueprint")
	cmd.Flags().BoolVar(&opts.groups, "groups", false, "outline anchor groups")
	cmd.Flags().BoolVar(&opts.constraints, "constraints", false, "draw constraint lines (graph: label edges)")
	cmd.Flags().BoolVar(&opts.soft, "soft", false, "include soft constraints in the constraint graph")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG pixels per layout unit (default 2)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-solve even if the layout is cached")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Rendering "+opts.Filename)
	spin.Start()
	res, err := runner.Execute(ctx, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", opts.Filename)
	if err := writeArtifacts(output, input, res.Artifacts); err != nil {
		return err
	}
	printStats(res.Stats.Surfaces, res.Stats.Constraints, res.Stats.Dropped, res.CacheInfo.LayoutHit)
	if res.Degraded() {
		printNextStep("Inspect dropped constraints", "boxlayout render "+input+" -f graph --constraints")
	}
	return nil
}

// runRenderLayout renders a previously compiled layout file.
func (c *CLI) runRenderLayout(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cmd.Context(), noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	artifacts, cached, err := runner.RenderWithCacheInfo(cmd.Context(), layout, opts)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", input)
	if err := writeArtifacts(output, input, artifacts); err != nil {
		return err
	}
	printStats(len(layout.Surfaces()), len(layout.Constraints), countDropped(layout), cached)
	return nil
}

// writeArtifacts writes each artifact to its output path in format order.
func writeArtifacts(output, input string, artifacts map[string][]byte) error {
	paths := outputPaths(output, input, artifacts)
	formats := make([]string, 0, len(paths))
	for format := range paths {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	for _, format := range formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		printFile(path)
	}
	return nil
}

// outputPaths picks a file per artifact. A single artifact goes to output
// verbatim when given; otherwise files are base + extension, with base
// derived from output or the input name.
func outputPaths(output, input string, artifacts map[string][]byte) map[string]string {
	paths := make(map[string]string, len(artifacts))
	if len(artifacts) == 1 && output != "" {
		for format := range artifacts {
			paths[format] = output
		}
		return paths
	}
	base := basePath(output, input)
	for format := range artifacts {
		paths[format] = base + pipeline.Extension(format)
	}
	return paths
}

// basePath strips a known format extension from output, or derives a base
// from the input file name. Stdin renders to "layout".
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "layout"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
