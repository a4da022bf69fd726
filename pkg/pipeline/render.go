package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/render/frames"
	"github.com/matzehuels/boxlayout/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats, one goroutine
// per format. Options must have been validated for rendering.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	frameOpts, err := buildFrameOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	dotOpts := nodelink.Options{Detailed: opts.Constraints, Soft: opts.Soft}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			var data []byte
			var err error

			switch format {
			case FormatSVG:
				data = frames.RenderSVG(l, frameOpts...)
			case FormatPNG:
				data, err = frames.RenderPNG(l, frameOpts...)
			case FormatPDF:
				data, err = frames.RenderPDF(l, frameOpts...)
			case FormatJSON:
				data, err = graph.MarshalLayout(l)
			case FormatDOT:
				data = []byte(nodelink.ToDOT(l, dotOpts))
			case FormatGraph:
				data, err = nodelink.RenderSVG(gctx, nodelink.ToDOT(l, dotOpts))
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}

			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func buildFrameOptions(opts Options) ([]frames.Option, error) {
	style, err := frames.StyleByName(opts.Style)
	if err != nil {
		return nil, err
	}
	out := []frames.Option{frames.WithStyle(style), frames.WithScale(opts.Scale)}
	if opts.Groups {
		out = append(out, frames.WithGroups())
	}
	if opts.Constraints {
		out = append(out, frames.WithConstraints())
	}
	return out, nil
}
