// Package nodelink renders the constraint graph of a layout as a node-link
// diagram.
//
// # Overview
//
// Each frame of a [graph.Layout] (host, anchor group, surface) becomes a node
// and each pair of frames related by constraints becomes an arrow from the
// constrained frame to the frame it is measured against. This shows how a box
// tree was wired: which surfaces hang off which groups, and where the solver
// had to drop required constraints.
//
// # Usage
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
