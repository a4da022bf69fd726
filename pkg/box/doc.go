// Package box describes layouts as immutable trees and compiles them into
// constraints.
//
// # Overview
//
// A layout is a tree of [Node] values: elements wrapping caller-owned surfaces,
// and containers that arrange their children (stacks, overlays, padding, insets,
// centering, spacers). Trees carry intent only. [Compile] walks a tree once and
// produces a flat [Compiled] value holding every anchor group, surface and
// constraint the tree needs; a solver turns those constraints into geometry.
//
// # Node Variants
//
// The set of variants is closed. Every variant is handled by one exhaustive
// switch inside the compiler:
//
//   - [Empty]: produces nothing
//   - [Element]: one surface, optionally sized with Frame or AspectRatio
//   - [Multiple]: an ordered group of siblings, flattened at compile time
//   - condition: exactly one branch of an if/else, built with [If] or [IfElse]
//   - [Padding], [Inset], [Center]: re-frame a child inside a new anchor group
//   - [ZStack]: overlays children on the same frame
//   - [VStack], [HStack]: chain children along one axis
//   - [VSpacer], [HSpacer]: flexible gaps that absorb slack
//
// # Building Trees
//
// Constructors take their children as variadic arguments and reduce them with
// [Build]: no children become [Empty], a single child is kept as-is, and two or
// more become a [Multiple]. Configuration is fluent and value-based:
//
//	tree := box.NewVStack(
//	    box.NewElement(title).Frame(box.Height(44)),
//	    box.NewVSpacer(),
//	    box.If(showFooter, box.NewElement(footer)),
//	).Spacing(8).Align(box.AlignLeading)
//
// # Compiling
//
//	compiled := box.Compile(tree, host)
//	solver.Activate(compiled.Constraints)
//
// Compile never fails: malformed trees cannot be constructed, and empty
// containers simply emit no constraints.
package box
