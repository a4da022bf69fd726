// Package frames draws solved layouts.
//
// Every sink takes a [graph.Layout] and the same [Option] set:
//
//	svg := frames.RenderSVG(layout, frames.WithGroups())
//	pdf, err := frames.RenderPDF(layout, frames.WithStyle(frames.Blueprint{}))
//	png, err := frames.RenderPNG(layout, frames.WithScale(2))
//
// SVG is written directly. PDF and PNG are drawn with tdewolff/canvas; one
// layout unit maps to one CSS pixel (1/96 inch), so a 320x480 layout becomes
// a 240x360 pt PDF page and, at scale 2, a 640x960 PNG.
//
// Surfaces are drawn as filled rectangles labelled with their name. Anchor
// groups ([WithGroups]) are dashed outlines. Constraint lines
// ([WithConstraints]) connect the centers of the two frames a constraint
// relates; soft constraints are dashed and dropped ones use the palette's
// warning color.
package frames
