// Package pkg holds the boxlayout libraries.
//
// A layout description is compiled in four steps:
//
//	description text
//	     ↓  [dsl]        parse, resolve flags, build a box tree
//	     ↓  [container]  place views and emit constraints ([box], [constraint])
//	     ↓  [solver]     solve, dropping what cannot be satisfied
//	     ↓  [graph]      snapshot frames into a serializable Layout
//
// [pipeline] ties the steps together with caching ([cache]) and rendering
// ([render/frames], [render/nodelink]). [view] models the host's view tree,
// [store] archives layouts and [config] loads user defaults.
//
//	doc, err := dsl.ParseString("toolbar.box", src)
//	s, err := pipeline.NewSession(doc, 320, 44)
//	layout, err := s.Update(ctx)
//	svg := frames.RenderSVG(layout, frames.WithGroups())
package pkg
