// Package dsl parses the textual layout language into box trees.
//
// A layout file is a list of boxes. Each box names its kind, an optional
// surface name (elements only), optional attributes in parentheses and
// optional children in braces:
//
//	vstack (spacing: 8, align: leading) {
//	  element "title" (height: 44)
//	  vspacer
//	  if !compact {
//	    element "details"
//	  } else {
//	    empty
//	  }
//	}
//
// Kinds are element, empty, padding, inset, center, zstack, vstack, hstack,
// vspacer and hspacer. Sizing-capable kinds accept width, height and aspect
// (w:h). Padding and inset accept all, vertical, horizontal, top, right,
// bottom and left; inset edges may be inf. Stacks accept spacing and align.
// Spacers accept min.
//
// Conditionals are evaluated against [Env.Flags] when [Document.Build] runs,
// so the same parsed document can be rebuilt for every update. Comments start
// with # or //.
//
// All errors carry an [errors.SourceError] with the file position.
package dsl
