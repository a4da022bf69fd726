package box

import (
	"fmt"
	"strconv"
	"strings"
)

// Describe renders an indented outline of a tree, one node per line.
//
//	vstack spacing=8 align=leading
//	  element "title" height=44
//	  vspacer
//	  if (true)
//	    element "footer"
func Describe(n Node) string {
	var b strings.Builder
	describe(&b, n, 0)
	return b.String()
}

func describe(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := func(format string, args ...any) {
		b.WriteString(indent)
		fmt.Fprintf(b, format, args...)
		b.WriteByte('\n')
	}

	switch n := n.(type) {
	case nil, Empty:
		line("empty")
	case Element:
		name := "<nil>"
		if n.surface != nil {
			name = n.surface.Name()
		}
		line("element %q%s", name, n.sizing.describe())
	case Multiple:
		line("group")
		for _, c := range n.children {
			describe(b, c, depth+1)
		}
	case condition:
		line("if (%t)", n.taken)
		describe(b, n.branch, depth+1)
	case Padding:
		line("padding %s%s", formatInsets(n.insets), n.sizing.describe())
		describe(b, n.content, depth+1)
	case Inset:
		line("inset %s%s", formatInsets(n.insets), n.sizing.describe())
		describe(b, n.content, depth+1)
	case Center:
		line("center%s", n.sizing.describe())
		describe(b, n.content, depth+1)
	case ZStack:
		line("zstack%s", n.sizing.describe())
		describe(b, n.content, depth+1)
	case VStack:
		line("vstack spacing=%s align=%s%s", num(n.spacing), n.alignment, n.sizing.describe())
		describe(b, n.content, depth+1)
	case HStack:
		line("hstack spacing=%s align=%s%s", num(n.spacing), n.alignment, n.sizing.describe())
		describe(b, n.content, depth+1)
	case VSpacer:
		line("vspacer%s", minSuffix(n.minLength, n.hasMin))
	case HSpacer:
		line("hspacer%s", minSuffix(n.minLength, n.hasMin))
	}
}

func (s Sizing) describe() string {
	var parts []string
	if s.Kind == SizingAspect {
		parts = append(parts, "aspect="+num(s.Ratio.Width)+":"+num(s.Ratio.Height))
	}
	if s.HasWidth {
		parts = append(parts, "width="+num(s.Width))
	}
	if s.HasHeight {
		parts = append(parts, "height="+num(s.Height))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func formatInsets(in Insets) string {
	return strings.Join([]string{num(in.Top), num(in.Right), num(in.Bottom), num(in.Left)}, ",")
}

func minSuffix(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return " min=" + num(v)
}

func num(v float64) string {
	if IsUnbounded(v) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
