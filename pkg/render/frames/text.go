package frames

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.45
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 6.0
	fontSizeMax     = 18.0
)

// FontSize picks a label size that fits the box on both axes.
func FontSize(b Box) float64 {
	n := max(1, len(labelOf(b)))
	byHeight := b.H * fontHeightRatio
	byWidth := (b.W * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// TruncateLabel shortens the label with ".." until it fits the box width.
func TruncateLabel(b Box) string {
	label := labelOf(b)
	charWidth := FontSize(b) * fontCharWidth
	maxChars := max(3, int(b.W*fontWidthRatio/charWidth))
	if len(label) <= maxChars {
		return label
	}
	return label[:maxChars-2] + ".."
}

func labelOf(b Box) string {
	if b.Label != "" {
		return b.Label
	}
	return b.ID
}

// EscapeXML escapes s for use in SVG text and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
