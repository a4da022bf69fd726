// Package fonts provides the label font used by the raster and PDF renderers.
//
// The font ships with golang.org/x/image, so it is available without system
// font lookups or files next to the binary.
package fonts

import (
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name used in SVG output.
const FontFamily = "Go"

// FallbackFontFamily provides fallbacks for viewers without the Go font.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Helvetica, Arial, sans-serif`

// RegularTTF returns the TTF font data.
func RegularTTF() []byte {
	return goregular.TTF
}

var (
	family     *canvas.FontFamily
	familyErr  error
	familyOnce sync.Once
)

// Family returns a canvas font family holding the regular face. It is loaded
// once and shared; canvas font families are safe for concurrent reads.
func Family() (*canvas.FontFamily, error) {
	familyOnce.Do(func() {
		f := canvas.NewFontFamily(FontFamily)
		if err := f.LoadFont(goregular.TTF, 0, canvas.FontRegular); err != nil {
			familyErr = err
			return
		}
		family = f
	})
	return family, familyErr
}
