package frames

import (
	"bytes"
	"image/color"
	"image/png"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/fonts"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// mmPerUnit maps one layout unit (a CSS pixel) to canvas millimeters.
const mmPerUnit = 25.4 / 96

// ptPerUnit maps one layout unit to font points.
const ptPerUnit = 72.0 / 96

// RenderPDF renders the layout as a single-page PDF.
func RenderPDF(l graph.Layout, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	c, err := draw(l, r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := pdf.New(&buf, c.W, c.H, nil)
	w.SetInfo("boxlayout "+l.ID, "", "", "", "boxlayout")
	c.RenderTo(w)
	if err := w.Close(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

// RenderPNG renders the layout as a PNG image. The pixel size is the layout
// size times the scale option.
func RenderPNG(l graph.Layout, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	c, err := draw(l, r)
	if err != nil {
		return nil, err
	}

	img := rasterizer.Draw(c, canvas.DPMM(r.scale/mmPerUnit), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// draw paints the layout onto a canvas sized in millimeters, with the origin
// in the top-left corner like the layout itself.
func draw(l graph.Layout, r renderer) (*canvas.Canvas, error) {
	family, err := fonts.Family()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "load label font")
	}
	p := r.style.Palette()

	c := canvas.New(l.Width*mmPerUnit, l.Height*mmPerUnit)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(canvas.Hex(p.Background))
	ctx.SetStrokeColor(color.RGBA{})
	ctx.DrawPath(0, 0, canvas.Rectangle(c.W, c.H))

	boxes := buildBoxes(l, r.groups)
	for _, b := range boxes {
		x, y, w, h := b.X*mmPerUnit, b.Y*mmPerUnit, b.W*mmPerUnit, b.H*mmPerUnit
		if b.Kind == graph.KindGroup {
			ctx.SetFillColor(color.RGBA{})
			ctx.SetStrokeColor(canvas.Hex(p.Group))
			ctx.SetStrokeWidth(0.2)
			ctx.SetDashes(0, 1.0, 0.8)
			ctx.DrawPath(x, y, canvas.Rectangle(w, h))
			ctx.SetDashes(0)
			continue
		}
		ctx.SetFillColor(canvas.Hex(p.Surface))
		ctx.SetStrokeColor(canvas.Hex(p.SurfaceStroke))
		ctx.SetStrokeWidth(0.4)
		ctx.DrawPath(x, y, canvas.Rectangle(w, h))
	}

	if r.constraints {
		for _, e := range buildEdges(l) {
			col := p.Edge
			if e.Dropped {
				col = p.Dropped
			}
			ctx.SetStrokeColor(canvas.Hex(col))
			ctx.SetStrokeWidth(0.2)
			line := &canvas.Path{}
			line.MoveTo(0, 0)
			line.LineTo((e.X2-e.X1)*mmPerUnit, (e.Y2-e.Y1)*mmPerUnit)
			ctx.DrawPath(e.X1*mmPerUnit, e.Y1*mmPerUnit, line)
		}
	}

	for _, b := range boxes {
		if b.Kind == graph.KindGroup || b.W <= 0 || b.H <= 0 {
			continue
		}
		face := family.Face(FontSize(b)*ptPerUnit, canvas.Hex(p.Text), canvas.FontRegular, canvas.FontNormal)
		text := canvas.NewTextLine(face, TruncateLabel(b), canvas.Center)
		baseline := b.CY*mmPerUnit + face.Metrics().XHeight/2
		ctx.DrawText(b.CX*mmPerUnit, baseline, text)
	}
	return c, nil
}
