// Package icon renders the site favicon: a circular badge with four
// satellite circles joined to its center and a short label on top.
package icon

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// ErrInvalidSize is returned when the requested canvas size is not positive.
var ErrInvalidSize = errors.New("icon: canvas size must be positive")

// IconSpec describes one favicon render.
type IconSpec struct {
	Size            int
	HasBackground   bool
	BackgroundColor color.RGBA
	BadgeColor      color.RGBA
	LabelText       string
	LabelColor      color.RGBA
}

// Layout is the fixed geometry derived from a canvas size.
type Layout struct {
	Center            int
	OuterRadius       int
	BadgeRadius       int
	SatelliteDistance int
	SatelliteRadius   int
	StrokeWidth       int
	FontSize          int
	LabelLift         int

	// Satellites are ordered top-left, top-right, bottom-left, bottom-right.
	Satellites [4]image.Point
}

// LayoutFor computes the layout for a size×size canvas.
func LayoutFor(size int) Layout {
	// The satellite distance uses a float divisor truncated toward zero,
	// unlike the other measurements. The shipped icons depend on it.
	l := Layout{
		Center:            size / 2,
		OuterRadius:       size/2 - 2,
		BadgeRadius:       size / 3,
		SatelliteDistance: int(float64(size) / 2.5),
		SatelliteRadius:   size / 8,
		StrokeWidth:       max(2, size/50),
		FontSize:          max(1, size/3),
		LabelLift:         size / 20,
	}
	c, d := l.Center, l.SatelliteDistance
	l.Satellites = [4]image.Point{
		{c - d, c - d},
		{c + d, c - d},
		{c - d, c + d},
		{c + d, c + d},
	}
	return l
}

// Composer renders IconSpecs. The zero value is not usable; use NewComposer.
type Composer struct {
	fonts *FontResolver
}

// NewComposer returns a Composer that prefers the TrueType file at fontPath
// for labels.
func NewComposer(fontPath string, log *slog.Logger) *Composer {
	return &Composer{fonts: NewFontResolver(fontPath, log)}
}

// Compose renders spec into a new transparent canvas. The result depends
// only on spec and the resolved typeface.
func (c *Composer) Compose(spec IconSpec) (*image.RGBA, error) {
	if spec.Size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, spec.Size)
	}
	l := LayoutFor(spec.Size)

	// Shapes that cross the canvas edge leak coverage into the first row
	// when clipped by the rasterizer, so draw on a margin and crop.
	pad := l.SatelliteRadius + l.StrokeWidth
	dc := gg.NewContext(spec.Size+2*pad, spec.Size+2*pad)
	dc.Translate(float64(pad), float64(pad))

	cx, cy := float64(l.Center), float64(l.Center)

	if spec.HasBackground && l.OuterRadius > 0 {
		dc.SetColor(spec.BackgroundColor)
		dc.DrawCircle(cx, cy, float64(l.OuterRadius))
		dc.Fill()
	}

	dc.SetColor(spec.BadgeColor)
	dc.DrawCircle(cx, cy, float64(l.BadgeRadius))
	dc.Fill()

	dc.SetLineWidth(float64(l.StrokeWidth))
	for _, p := range l.Satellites {
		px, py := float64(p.X), float64(p.Y)
		dc.DrawCircle(px, py, float64(l.SatelliteRadius))
		dc.Fill()
		dc.DrawLine(cx, cy, px, py)
		dc.Stroke()
	}

	if spec.LabelText != "" {
		face := c.fonts.Face(float64(l.FontSize))
		drawLabel(dc, face, spec.LabelText, spec.LabelColor, l)
		face.Close()
	}

	out := image.NewRGBA(image.Rect(0, 0, spec.Size, spec.Size))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Pt(pad, pad), draw.Src)
	return out, nil
}

// drawLabel centers the ink box of text on the canvas, lifted by
// LabelLift. The text origin sits on the ascender line of the box top.
func drawLabel(dc *gg.Context, face font.Face, text string, col color.RGBA, l Layout) {
	w, h := inkSize(face, text)
	x := l.Center - w/2
	y := l.Center - h/2 - l.LabelLift

	dc.SetFontFace(face)
	dc.SetColor(col)
	dc.DrawString(text, float64(x), float64(y+face.Metrics().Ascent.Round()))
}

// inkSize returns the pixel width and height of text's ink bounds.
func inkSize(face font.Face, text string) (int, int) {
	b, _ := font.BoundString(face, text)
	w := b.Max.X.Ceil() - b.Min.X.Floor()
	h := b.Max.Y.Ceil() - b.Min.Y.Floor()
	return w, h
}
