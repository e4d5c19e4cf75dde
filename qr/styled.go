package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	yqr "github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// moduleShape draws data modules with its own drawer and keeps finder
// patterns square so scanners lock on reliably.
type moduleShape struct {
	drawFunc func(ctx *standard.DrawContext)
}

func (s moduleShape) Draw(ctx *standard.DrawContext) {
	s.drawFunc(ctx)
}

func (s moduleShape) DrawFinder(ctx *standard.DrawContext) {
	drawSquare(ctx)
}

func drawSquare(ctx *standard.DrawContext) {
	x, y := ctx.UpperLeft()
	w, h := ctx.Edge()
	ctx.DrawRectangle(x, y, float64(w), float64(h))
	ctx.SetColor(ctx.Color())
	ctx.Fill()
}

func drawRounded(ctx *standard.DrawContext) {
	x, y := ctx.UpperLeft()
	w, h := ctx.Edge()
	ctx.DrawRoundedRectangle(x, y, float64(w), float64(h), float64(min(w, h))*0.35)
	ctx.SetColor(ctx.Color())
	ctx.Fill()
}

func drawCircle(ctx *standard.DrawContext) {
	x, y := ctx.UpperLeft()
	w, h := ctx.Edge()
	ctx.DrawCircle(x+float64(w)/2, y+float64(h)/2, float64(min(w, h))/2)
	ctx.SetColor(ctx.Color())
	ctx.Fill()
}

func shapeFor(s Shape) standard.IShape {
	switch s {
	case Circle:
		return moduleShape{drawFunc: drawCircle}
	default:
		return moduleShape{drawFunc: drawRounded}
	}
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

// renderStyled draws through the standard writer into memory and decodes
// the PNG it produces.
func renderStyled(content string, level Level, style Style) (image.Image, error) {
	if style.BoxSize > 255 {
		return nil, fmt.Errorf("qr: box size %d too large for %s modules", style.BoxSize, style.Shape)
	}

	qrc, err := yqr.NewWith(content,
		yqr.WithEncodingMode(yqr.EncModeByte),
		level.correction(),
	)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf},
		standard.WithQRWidth(uint8(style.BoxSize)),
		standard.WithBorderWidth(style.Border*style.BoxSize),
		standard.WithBgColor(style.Background),
		standard.WithFgColor(style.Foreground),
		standard.WithCustomShape(shapeFor(style.Shape)),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("draw qr: %w", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode rendered qr: %w", err)
	}
	return img, nil
}
