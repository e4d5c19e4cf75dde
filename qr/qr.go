// Package qr renders the site QR codes. Square modules come from
// go-qrcode's bitmap; rounded and circular modules are drawn through the
// yeqown standard writer with custom shapes.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"github.com/skip2/go-qrcode"
	yqr "github.com/yeqown/go-qrcode/v2"
	rscqr "rsc.io/qr"
)

// Level is the error-correction level of a symbol.
type Level int

const (
	Low Level = iota
	Medium
	Quartile
	High
)

// ParseLevel accepts the usual names and letters: low/l, medium/m,
// quartile/q, high/h.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return Low, nil
	case "medium", "m", "":
		return Medium, nil
	case "quartile", "q":
		return Quartile, nil
	case "high", "h":
		return High, nil
	}
	return 0, fmt.Errorf("unknown error correction level %q", s)
}

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Quartile:
		return "quartile"
	case High:
		return "high"
	default:
		return "medium"
	}
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case Low:
		return qrcode.Low
	case Quartile:
		return qrcode.High
	case High:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func (l Level) correction() yqr.EncodeOption {
	switch l {
	case Low:
		return yqr.WithErrorCorrectionLevel(yqr.ErrorCorrectionLow)
	case Quartile:
		return yqr.WithErrorCorrectionLevel(yqr.ErrorCorrectionQuart)
	case High:
		return yqr.WithErrorCorrectionLevel(yqr.ErrorCorrectionHighest)
	default:
		return yqr.WithErrorCorrectionLevel(yqr.ErrorCorrectionMedium)
	}
}

func (l Level) terminal() rscqr.Level {
	switch l {
	case Low:
		return qrterminal.L
	case Medium:
		return qrterminal.M
	case Quartile:
		return rscqr.Q
	default:
		return qrterminal.H
	}
}

// Shape is the module drawer used for data modules.
type Shape string

const (
	Square  Shape = "square"
	Rounded Shape = "rounded"
	Circle  Shape = "circle"
)

// ParseShape validates a shape name. Empty means square.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case Square, "":
		return Square, nil
	case Rounded:
		return Rounded, nil
	case Circle:
		return Circle, nil
	}
	return "", fmt.Errorf("unknown module shape %q", s)
}

// Style controls how a symbol is painted.
type Style struct {
	Shape      Shape
	Foreground color.RGBA
	Background color.RGBA
	// BoxSize is the pixel edge of one module.
	BoxSize    int
	// Border is the quiet zone width in modules.
	Border     int
}

// DefaultStyle is black square modules on white, 10px modules and a
// four-module quiet zone.
func DefaultStyle() Style {
	return Style{
		Shape:      Square,
		Foreground: color.RGBA{0, 0, 0, 255},
		Background: color.RGBA{255, 255, 255, 255},
		BoxSize:    10,
		Border:     4,
	}
}

var errEmptyContent = errors.New("qr: content must not be empty")

func (s Style) validate() error {
	if s.BoxSize <= 0 {
		return fmt.Errorf("qr: box size %d must be positive", s.BoxSize)
	}
	if s.Border < 0 {
		return fmt.Errorf("qr: border %d must not be negative", s.Border)
	}
	return nil
}

// Render encodes content at level and paints it with style. The image is
// (modules + 2*Border) * BoxSize pixels square.
func Render(content string, level Level, style Style) (image.Image, error) {
	if content == "" {
		return nil, errEmptyContent
	}
	if err := style.validate(); err != nil {
		return nil, err
	}
	switch style.Shape {
	case Square, "":
		return renderSquare(content, level, style)
	case Rounded, Circle:
		return renderStyled(content, level, style)
	}
	return nil, fmt.Errorf("qr: unknown module shape %q", style.Shape)
}

// RenderPNG is Render followed by PNG encoding.
func RenderPNG(content string, level Level, style Style) ([]byte, error) {
	img, err := Render(content, level, style)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return buf.Bytes(), nil
}

func renderSquare(content string, level Level, style Style) (image.Image, error) {
	q, err := qrcode.New(content, level.recovery())
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	box := style.BoxSize
	side := (len(bitmap) + 2*style.Border) * box
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(style.Background), image.Point{}, draw.Src)

	fg := image.NewUniform(style.Foreground)
	off := style.Border * box
	for y, row := range bitmap {
		for x, set := range row {
			if !set {
				continue
			}
			r := image.Rect(off+x*box, off+y*box, off+(x+1)*box, off+(y+1)*box)
			draw.Draw(img, r, fg, image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// Terminal writes content as a half-block QR code for a text terminal.
func Terminal(w io.Writer, content string, level Level) error {
	if content == "" {
		return errEmptyContent
	}
	qrterminal.GenerateHalfBlock(content, level.terminal(), w)
	return nil
}
