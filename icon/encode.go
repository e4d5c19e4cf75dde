package icon

import (
	"fmt"
	"image"
	"image/png"
	"io"

	ico "github.com/sergeymakinen/go-ico"
)

// EncodePNG writes img as an RGBA PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodeICO writes img as a single-image Windows icon.
func EncodeICO(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Dx() > 256 || b.Dy() > 256 {
		return fmt.Errorf("encode ico: %dx%d exceeds 256x256", b.Dx(), b.Dy())
	}
	if err := ico.Encode(w, img); err != nil {
		return fmt.Errorf("encode ico: %w", err)
	}
	return nil
}
