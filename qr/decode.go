package qr

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
)

// Decode reads the first QR code found in img and returns its payload.
// Light foregrounds such as cyan on white defeat the local-threshold
// binarizer, so a global histogram threshold is tried second.
func Decode(img image.Image) (string, error) {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	reader := zxqr.NewQRCodeReader()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarize image: %w", err)
	}
	res, err := reader.Decode(bmp, hints)
	if err == nil {
		return res.GetText(), nil
	}

	global, gerr := gozxing.NewBinaryBitmap(gozxing.NewGlobalHistgramBinarizer(gozxing.NewLuminanceSourceFromImage(img)))
	if gerr != nil {
		return "", fmt.Errorf("decode qr: %w", err)
	}
	res, gerr = reader.Decode(global, hints)
	if gerr != nil {
		return "", fmt.Errorf("decode qr: %w", err)
	}
	return res.GetText(), nil
}
